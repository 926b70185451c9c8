package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsTerminalSwapStatus(t *testing.T) {
	assert.False(t, IsTerminalSwapStatus(SwapStatusPending))

	assert.True(t, IsTerminalSwapStatus(SwapStatusCompleted))
	assert.True(t, IsTerminalSwapStatus(SwapStatusAccepted))
	assert.True(t, IsTerminalSwapStatus(SwapStatusRejected))
	assert.True(t, IsTerminalSwapStatus(SwapStatusWithdrawn))
}

func TestCanResolveSwap(t *testing.T) {
	// Разрешение допустимо только из pending
	assert.True(t, CanResolveSwap(SwapStatusPending, SwapStatusCompleted))
	assert.True(t, CanResolveSwap(SwapStatusPending, SwapStatusRejected))
	assert.True(t, CanResolveSwap(SwapStatusPending, SwapStatusWithdrawn))

	// Конечный статус не меняется, даже повторно в тот же самый
	for _, current := range []string{SwapStatusCompleted, SwapStatusRejected, SwapStatusWithdrawn, SwapStatusAccepted} {
		assert.False(t, CanResolveSwap(current, SwapStatusCompleted), "из %s нельзя в completed", current)
		assert.False(t, CanResolveSwap(current, SwapStatusRejected), "из %s нельзя в rejected", current)
		assert.False(t, CanResolveSwap(current, SwapStatusWithdrawn), "из %s нельзя в withdrawn", current)
	}

	// Перевод в неконечный статус не допускается
	assert.False(t, CanResolveSwap(SwapStatusPending, SwapStatusPending))
	assert.False(t, CanResolveSwap(SwapStatusPending, SwapStatusAccepted))
	assert.False(t, CanResolveSwap(SwapStatusPending, "unknown"))
}

func TestResolverFor(t *testing.T) {
	uploader := uuid.New()
	requester := uuid.New()

	swap := Swap{
		UploaderID:  uploader,
		RequesterID: requester,
	}

	// Принимает и отклоняет владелец вещи
	assert.Equal(t, uploader, swap.ResolverFor(SwapStatusCompleted))
	assert.Equal(t, uploader, swap.ResolverFor(SwapStatusRejected))

	// Отзывает сам отправитель
	assert.Equal(t, requester, swap.ResolverFor(SwapStatusWithdrawn))

	// Для прочих статусов права не выдаются
	assert.Equal(t, uuid.Nil, swap.ResolverFor(SwapStatusPending))
	assert.Equal(t, uuid.Nil, swap.ResolverFor("unknown"))
}
