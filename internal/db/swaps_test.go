package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear-team/rewear-api/internal/models"
)

func TestOrderItemUpdates(t *testing.T) {
	low := itemUpdate{
		ItemID:       uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Counterparty: uuid.New(),
	}
	high := itemUpdate{
		ItemID:       uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		Counterparty: uuid.New(),
	}

	// Порядок обновлений не зависит от порядка на входе
	ordered := orderItemUpdates([]itemUpdate{high, low})
	require.Len(t, ordered, 2)
	assert.Equal(t, low.ItemID, ordered[0].ItemID)
	assert.Equal(t, low.Counterparty, ordered[0].Counterparty)

	ordered = orderItemUpdates([]itemUpdate{low, high})
	assert.Equal(t, low.ItemID, ordered[0].ItemID)
	assert.Equal(t, high.ItemID, ordered[1].ItemID)
}

func TestResolveSwapDoubleAccept(t *testing.T) {
	ctx := setupTestDB(t)

	uploader := createTestUser(t, ctx, 0)
	first := createTestUser(t, ctx, 0)
	second := createTestUser(t, ctx, 0)
	itemID := createApprovedItem(t, ctx, uploader, 50)

	firstSwap, err := CreateSwap(ctx, first, itemID, nil, "")
	require.NoError(t, err)
	secondSwap, err := CreateSwap(ctx, second, itemID, nil, "")
	require.NoError(t, err)

	// Первое принятие проходит и снимает вещь с публикации
	require.NoError(t, ResolveSwap(ctx, firstSwap, uploader.ID, models.SwapStatusCompleted))

	var available bool
	var swappedWith uuid.UUID
	err = Pool.QueryRow(ctx, `
		SELECT available, swapped_with FROM items WHERE id = $1
	`, itemID).Scan(&available, &swappedWith)
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, first.ID, swappedWith)

	// Второе принятие той же вещи проигрывает и ничего не меняет
	err = ResolveSwap(ctx, secondSwap, uploader.ID, models.SwapStatusCompleted)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	var status string
	err = Pool.QueryRow(ctx, `SELECT status FROM swaps WHERE id = $1`, secondSwap).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStatusPending, status)
}

func TestResolveSwapAuthorization(t *testing.T) {
	ctx := setupTestDB(t)

	uploader := createTestUser(t, ctx, 0)
	requester := createTestUser(t, ctx, 0)
	stranger := createTestUser(t, ctx, 0)
	itemID := createApprovedItem(t, ctx, uploader, 50)

	swapID, err := CreateSwap(ctx, requester, itemID, nil, "")
	require.NoError(t, err)

	// Посторонний не может принять, отправитель не может принять свою заявку
	assert.ErrorIs(t, ResolveSwap(ctx, swapID, stranger.ID, models.SwapStatusCompleted), ErrNotResolver)
	assert.ErrorIs(t, ResolveSwap(ctx, swapID, requester.ID, models.SwapStatusCompleted), ErrNotResolver)

	// Владелец не может отозвать чужую заявку
	assert.ErrorIs(t, ResolveSwap(ctx, swapID, uploader.ID, models.SwapStatusWithdrawn), ErrNotResolver)

	// Отправитель отзывает, повторное разрешение невозможно
	require.NoError(t, ResolveSwap(ctx, swapID, requester.ID, models.SwapStatusWithdrawn))
	assert.ErrorIs(t, ResolveSwap(ctx, swapID, uploader.ID, models.SwapStatusCompleted), ErrSwapResolved)
}

func TestRedeemItemInsufficientPointsRollsBack(t *testing.T) {
	ctx := setupTestDB(t)

	uploader := createTestUser(t, ctx, 0)
	buyer := createTestUser(t, ctx, 20)
	itemID := createApprovedItem(t, ctx, uploader, 50)

	_, _, err := RedeemItem(ctx, buyer, itemID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// Вещь осталась в каталоге, балансы не изменились
	var available bool
	require.NoError(t, Pool.QueryRow(ctx, `SELECT available FROM items WHERE id = $1`, itemID).Scan(&available))
	assert.True(t, available)

	freshUploader, err := GetUserByID(ctx, uploader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, freshUploader.Points)

	freshBuyer, err := GetUserByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, freshBuyer.Points)
}

func TestRedeemItemCompletesAtomically(t *testing.T) {
	ctx := setupTestDB(t)

	uploader := createTestUser(t, ctx, 0)
	buyer := createTestUser(t, ctx, 100)
	itemID := createApprovedItem(t, ctx, uploader, 50)

	swapID, balance, err := RedeemItem(ctx, buyer, itemID)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)

	// Вещь снята с публикации и помечена выкупленной
	var available bool
	var redeemedBy uuid.UUID
	require.NoError(t, Pool.QueryRow(ctx, `
		SELECT available, redeemed_by FROM items WHERE id = $1
	`, itemID).Scan(&available, &redeemedBy))
	assert.False(t, available)
	assert.Equal(t, buyer.ID, redeemedBy)

	// Владелец получил баллы через журнал
	freshUploader, err := GetUserByID(ctx, uploader.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, freshUploader.Points)

	uploaderLog, err := GetPointTransactions(ctx, uploader.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, uploaderLog)
	assert.Equal(t, 50, uploaderLog[0].Delta)

	// Запись о выкупе создана сразу завершенной
	var swapType, status string
	var pointsUsed int
	require.NoError(t, Pool.QueryRow(ctx, `
		SELECT type, status, points_used FROM swaps WHERE id = $1
	`, swapID).Scan(&swapType, &status, &pointsUsed))
	assert.Equal(t, models.SwapTypeRedemption, swapType)
	assert.Equal(t, models.SwapStatusCompleted, status)
	assert.Equal(t, 50, pointsUsed)

	// Повторный выкуп той же вещи невозможен
	richBuyer := createTestUser(t, ctx, 100)
	_, _, err = RedeemItem(ctx, richBuyer, itemID)
	assert.ErrorIs(t, err, ErrItemUnavailable)
}
