package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanModerate(t *testing.T) {
	// Одобрить или отклонить можно только вещь на модерации
	assert.True(t, CanModerate(ItemStatusPending, ItemStatusApproved))
	assert.True(t, CanModerate(ItemStatusPending, ItemStatusRejected))

	// Повторная модерация невозможна
	assert.False(t, CanModerate(ItemStatusApproved, ItemStatusApproved))
	assert.False(t, CanModerate(ItemStatusRejected, ItemStatusApproved))
	assert.False(t, CanModerate(ItemStatusWithdrawn, ItemStatusApproved))
	assert.False(t, CanModerate(ItemStatusApproved, ItemStatusRejected))

	// Модерация не переводит в произвольный статус
	assert.False(t, CanModerate(ItemStatusPending, ItemStatusPending))
	assert.False(t, CanModerate(ItemStatusPending, ItemStatusWithdrawn))
}

func TestCanWithdraw(t *testing.T) {
	assert.True(t, CanWithdraw(ItemStatusPending))

	assert.False(t, CanWithdraw(ItemStatusApproved))
	assert.False(t, CanWithdraw(ItemStatusRejected))
	assert.False(t, CanWithdraw(ItemStatusWithdrawn))
}

func TestIsRequestable(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	item := Item{
		UploaderID: owner,
		Status:     ItemStatusApproved,
		Available:  true,
	}

	assert.True(t, item.IsRequestable(stranger))

	// Собственную вещь запросить нельзя
	assert.False(t, item.IsRequestable(owner))

	// Недоступная вещь не запрашивается
	unavailable := item
	unavailable.Available = false
	assert.False(t, unavailable.IsRequestable(stranger))

	// Вещь не в каталоге не запрашивается, даже если флаг доступности остался
	pending := item
	pending.Status = ItemStatusPending
	assert.False(t, pending.IsRequestable(stranger))
}

func TestValidateNew(t *testing.T) {
	valid := Item{
		Title:     "Джинсовая куртка",
		Category:  "Outerwear",
		Condition: "Good",
		Points:    50,
		ImageURL:  "https://res.cloudinary.com/demo/image/upload/jacket.jpg",
	}
	assert.Empty(t, valid.ValidateNew())

	noTitle := valid
	noTitle.Title = ""
	assert.NotEmpty(t, noTitle.ValidateNew())

	badCategory := valid
	badCategory.Category = "Gadgets"
	assert.NotEmpty(t, badCategory.ValidateNew())

	badCondition := valid
	badCondition.Condition = "Broken"
	assert.NotEmpty(t, badCondition.ValidateNew())

	noImage := valid
	noImage.ImageURL = ""
	assert.NotEmpty(t, noImage.ValidateNew())
}

func TestValidateNewPointsRange(t *testing.T) {
	item := Item{
		Title:     "Платье",
		Category:  "Dresses",
		Condition: "Like New",
		ImageURL:  "https://example.com/dress.jpg",
	}

	for _, points := range []int{MinItemPoints, 50, MaxItemPoints} {
		item.Points = points
		assert.Empty(t, item.ValidateNew(), "points=%d должны проходить валидацию", points)
	}

	for _, points := range []int{0, MinItemPoints - 1, MaxItemPoints + 1, -50} {
		item.Points = points
		assert.NotEmpty(t, item.ValidateNew(), "points=%d не должны проходить валидацию", points)
	}
}
