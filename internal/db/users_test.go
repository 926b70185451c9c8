package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUserProfile(t *testing.T) {
	ctx := setupTestDB(t)
	user := createTestUser(t, ctx, 0)

	// Обновление только аватара не трогает имя
	avatar := "https://res.cloudinary.com/demo/image/upload/avatar.jpg"
	updated, err := UpdateUserProfile(ctx, user.ID, nil, &avatar)
	require.NoError(t, err)
	assert.Equal(t, avatar, updated.AvatarURL)
	assert.Equal(t, user.Name, updated.Name)
	assert.Greater(t, updated.Version, user.Version)

	// Обновление только имени не трогает аватар
	name := "Новое имя"
	updated, err = UpdateUserProfile(ctx, user.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, avatar, updated.AvatarURL)

	_, err = UpdateUserProfile(ctx, uuid.New(), &name, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTelegramReloginRefreshesProfile(t *testing.T) {
	ctx := setupTestDB(t)
	telegramID := time.Now().UnixNano()

	user, err := CreateOrUpdateTelegramUser(ctx, telegramID, "Иван", "ivan", "https://t.me/photo1.jpg", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "Иван", user.Name)

	// Повторный вход подтягивает новые имя и фото
	user, err = CreateOrUpdateTelegramUser(ctx, telegramID, "Иван Петров", "ivan", "https://t.me/photo2.jpg", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", user.Name)
	assert.Equal(t, "https://t.me/photo2.jpg", user.AvatarURL)

	// Пустое фото не затирает сохраненный аватар
	user, err = CreateOrUpdateTelegramUser(ctx, telegramID, "Иван Петров", "ivan", "", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/photo2.jpg", user.AvatarURL)

	// Стартовые баллы начислены один раз
	assert.Equal(t, 100, user.Points)
}
