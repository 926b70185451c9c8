package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtract(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	extracted, err := service.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), extracted)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := NewJWTService("test-secret")
	other := NewJWTService("another-secret")

	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	// Токен с чужой подписью не проходит валидацию
	_, err = other.ExtractUserID(token)
	assert.Error(t, err)
}

func TestExtractUserIDGarbage(t *testing.T) {
	service := NewJWTService("test-secret")

	_, err := service.ExtractUserID("not-a-token")
	assert.Error(t, err)

	_, err = service.ExtractUserID("")
	assert.Error(t, err)
}
