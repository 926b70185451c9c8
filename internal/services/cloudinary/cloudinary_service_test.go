package cloudinary

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear-team/rewear-api/internal/config"
)

func testService(secret string) *CloudinaryService {
	return NewCloudinaryService(&config.Config{
		JWTSecret: "test-secret",
		CloudinaryConfig: config.CloudinaryConfig{
			CloudName:    "rewear",
			APIKey:       "key",
			APISecret:    secret,
			UploadFolder: "rewear",
		},
	})
}

func TestSignUploadParams(t *testing.T) {
	service := testService("api-secret")

	params := url.Values{}
	params.Set("timestamp", "1735689600")
	params.Set("folder", "rewear")

	signature, err := service.SignUploadParams(params)
	require.NoError(t, err)
	require.NotEmpty(t, signature)

	// Подпись детерминирована для одинаковых параметров
	again, err := service.SignUploadParams(params)
	require.NoError(t, err)
	assert.Equal(t, signature, again)

	// Другой секрет дает другую подпись
	other, err := testService("another-secret").SignUploadParams(params)
	require.NoError(t, err)
	assert.NotEqual(t, signature, other)

	// Изменение параметров меняет подпись
	params.Set("timestamp", "1735689601")
	changed, err := service.SignUploadParams(params)
	require.NoError(t, err)
	assert.NotEqual(t, signature, changed)
}
