package item

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewear-team/rewear-api/internal/config"
)

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(recover.New())

	service := NewItemService(&config.Config{JWTSecret: "test-secret"})
	service.SetupRoutes(app)

	return app
}

func TestCatalogRoutesArePublic(t *testing.T) {
	app := testApp()

	// Каталог отвечает без токена
	resp, err := app.Test(httptest.NewRequest("GET", "/api/items", nil))
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Карточка вещи тоже публичная: невалидный ID дает 400, а не 401
	resp, err = app.Test(httptest.NewRequest("GET", "/api/items/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMutatingItemRoutesRequireAuth(t *testing.T) {
	app := testApp()

	itemPath := "/api/items/1db87f57-6b2c-49c5-93c6-b2c0cf29e547"
	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/items/create"},
		{"GET", "/api/items/my"},
		{"PUT", itemPath},
		{"POST", itemPath + "/withdraw"},
		{"POST", itemPath + "/redeem"},
		{"DELETE", itemPath},
	}

	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestMyItemsRouteNotShadowedByItemID(t *testing.T) {
	app := testApp()

	// /my разрешается в свой маршрут, а не в параметрный /:id:
	// без токена это 401 от авторизации, а не 400 от разбора UUID
	resp, err := app.Test(httptest.NewRequest("GET", "/api/items/my", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
