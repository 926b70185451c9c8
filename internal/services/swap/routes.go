package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rewear-team/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *SwapService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/swaps")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для создания заявки на обмен
	api.Post("/", s.CreateSwap)

	// Маршрут для получения списка заявок
	api.Get("/", s.GetMySwaps)

	// Маршрут для разрешения заявки
	api.Put("/:id/status", s.UpdateSwapStatus)
}
