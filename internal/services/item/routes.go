package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rewear-team/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API вещей.
// Каталог и карточка вещи публичные, остальные маршруты требуют авторизации.
// /my регистрируется раньше /:id, иначе его перехватит параметрный маршрут.
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")
	authRequired := middleware.AuthMiddleware(s.jwtService)

	// Публичный каталог
	api.Get("/", s.GetPublicItems)

	// Маршрут для создания вещи
	api.Post("/create", s.CreateItem, authRequired)

	// Маршрут для получения своих вещей
	api.Get("/my", s.GetMyItems, authRequired)

	// Публичная карточка вещи
	api.Get("/:id", s.GetItem)

	// Маршрут для обновления вещи
	api.Put("/:id", s.UpdateItem, authRequired)

	// Маршрут для отзыва вещи с модерации
	api.Post("/:id/withdraw", s.WithdrawItem, authRequired)

	// Маршрут для выкупа вещи за баллы
	api.Post("/:id/redeem", s.RedeemItem, authRequired)

	// Маршрут для удаления вещи
	api.Delete("/:id", s.DeleteItem, authRequired)
}
