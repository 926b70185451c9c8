package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rewear-team/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты панели администратора
func (s *AdminService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/admin")

	// Все маршруты требуют авторизации и прав администратора
	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Use(middleware.RequireAdmin())

	// Статистика
	api.Get("/stats", s.GetStats)

	// Модерация вещей
	api.Get("/items", s.GetItems)
	api.Post("/items/:id/approve", s.ApproveItem)
	api.Post("/items/:id/reject", s.RejectItem)
	api.Delete("/items/:id", s.DeleteItem)

	// Управление пользователями
	api.Get("/users", s.GetUsers)
	api.Post("/users/:id/ban", s.ToggleBan)
	api.Post("/users/:id/admin", s.ToggleAdmin)

	// Просмотр всех заявок
	api.Get("/swaps", s.GetSwaps)
}
