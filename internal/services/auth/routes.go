package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rewear-team/rewear-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API авторизации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	// Публичные маршруты
	api.Post("/signup", s.SignupHandler)
	api.Post("/login", s.LoginHandler)
	api.Post("/telegram", s.TelegramAuthHandler)

	// Защищенные маршруты (требуют авторизации)
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Get("/me", s.MeHandler)
	protected.Put("/me", s.UpdateMeHandler)
	protected.Get("/me/points", s.PointsHistoryHandler)
}
