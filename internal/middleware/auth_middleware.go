package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rewear-team/rewear-api/internal/db"
	"github.com/rewear-team/rewear-api/internal/models"
	"github.com/rewear-team/rewear-api/internal/utils"
)

// AuthMiddleware создаёт middleware для проверки JWT.
// Пользователь загружается из базы на каждый запрос: проверки бана и прав
// опираются на актуальное состояние, а не на данные в токене.
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Отсутствует заголовок авторизации",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Неверный формат заголовка авторизации",
			})
		}

		tokenString := parts[1]
		userIDStr, err := jwtService.ExtractUserID(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Невалидный или истекший токен",
			})
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Неверный формат ID пользователя",
			})
		}

		ctx, cancel := db.GetContext()
		defer cancel()

		user, err := db.GetUserByID(ctx, userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Пользователь не найден",
			})
		}

		// Забаненный пользователь не проходит дальше ни в один обработчик
		if user.Banned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Ваш аккаунт заблокирован. Обратитесь в поддержку.",
			})
		}

		// Добавляем пользователя в контекст
		c.Locals("userID", userID.String())
		c.Locals("user", user)

		return c.Next()
	}
}

// RequireAdmin пропускает только администраторов.
// Используется после AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Требуются права администратора",
			})
		}
		return c.Next()
	}
}

// CurrentUser возвращает пользователя, загруженного AuthMiddleware
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
