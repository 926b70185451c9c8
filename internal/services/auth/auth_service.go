package auth

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rewear-team/rewear-api/internal/config"
	"github.com/rewear-team/rewear-api/internal/db"
	"github.com/rewear-team/rewear-api/internal/middleware"
	"github.com/rewear-team/rewear-api/internal/utils"
)

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает JWT сервис для middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// SignupHandler регистрирует пользователя по email и паролю.
// Новому пользователю начисляются стартовые баллы.
func (s *AuthService) SignupHandler(c fiber.Ctx) error {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Name == "" || payload.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя и email обязательны"})
	}
	if len(payload.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Пароль должен быть не короче 8 символов"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка регистрации"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.CreateUser(ctx, payload.Name, payload.Email, string(hash), "")
	if err != nil {
		if err == db.ErrEmailTaken {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email уже зарегистрирован"})
		}
		log.Printf("Ошибка создания пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка регистрации"})
	}

	jwtToken, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка генерации токена"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// LoginHandler проверяет email и пароль и возвращает JWT.
// Забаненному пользователю вход запрещен.
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	ctx, cancel := db.GetContext()
	defer cancel()

	user, passwordHash, err := db.GetUserByEmail(ctx, payload.Email)
	if err != nil {
		if err == db.ErrUserNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
		}
		log.Printf("Ошибка запроса пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка входа"})
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(payload.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный email или пароль"})
	}

	if user.Banned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Ваш аккаунт заблокирован. Обратитесь в поддержку."})
	}

	jwtToken, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка генерации токена"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// TelegramAuthHandler проверяет initData, создает или обновляет пользователя
// и возвращает JWT
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if s.cfg.TelegramBotToken == "" {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "Вход через Telegram не настроен"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Невалидные данные Telegram"})
	}

	// Парсим данные
	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ошибка разбора initData"})
	}

	name := strings.TrimSpace(data.User.FirstName + " " + data.User.LastName)

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := db.CreateOrUpdateTelegramUser(ctx, data.User.ID, name, data.User.Username, data.User.PhotoURL, []byte(payload.InitData))
	if err != nil {
		log.Printf("Ошибка создания Telegram пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка входа"})
	}

	if user.Banned {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Ваш аккаунт заблокирован. Обратитесь в поддержку."})
	}

	jwtToken, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка генерации токена"})
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

// MeHandler возвращает профиль текущего пользователя
func (s *AuthService) MeHandler(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateMeHandler обновляет имя и аватар текущего пользователя.
// Аватар загружается напрямую в Cloudinary через /api/upload/params,
// сюда приходит уже готовый URL.
func (s *AuthService) UpdateMeHandler(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var payload struct {
		Name      *string `json:"name"`
		AvatarURL *string `json:"avatar_url"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if payload.Name == nil && payload.AvatarURL == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нет полей для обновления"})
	}
	if payload.Name != nil {
		trimmed := strings.TrimSpace(*payload.Name)
		if trimmed == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Имя не может быть пустым"})
		}
		payload.Name = &trimmed
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	updated, err := db.UpdateUserProfile(ctx, user.ID, payload.Name, payload.AvatarURL)
	if err != nil {
		log.Printf("Ошибка обновления профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления профиля"})
	}

	return c.JSON(fiber.Map{"user": updated})
}

// PointsHistoryHandler возвращает журнал движения баллов текущего пользователя
func (s *AuthService) PointsHistoryHandler(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	transactions, err := db.GetPointTransactions(ctx, user.ID, 50)
	if err != nil {
		log.Printf("Ошибка запроса журнала баллов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения журнала баллов"})
	}

	return c.JSON(fiber.Map{
		"balance":      user.Points,
		"transactions": transactions,
	})
}
