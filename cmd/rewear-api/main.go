package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rewear-team/rewear-api/internal/config"
	"github.com/rewear-team/rewear-api/internal/db"
	"github.com/rewear-team/rewear-api/internal/services/admin"
	"github.com/rewear-team/rewear-api/internal/services/auth"
	"github.com/rewear-team/rewear-api/internal/services/cloudinary"
	"github.com/rewear-team/rewear-api/internal/services/item"
	"github.com/rewear-team/rewear-api/internal/services/swap"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "ReWear API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	itemService := item.NewItemService(cfg)
	swapService := swap.NewSwapService(cfg)
	adminService := admin.NewAdminService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	itemService.SetupRoutes(app)
	swapService.SetupRoutes(app)
	adminService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ ReWear API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
