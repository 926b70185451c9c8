package item

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rewear-team/rewear-api/internal/config"
	"github.com/rewear-team/rewear-api/internal/db"
	"github.com/rewear-team/rewear-api/internal/middleware"
	"github.com/rewear-team/rewear-api/internal/models"
	"github.com/rewear-team/rewear-api/internal/utils"
)

// ItemService представляет сервис для работы с вещами каталога
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

const itemColumns = `id, uploader_id, uploader_name, uploader_email, title, description,
	category, size, condition, points, tags, image_url, status, available,
	approved_by, approved_at, rejected_by, rejected_at, swapped_with, swapped_at,
	redeemed_by, redeemed_at, version, created_at, updated_at`

// scanItem сканирует строку items в модель
func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.UploaderID, &item.UploaderName, &item.UploaderEmail,
		&item.Title, &item.Description, &item.Category, &item.Size, &item.Condition,
		&item.Points, &item.Tags, &item.ImageURL, &item.Status, &item.Available,
		&item.ApprovedBy, &item.ApprovedAt, &item.RejectedBy, &item.RejectedAt,
		&item.SwappedWith, &item.SwappedAt, &item.RedeemedBy, &item.RedeemedAt,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem обрабатывает создание новой вещи.
// Вещь создается в статусе pending и недоступна до одобрения модератором.
// За размещение начисляются баллы — в той же транзакции, что и вставка.
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Size        string   `json:"size"`
		Condition   string   `json:"condition"`
		Points      int      `json:"points"`
		Tags        []string `json:"tags"`
		ImageURL    string   `json:"image_url"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	item := models.Item{
		Title:       requestData.Title,
		Description: requestData.Description,
		Category:    requestData.Category,
		Size:        requestData.Size,
		Condition:   requestData.Condition,
		Points:      requestData.Points,
		Tags:        requestData.Tags,
		ImageURL:    requestData.ImageURL,
	}

	if msg := item.ValidateNew(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if item.Tags == nil {
		item.Tags = []string{}
	}

	itemID := uuid.New()

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO items (id, uploader_id, uploader_name, uploader_email, title,
			description, category, size, condition, points, tags, image_url, status, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', FALSE)
	`, itemID, user.ID, user.Name, user.Email, item.Title, item.Description,
		item.Category, item.Size, item.Condition, item.Points, item.Tags, item.ImageURL)

	if err != nil {
		log.Printf("Ошибка вставки вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения вещи"})
	}

	// Бонус за размещение вещи
	if _, err = db.ApplyPointsChange(ctx, tx, user.ID, models.ListingBonus, "Размещение вещи: "+item.Title); err != nil {
		log.Printf("Ошибка начисления бонуса: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка начисления баллов"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item_id": itemID,
		"message": "Вещь отправлена на модерацию и появится в каталоге после одобрения",
	})
}

// GetPublicItems возвращает каталог одобренных и доступных вещей.
// Поиск, фильтры, сортировка и пагинация применяются к выбранному набору.
func (s *ItemService) GetPublicItems(c fiber.Ctx) error {
	filter := models.CatalogFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
	}
	sortBy := c.Query("sort", models.SortNewest)
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE status = 'approved' AND available = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("Ошибка запроса каталога: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения каталога"})
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		items = append(items, *item)
	}

	filtered := models.FilterItems(items, filter)
	models.SortItems(filtered, sortBy)
	page := models.PaginateItems(filtered, limit, offset)

	return c.JSON(fiber.Map{
		"items": page,
		"total": len(filtered),
	})
}

// GetMyItems возвращает вещи текущего пользователя в любом статусе
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	status := c.Query("status", "all")

	ctx, cancel := db.GetContext()
	defer cancel()

	var rows pgx.Rows
	var queryErr error

	if status == "all" {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT `+itemColumns+`
			FROM items
			WHERE uploader_id = $1
			ORDER BY updated_at DESC
		`, user.ID)
	} else {
		rows, queryErr = db.Pool.Query(ctx, `
			SELECT `+itemColumns+`
			FROM items
			WHERE uploader_id = $1 AND status = $2
			ORDER BY updated_at DESC
		`, user.ID, status)
	}

	if queryErr != nil {
		log.Printf("Ошибка запроса вещей: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		items = append(items, *item)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает одну вещь вместе с профилем владельца
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	item, err := scanItem(db.Pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = $1
	`, itemID))

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещи"})
	}

	item.Uploader = s.getUploaderInfo(ctx, item.UploaderID)

	return c.JSON(fiber.Map{"item": item})
}

// UpdateItem обновляет вещь. Редактировать может только владелец
// и только пока вещь на модерации.
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	var requestData struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Size        string   `json:"size"`
		Condition   string   `json:"condition"`
		Points      int      `json:"points"`
		Tags        []string `json:"tags"`
		ImageURL    string   `json:"image_url"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	updated := models.Item{
		Title:       requestData.Title,
		Description: requestData.Description,
		Category:    requestData.Category,
		Size:        requestData.Size,
		Condition:   requestData.Condition,
		Points:      requestData.Points,
		Tags:        requestData.Tags,
		ImageURL:    requestData.ImageURL,
	}

	if msg := updated.ValidateNew(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	if updated.Tags == nil {
		updated.Tags = []string{}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Условия в WHERE закрепляют право на редактирование на стороне сервера
	tag, err := db.Pool.Exec(ctx, `
		UPDATE items
		SET title = $3, description = $4, category = $5, size = $6, condition = $7,
			points = $8, tags = $9, image_url = $10, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND uploader_id = $2 AND status = 'pending'
	`, itemID, user.ID, updated.Title, updated.Description, updated.Category,
		updated.Size, updated.Condition, updated.Points, updated.Tags, updated.ImageURL)

	if err != nil {
		log.Printf("Ошибка обновления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления вещи"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Редактировать можно только свою вещь и только пока она на модерации",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь успешно обновлена",
	})
}

// WithdrawItem отзывает вещь с модерации. Доступно только владельцу
// и только пока вещь в статусе pending.
func (s *ItemService) WithdrawItem(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var status string
	err = db.Pool.QueryRow(ctx, `
		SELECT status FROM items WHERE id = $1 AND uploader_id = $2
	`, itemID, user.ID).Scan(&status)

	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена или нет прав на отзыв"})
	}
	if err != nil {
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отзыва вещи"})
	}

	if !models.CanWithdraw(status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Отозвать можно только вещь на модерации",
		})
	}

	// Условие по статусу в WHERE закрывает гонку с параллельной модерацией
	tag, err := db.Pool.Exec(ctx, `
		UPDATE items
		SET status = 'withdrawn', available = FALSE, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND uploader_id = $2 AND status = 'pending'
	`, itemID, user.ID)

	if err != nil {
		log.Printf("Ошибка отзыва вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отзыва вещи"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Отозвать можно только свою вещь и только пока она на модерации",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь отозвана с модерации",
	})
}

// DeleteItem удаляет вещь. Владелец может удалить свою вещь,
// администратор — любую.
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var result pgconn.CommandTag
	if user.IsAdmin {
		result, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	} else {
		result, err = db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1 AND uploader_id = $2`, itemID, user.ID)
	}

	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}

	if result.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена или нет прав на удаление"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь удалена",
	})
}

// RedeemItem выкупает вещь за баллы.
// Вся последовательность проходит одной транзакцией в db.RedeemItem.
func (s *ItemService) RedeemItem(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swapID, newBalance, err := db.RedeemItem(ctx, user, itemID)
	if err != nil {
		switch err {
		case db.ErrItemNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		case db.ErrSelfSwap:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя выкупить собственную вещь"})
		case db.ErrItemUnavailable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь больше недоступна"})
		case db.ErrInsufficientPoints:
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Недостаточно баллов для выкупа"})
		}
		log.Printf("Ошибка выкупа вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка выкупа вещи"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"swap_id": swapID,
		"balance": newBalance,
		"message": "Вещь успешно выкуплена за баллы",
	})
}

// getUploaderInfo получает публичный профиль владельца вещи
func (s *ItemService) getUploaderInfo(ctx context.Context, userID uuid.UUID) *models.User {
	user, err := db.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("Ошибка получения пользователя %s: %v", userID, err)
		return nil
	}

	// Наружу отдаем только публичные поля
	return &models.User{
		ID:        user.ID,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
