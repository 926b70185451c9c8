package admin

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rewear-team/rewear-api/internal/config"
	"github.com/rewear-team/rewear-api/internal/db"
	"github.com/rewear-team/rewear-api/internal/middleware"
	"github.com/rewear-team/rewear-api/internal/models"
	"github.com/rewear-team/rewear-api/internal/utils"
)

// AdminService представляет сервис панели администратора
type AdminService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(cfg *config.Config) *AdminService {
	return &AdminService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// itemStatus читает текущий статус вещи
func (s *AdminService) itemStatus(ctx context.Context, itemID uuid.UUID) (string, error) {
	var status string
	err := db.Pool.QueryRow(ctx, `SELECT status FROM items WHERE id = $1`, itemID).Scan(&status)
	return status, err
}

// GetStats возвращает сводную статистику для панели администратора
func (s *AdminService) GetStats(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	var stats struct {
		TotalUsers     int `json:"total_users"`
		TotalItems     int `json:"total_items"`
		PendingItems   int `json:"pending_items"`
		ApprovedItems  int `json:"approved_items"`
		TotalSwaps     int `json:"total_swaps"`
		PendingSwaps   int `json:"pending_swaps"`
		CompletedSwaps int `json:"completed_swaps"`
	}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM items),
			(SELECT COUNT(*) FROM items WHERE status = 'pending'),
			(SELECT COUNT(*) FROM items WHERE status = 'approved'),
			(SELECT COUNT(*) FROM swaps),
			(SELECT COUNT(*) FROM swaps WHERE status = 'pending'),
			(SELECT COUNT(*) FROM swaps WHERE status IN ('completed', 'accepted'))
	`).Scan(
		&stats.TotalUsers, &stats.TotalItems, &stats.PendingItems, &stats.ApprovedItems,
		&stats.TotalSwaps, &stats.PendingSwaps, &stats.CompletedSwaps,
	)

	if err != nil {
		log.Printf("Ошибка запроса статистики: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения статистики"})
	}

	return c.JSON(fiber.Map{"stats": stats})
}

// GetItems возвращает вещи для модерации, опционально по статусу
func (s *AdminService) GetItems(c fiber.Ctx) error {
	status := c.Query("status", "all")

	ctx, cancel := db.GetContext()
	defer cancel()

	var rows pgx.Rows
	var err error

	const columns = `id, uploader_id, uploader_name, uploader_email, title, description,
		category, size, condition, points, tags, image_url, status, available,
		version, created_at, updated_at`

	if status == "all" {
		rows, err = db.Pool.Query(ctx, `
			SELECT `+columns+` FROM items ORDER BY created_at DESC
		`)
	} else {
		rows, err = db.Pool.Query(ctx, `
			SELECT `+columns+` FROM items WHERE status = $1 ORDER BY created_at DESC
		`, status)
	}

	if err != nil {
		log.Printf("Ошибка запроса вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID, &item.UploaderID, &item.UploaderName, &item.UploaderEmail,
			&item.Title, &item.Description, &item.Category, &item.Size, &item.Condition,
			&item.Points, &item.Tags, &item.ImageURL, &item.Status, &item.Available,
			&item.Version, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// ApproveItem одобряет вещь: pending -> approved, вещь становится доступной.
// Условие status = 'pending' в WHERE делает повторное одобрение
// и одобрение отклоненной вещи невозможным.
func (s *AdminService) ApproveItem(c fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	status, err := s.itemStatus(ctx, itemID)
	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
	}
	if err != nil {
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка одобрения вещи"})
	}

	if !models.CanModerate(status, models.ItemStatusApproved) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь уже прошла модерацию"})
	}

	// Условие по статусу в WHERE закрывает гонку двух модераторов
	tag, err := db.Pool.Exec(ctx, `
		UPDATE items
		SET status = 'approved', available = TRUE, approved_by = $2, approved_at = NOW(),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, itemID, admin.ID)

	if err != nil {
		log.Printf("Ошибка одобрения вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка одобрения вещи"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь не найдена или уже прошла модерацию"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь одобрена и добавлена в каталог",
	})
}

// RejectItem отклоняет вещь: pending -> rejected
func (s *AdminService) RejectItem(c fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	status, err := s.itemStatus(ctx, itemID)
	if err == pgx.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
	}
	if err != nil {
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отклонения вещи"})
	}

	if !models.CanModerate(status, models.ItemStatusRejected) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь уже прошла модерацию"})
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE items
		SET status = 'rejected', available = FALSE, rejected_by = $2, rejected_at = NOW(),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, itemID, admin.ID)

	if err != nil {
		log.Printf("Ошибка отклонения вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отклонения вещи"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь не найдена или уже прошла модерацию"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь отклонена",
	})
}

// DeleteItem удаляет вещь без ограничений по статусу
func (s *AdminService) DeleteItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, itemID)
	if err != nil {
		log.Printf("Ошибка удаления вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления вещи"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь удалена",
	})
}

// GetUsers возвращает всех пользователей
func (s *AdminService) GetUsers(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	users, err := db.ListUsers(ctx)
	if err != nil {
		log.Printf("Ошибка запроса пользователей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения пользователей"})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// ToggleBan блокирует или разблокирует пользователя.
// Администратор не может заблокировать сам себя.
func (s *AdminService) ToggleBan(c fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	if userID == admin.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя заблокировать собственный аккаунт"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var banned bool
	err = db.Pool.QueryRow(ctx, `
		UPDATE users
		SET banned = NOT banned,
			banned_at = CASE WHEN NOT banned THEN NOW() ELSE NULL END,
			banned_by = CASE WHEN NOT banned THEN $2 ELSE NULL END,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING banned
	`, userID, admin.ID).Scan(&banned)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("Ошибка блокировки пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка блокировки пользователя"})
	}

	message := "Пользователь разблокирован"
	if banned {
		message = "Пользователь заблокирован"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"banned":  banned,
		"message": message,
	})
}

// ToggleAdmin выдает или снимает права администратора.
// Снять права с самого себя нельзя.
func (s *AdminService) ToggleAdmin(c fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	if userID == admin.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя изменить собственные права администратора"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var isAdmin bool
	err = db.Pool.QueryRow(ctx, `
		UPDATE users
		SET is_admin = NOT is_admin, version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING is_admin
	`, userID).Scan(&isAdmin)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
		}
		log.Printf("Ошибка изменения прав пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка изменения прав пользователя"})
	}

	message := "Права администратора сняты"
	if isAdmin {
		message = "Права администратора выданы"
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"is_admin": isAdmin,
		"message":  message,
	})
}

// GetSwaps возвращает все заявки на обмен, опционально по статусу
func (s *AdminService) GetSwaps(c fiber.Ctx) error {
	status := c.Query("status", "all")

	ctx, cancel := db.GetContext()
	defer cancel()

	const columns = `id, requester_id, requester_name, requester_email,
		item_id, item_title, uploader_id, uploader_name, uploader_email,
		proposed_item_id, proposed_item_title, message, type, points_used,
		status, created_at, resolved_at`

	var rows pgx.Rows
	var err error

	if status == "all" {
		rows, err = db.Pool.Query(ctx, `
			SELECT `+columns+` FROM swaps ORDER BY created_at DESC
		`)
	} else {
		rows, err = db.Pool.Query(ctx, `
			SELECT `+columns+` FROM swaps WHERE status = $1 ORDER BY created_at DESC
		`, status)
	}

	if err != nil {
		log.Printf("Ошибка запроса заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	swaps := []models.Swap{}
	for rows.Next() {
		var swap models.Swap
		if err := rows.Scan(
			&swap.ID, &swap.RequesterID, &swap.RequesterName, &swap.RequesterEmail,
			&swap.ItemID, &swap.ItemTitle, &swap.UploaderID, &swap.UploaderName,
			&swap.UploaderEmail, &swap.ProposedItemID, &swap.ProposedItemTitle,
			&swap.Message, &swap.Type, &swap.PointsUsed, &swap.Status,
			&swap.CreatedAt, &swap.ResolvedAt,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		swaps = append(swaps, swap)
	}

	return c.JSON(fiber.Map{
		"swaps": swaps,
		"count": len(swaps),
	})
}
