package swap

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

// SwapService представляет сервис для работы с заявками на обмен
type SwapService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(cfg *config.Config) *SwapService {
	return &SwapService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateSwap создает новую заявку на обмен
func (s *SwapService) CreateSwap(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	var requestData struct {
		ItemID         string `json:"item_id"`
		ProposedItemID string `json:"proposed_item_id"`
		Message        string `json:"message"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID вещи не указан"})
	}
	if len(requestData.Message) > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Сообщение не должно превышать 500 символов"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	// Предложенная вещь опциональна
	var proposedItemID *uuid.UUID
	if requestData.ProposedItemID != "" {
		parsed, err := uuid.Parse(requestData.ProposedItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложенной вещи"})
		}
		proposedItemID = &parsed
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	swapID, err := db.CreateSwap(ctx, user, itemID, proposedItemID, requestData.Message)
	if err != nil {
		switch err {
		case db.ErrItemNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		case db.ErrSelfSwap:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя запросить обмен собственной вещи"})
		case db.ErrItemUnavailable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь недоступна для обмена"})
		case db.ErrForeignItem:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Предложить можно только свою вещь"})
		case db.ErrDuplicateSwap:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Заявка на эту вещь уже отправлена"})
		}
		log.Printf("Ошибка создания заявки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания заявки"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"swap_id": swapID,
		"message": "Заявка на обмен отправлена. Владелец вещи получит уведомление.",
	})
}

// GetMySwaps возвращает список входящих и исходящих заявок
func (s *SwapService) GetMySwaps(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	swapType := c.Query("type", "all")  // all, incoming, outgoing
	status := c.Query("status", "all")  // all, pending, completed, rejected, withdrawn

	ctx, cancel := db.GetContext()
	defer cancel()

	// Формируем запрос в зависимости от типа и статуса
	var query string
	var args []interface{}

	const swapColumns = `id, requester_id, requester_name, requester_email,
		item_id, item_title, uploader_id, uploader_name, uploader_email,
		proposed_item_id, proposed_item_title, message, type, points_used,
		status, created_at, resolved_at`

	if swapType == "incoming" {
		if status == "all" {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE uploader_id = $1 ORDER BY created_at DESC`
			args = []interface{}{user.ID}
		} else {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE uploader_id = $1 AND status = $2 ORDER BY created_at DESC`
			args = []interface{}{user.ID, status}
		}
	} else if swapType == "outgoing" {
		if status == "all" {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE requester_id = $1 ORDER BY created_at DESC`
			args = []interface{}{user.ID}
		} else {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE requester_id = $1 AND status = $2 ORDER BY created_at DESC`
			args = []interface{}{user.ID, status}
		}
	} else {
		if status == "all" {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE requester_id = $1 OR uploader_id = $1 ORDER BY created_at DESC`
			args = []interface{}{user.ID}
		} else {
			query = `SELECT ` + swapColumns + ` FROM swaps WHERE (requester_id = $1 OR uploader_id = $1) AND status = $2 ORDER BY created_at DESC`
			args = []interface{}{user.ID, status}
		}
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса заявок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения заявок"})
	}
	defer rows.Close()

	var swaps []models.Swap
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

		// Загружаем актуальное состояние вещей
		swap.RequestedItem = s.getItemInfo(ctx, swap.ItemID)
		if swap.ProposedItemID != nil {
			swap.ProposedItem = s.getItemInfo(ctx, *swap.ProposedItemID)
		}

		swaps = append(swaps, swap)
	}

	return c.JSON(fiber.Map{
		"swaps": swaps,
		"count": len(swaps),
	})
}

// UpdateSwapStatus разрешает заявку: принятие, отклонение или отзыв.
// Принятие атомарно снимает обе вещи с публикации; при проигрыше гонки
// за вещь клиент получает 409 и заявка остается pending.
func (s *SwapService) UpdateSwapStatus(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не авторизован"})
	}

	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID заявки"})
	}

	var requestData struct {
		Status string `json:"status"` // accepted, rejected, withdrawn
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Принятая заявка хранится как completed
	var next string
	switch requestData.Status {
	case "accepted", models.SwapStatusCompleted:
		next = models.SwapStatusCompleted
	case models.SwapStatusRejected:
		next = models.SwapStatusRejected
	case models.SwapStatusWithdrawn, "canceled":
		next = models.SwapStatusWithdrawn
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус заявки"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := db.ResolveSwap(ctx, swapID, user.ID, next); err != nil {
		switch err {
		case db.ErrSwapNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Заявка не найдена"})
		case db.ErrSwapResolved:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Заявка уже разрешена"})
		case db.ErrNotResolver:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Принять или отклонить заявку может только владелец вещи, отозвать — отправитель",
			})
		case db.ErrItemUnavailable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Вещь уже обменяна или выкуплена. Обновите список и попробуйте снова.",
			})
		}
		log.Printf("Ошибка разрешения заявки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления статуса заявки"})
	}

	var message string
	switch next {
	case models.SwapStatusCompleted:
		message = "Обмен принят. Вещи сняты с публикации."
	case models.SwapStatusRejected:
		message = "Заявка на обмен отклонена"
	case models.SwapStatusWithdrawn:
		message = "Заявка на обмен отозвана"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"swap_id": swapID,
		"status":  next,
		"message": message,
	})
}

// getItemInfo получает краткую информацию о вещи
func (s *SwapService) getItemInfo(ctx context.Context, itemID uuid.UUID) *models.Item {
	var item models.Item
	err := db.Pool.QueryRow(ctx, `
		SELECT id, uploader_id, title, category, size, condition, points, image_url, status, available
		FROM items
		WHERE id = $1
	`, itemID).Scan(
		&item.ID, &item.UploaderID, &item.Title, &item.Category, &item.Size,
		&item.Condition, &item.Points, &item.ImageURL, &item.Status, &item.Available,
	)

	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("Ошибка получения вещи %s: %v", itemID, err)
		}
		return nil
	}

	return &item
}
