package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rewear-team/rewear-api/internal/models"
)

// Ошибки разрешения заявок, различаемые обработчиками
var (
	ErrSwapNotFound    = errors.New("заявка не найдена")
	ErrSwapResolved    = errors.New("заявка уже разрешена")
	ErrItemNotFound    = errors.New("вещь не найдена")
	ErrItemUnavailable = errors.New("вещь больше недоступна")
	ErrSelfSwap        = errors.New("нельзя запросить собственную вещь")
	ErrNotResolver     = errors.New("нет права изменить статус заявки")
	ErrDuplicateSwap   = errors.New("такая заявка уже существует")
	ErrForeignItem     = errors.New("предложенная вещь не принадлежит отправителю")
)

// lockItem читает вещь с блокировкой строки до конца транзакции
func lockItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := tx.QueryRow(ctx, `
		SELECT id, uploader_id, title, points, status, available
		FROM items
		WHERE id = $1
		FOR UPDATE
	`, itemID).Scan(&item.ID, &item.UploaderID, &item.Title, &item.Points, &item.Status, &item.Available)

	if err == pgx.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении вещи: %w", err)
	}
	return &item, nil
}

// CreateSwap создает заявку на обмен в статусе pending.
// Целевая вещь должна быть одобрена и доступна, предложенная вещь (если есть) —
// принадлежать отправителю и тоже быть одобренной и доступной.
func CreateSwap(ctx context.Context, requester *models.User, itemID uuid.UUID, proposedItemID *uuid.UUID, message string) (uuid.UUID, error) {
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := lockItem(ctx, tx, itemID)
	if err != nil {
		return uuid.Nil, err
	}
	if item.UploaderID == requester.ID {
		return uuid.Nil, ErrSelfSwap
	}
	if !item.IsRequestable(requester.ID) {
		return uuid.Nil, ErrItemUnavailable
	}

	var uploaderName, uploaderEmail string
	err = tx.QueryRow(ctx, `
		SELECT name, COALESCE(email, '') FROM users WHERE id = $1
	`, item.UploaderID).Scan(&uploaderName, &uploaderEmail)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка при чтении владельца вещи: %w", err)
	}

	var proposedTitle string
	if proposedItemID != nil {
		proposed, err := lockItem(ctx, tx, *proposedItemID)
		if err != nil {
			return uuid.Nil, err
		}
		if proposed.UploaderID != requester.ID {
			return uuid.Nil, ErrForeignItem
		}
		// Своя вещь не проходит IsRequestable, поэтому проверяем статус напрямую
		if proposed.Status != models.ItemStatusApproved || !proposed.Available {
			return uuid.Nil, ErrItemUnavailable
		}
		proposedTitle = proposed.Title
	}

	// Повторная pending-заявка на ту же вещь от того же отправителя не создается
	var duplicates int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps
		WHERE requester_id = $1 AND item_id = $2 AND status = 'pending'
	`, requester.ID, itemID).Scan(&duplicates)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка при проверке существующих заявок: %w", err)
	}
	if duplicates > 0 {
		return uuid.Nil, ErrDuplicateSwap
	}

	swapID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO swaps (id, requester_id, requester_name, requester_email,
			item_id, item_title, uploader_id, uploader_name, uploader_email,
			proposed_item_id, proposed_item_title, message, type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'swap', 'pending')
	`, swapID, requester.ID, requester.Name, requester.Email,
		item.ID, item.Title, item.UploaderID, uploaderName, uploaderEmail,
		proposedItemID, proposedTitle, message)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка при создании заявки: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return swapID, nil
}

// itemUpdate описывает снятие одной вещи с публикации при принятии обмена
type itemUpdate struct {
	ItemID       uuid.UUID
	Counterparty uuid.UUID
}

// orderItemUpdates сортирует обновления вещей по ID.
// Блокировки строк берутся в одном и том же порядке во всех транзакциях,
// поэтому встречные принятия не взаимоблокируются: проигравший получает
// ErrItemUnavailable от проверки доступности, а не обрыв от базы.
func orderItemUpdates(updates []itemUpdate) []itemUpdate {
	sort.Slice(updates, func(i, j int) bool {
		return bytes.Compare(updates[i].ItemID[:], updates[j].ItemID[:]) < 0
	})
	return updates
}

// markItemSwapped атомарно снимает вещь с публикации после обмена.
// Условие available = TRUE в WHERE закрывает гонку двух одновременных
// принятий: проигравшая транзакция не обновит ни одной строки.
func markItemSwapped(ctx context.Context, tx pgx.Tx, itemID, counterparty uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET available = FALSE, swapped_with = $2, swapped_at = NOW(),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND available = TRUE AND status = 'approved'
	`, itemID, counterparty)

	if err != nil {
		return fmt.Errorf("ошибка при снятии вещи с публикации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemUnavailable
	}
	return nil
}

// markItemRedeemed атомарно снимает вещь с публикации после выкупа
func markItemRedeemed(ctx context.Context, tx pgx.Tx, itemID, redeemer uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET available = FALSE, redeemed_by = $2, redeemed_at = NOW(),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND available = TRUE AND status = 'approved'
	`, itemID, redeemer)

	if err != nil {
		return fmt.Errorf("ошибка при снятии вещи с публикации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemUnavailable
	}
	return nil
}

// ResolveSwap переводит заявку из pending в конечный статус.
// Принять или отклонить может только владелец вещи, отозвать — отправитель.
// Принятие снимает обе вещи с публикации в той же транзакции.
func ResolveSwap(ctx context.Context, swapID, actorID uuid.UUID, next string) error {
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку заявки, чтобы два разрешения не прошли одновременно
	var swap models.Swap
	err = tx.QueryRow(ctx, `
		SELECT id, requester_id, item_id, uploader_id, proposed_item_id, status
		FROM swaps
		WHERE id = $1
		FOR UPDATE
	`, swapID).Scan(&swap.ID, &swap.RequesterID, &swap.ItemID, &swap.UploaderID, &swap.ProposedItemID, &swap.Status)

	if err == pgx.ErrNoRows {
		return ErrSwapNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка при чтении заявки: %w", err)
	}

	if !models.CanResolveSwap(swap.Status, next) {
		if models.IsTerminalSwapStatus(swap.Status) {
			return ErrSwapResolved
		}
		return fmt.Errorf("недопустимый переход статуса %s -> %s", swap.Status, next)
	}
	if swap.ResolverFor(next) != actorID {
		return ErrNotResolver
	}

	if next == models.SwapStatusCompleted {
		// Обе вещи снимаются с публикации атомарно с заявкой
		updates := []itemUpdate{{swap.ItemID, swap.RequesterID}}
		if swap.ProposedItemID != nil {
			updates = append(updates, itemUpdate{*swap.ProposedItemID, swap.UploaderID})
		}
		for _, u := range orderItemUpdates(updates) {
			if err = markItemSwapped(ctx, tx, u.ItemID, u.Counterparty); err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE swaps
		SET status = $2, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, swapID, next)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса заявки: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

// RedeemItem выкупает вещь за баллы одной транзакцией:
// списание у покупателя, начисление владельцу, снятие вещи с публикации
// и запись о выкупе фиксируются вместе или не фиксируются вовсе.
func RedeemItem(ctx context.Context, requester *models.User, itemID uuid.UUID) (uuid.UUID, int, error) {
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	item, err := lockItem(ctx, tx, itemID)
	if err != nil {
		return uuid.Nil, 0, err
	}
	if item.UploaderID == requester.ID {
		return uuid.Nil, 0, ErrSelfSwap
	}
	if !item.IsRequestable(requester.ID) {
		return uuid.Nil, 0, ErrItemUnavailable
	}
	if !requester.CanAfford(item.Points) {
		return uuid.Nil, 0, ErrInsufficientPoints
	}

	// Списание у покупателя: условие в WHERE внутри ApplyPointsChange
	// остается последней линией защиты от ухода баланса в минус
	newBalance, err := ApplyPointsChange(ctx, tx, requester.ID, -item.Points,
		fmt.Sprintf("Выкуп вещи: %s", item.Title))
	if err != nil {
		return uuid.Nil, 0, err
	}

	// Начисление владельцу идет тем же путем, что и любое изменение баланса,
	// и попадает в журнал
	if _, err = ApplyPointsChange(ctx, tx, item.UploaderID, item.Points,
		fmt.Sprintf("Баллы за вещь: %s", item.Title)); err != nil {
		return uuid.Nil, 0, err
	}

	if err = markItemRedeemed(ctx, tx, item.ID, requester.ID); err != nil {
		return uuid.Nil, 0, err
	}

	var uploaderName, uploaderEmail string
	err = tx.QueryRow(ctx, `
		SELECT name, COALESCE(email, '') FROM users WHERE id = $1
	`, item.UploaderID).Scan(&uploaderName, &uploaderEmail)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("ошибка при чтении владельца вещи: %w", err)
	}

	// Запись о выкупе создается сразу в статусе completed
	swapID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO swaps (id, requester_id, requester_name, requester_email,
			item_id, item_title, uploader_id, uploader_name, uploader_email,
			type, points_used, status, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'redemption', $10, 'completed', NOW())
	`, swapID, requester.ID, requester.Name, requester.Email,
		item.ID, item.Title, item.UploaderID, uploaderName, uploaderEmail, item.Points)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("ошибка при создании записи о выкупе: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, 0, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return swapID, newBalance, nil
}
