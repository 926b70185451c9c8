package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rewear-team/rewear-api/internal/models"
)

// Ошибки журнала баллов, различаемые обработчиками
var (
	ErrInsufficientPoints = errors.New("недостаточно баллов")
	ErrUserNotFound       = errors.New("пользователь не найден")
)

// ApplyPointsChange — единственный путь изменения баланса пользователя.
// Выполняется внутри переданной транзакции: обновляет баланс с проверкой
// неотрицательности и добавляет запись в журнал движения баллов.
func ApplyPointsChange(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int, reason string) (int, error) {
	var newBalance int

	// Условие points + delta >= 0 в WHERE не дает балансу уйти в минус:
	// при нехватке баллов строка не обновляется и запрос вернет ноль строк
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET points = points + $2,
			last_points_reason = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND points + $2 >= 0
		RETURNING points
	`, userID, delta, reason).Scan(&newBalance)

	if err == pgx.ErrNoRows {
		// Различаем отсутствие пользователя и нехватку баллов
		var exists bool
		if checkErr := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
		`, userID).Scan(&exists); checkErr != nil {
			return 0, fmt.Errorf("ошибка при проверке пользователя: %w", checkErr)
		}
		if !exists {
			return 0, ErrUserNotFound
		}
		return 0, ErrInsufficientPoints
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка при обновлении баланса: %w", err)
	}

	// Запись в журнал — в той же транзакции, что и изменение баланса
	_, err = tx.Exec(ctx, `
		INSERT INTO point_transactions (user_id, delta, reason, balance_after)
		VALUES ($1, $2, $3, $4)
	`, userID, delta, reason, newBalance)

	if err != nil {
		return 0, fmt.Errorf("ошибка при записи в журнал баллов: %w", err)
	}

	return newBalance, nil
}

// GetPointTransactions возвращает журнал движения баллов пользователя
func GetPointTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := Pool.Query(ctx, `
		SELECT id, user_id, delta, reason, balance_after, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)

	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе журнала баллов: %w", err)
	}
	defer rows.Close()

	var transactions []models.PointTransaction
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Delta, &t.Reason, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки журнала: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}
