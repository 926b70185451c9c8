package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rewear-team/rewear-api/internal/models"
)

// ErrEmailTaken возвращается при попытке регистрации с занятым email
var ErrEmailTaken = errors.New("email уже зарегистрирован")

// CreateUser создает нового пользователя со стартовым балансом баллов.
// Начисление стартовых баллов проходит через журнал в той же транзакции.
func CreateUser(ctx context.Context, name, email, passwordHash, avatarURL string) (*models.User, error) {
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	var userID uuid.UUID
	// Баланс создается нулевым, стартовые баллы начисляются через журнал
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, avatar_url, points)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id
	`, name, email, passwordHash, avatarURL).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	if _, err = ApplyPointsChange(ctx, tx, userID, models.SignupBonus, "Бонус за регистрацию"); err != nil {
		return nil, err
	}

	user, err := getUserByID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return user, nil
}

// CreateOrUpdateTelegramUser создает пользователя через Telegram или обновляет существующего.
// Первый вход создает профиль со стартовым балансом, как и обычная регистрация.
func CreateOrUpdateTelegramUser(ctx context.Context, telegramID int64, name, username, photoURL string, rawData []byte) (*models.User, error) {
	tx, err := Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_users WHERE telegram_id = $1
	`, telegramID).Scan(&userID)

	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("ошибка при проверке Telegram пользователя: %w", err)
	}

	if err == pgx.ErrNoRows {
		// Создаем запись в users
		err = tx.QueryRow(ctx, `
			INSERT INTO users (name, avatar_url, points)
			VALUES ($1, $2, 0)
			RETURNING id
		`, name, photoURL).Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
		}

		// Создаем запись в telegram_users
		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_users (user_id, telegram_id, username, photo_url, raw_data)
			VALUES ($1, $2, $3, $4, $5)
		`, userID, telegramID, username, photoURL, rawData)
		if err != nil {
			return nil, fmt.Errorf("ошибка при создании Telegram пользователя: %w", err)
		}

		if _, err = ApplyPointsChange(ctx, tx, userID, models.SignupBonus, "Бонус за регистрацию"); err != nil {
			return nil, err
		}
	} else {
		// Обновляем данные существующего пользователя
		_, err = tx.Exec(ctx, `
			UPDATE telegram_users
			SET username = $2, photo_url = $3, raw_data = $4, updated_at = NOW()
			WHERE telegram_id = $1
		`, telegramID, username, photoURL, rawData)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении Telegram пользователя: %w", err)
		}

		// Имя и аватар в профиле следуют за данными Telegram,
		// пустой аватар не затирает ранее сохраненный
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET name = $2,
				avatar_url = CASE WHEN $3 <> '' THEN $3 ELSE avatar_url END,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $1
		`, userID, name, photoURL)
		if err != nil {
			return nil, fmt.Errorf("ошибка при обновлении профиля: %w", err)
		}
	}

	user, err := getUserByID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return user, nil
}

// UpdateUserProfile обновляет имя и аватар пользователя.
// nil означает, что поле не меняется.
func UpdateUserProfile(ctx context.Context, userID uuid.UUID, name, avatarURL *string) (*models.User, error) {
	row := Pool.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
			avatar_url = COALESCE($3, avatar_url),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, name, avatarURL)

	user, err := scanUser(row)
	if err == pgx.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка при обновлении профиля: %w", err)
	}
	return user, nil
}

const userColumns = `id, name, email, avatar_url, points, is_admin, banned,
	banned_at, banned_by, last_points_reason, version, created_at, updated_at`

// scanUser сканирует строку users в модель
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var email pgtype.Text

	err := row.Scan(
		&user.ID, &user.Name, &email, &user.AvatarURL, &user.Points,
		&user.IsAdmin, &user.Banned, &user.BannedAt, &user.BannedBy,
		&user.LastPointsReason, &user.Version, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		user.Email = email.String
	}

	return &user, nil
}

// getUserByID получает пользователя по ID внутри транзакции
func getUserByID(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.User, error) {
	return scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// GetUserByID получает пользователя по ID
func GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := scanUser(Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err == pgx.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail получает пользователя по email вместе с хешем пароля
func GetUserByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var user models.User
	var passwordHash pgtype.Text

	err := Pool.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash FROM users WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.AvatarURL, &user.Points,
		&user.IsAdmin, &user.Banned, &user.BannedAt, &user.BannedBy,
		&user.LastPointsReason, &user.Version, &user.CreatedAt, &user.UpdatedAt,
		&passwordHash,
	)
	if err == pgx.ErrNoRows {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("ошибка при запросе пользователя: %w", err)
	}

	hash := ""
	if passwordHash.Valid {
		hash = passwordHash.String
	}

	return &user, hash, nil
}

// ListUsers возвращает всех пользователей (для панели администратора)
func ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе пользователей: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки пользователя: %w", err)
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}
