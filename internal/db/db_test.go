package db

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/rewear-team/rewear-api/internal/models"
)

// setupTestDB подключается к тестовой базе из TEST_DATABASE_URL.
// Без заданной переменной или при недоступной базе тесты пропускаются.
func setupTestDB(t *testing.T) context.Context {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан, пропускаем тесты с базой данных")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("база данных недоступна: %v", err)
	}

	Pool = pool
	require.NoError(t, Migrate(ctx))

	t.Cleanup(func() {
		pool.Close()
		Pool = nil
	})

	return ctx
}

// createTestUser создает пользователя с заданным балансом напрямую,
// минуя регистрацию
func createTestUser(t *testing.T, ctx context.Context, points int) *models.User {
	t.Helper()

	email := fmt.Sprintf("user-%s@example.com", uuid.New())

	var id uuid.UUID
	err := Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, points)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "Тестовый пользователь", email, points).Scan(&id)
	require.NoError(t, err)

	user, err := GetUserByID(ctx, id)
	require.NoError(t, err)
	return user
}

// createApprovedItem создает одобренную и доступную вещь
func createApprovedItem(t *testing.T, ctx context.Context, uploader *models.User, points int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := Pool.Exec(ctx, `
		INSERT INTO items (id, uploader_id, uploader_name, uploader_email, title,
			category, condition, points, status, available)
		VALUES ($1, $2, $3, $4, $5, 'Tops', 'Good', $6, 'approved', TRUE)
	`, id, uploader.ID, uploader.Name, uploader.Email, "Тестовая вещь", points)
	require.NoError(t, err)

	return id
}
