package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPointsChangeKeepsBalanceNonNegative(t *testing.T) {
	ctx := setupTestDB(t)
	user := createTestUser(t, ctx, 50)

	tx, err := Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	// Списание больше баланса не проходит
	_, err = ApplyPointsChange(ctx, tx, user.ID, -60, "Списание")
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	require.NoError(t, tx.Rollback(ctx))

	fresh, err := GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, fresh.Points)
}

func TestApplyPointsChangeWritesJournal(t *testing.T) {
	ctx := setupTestDB(t)
	user := createTestUser(t, ctx, 50)

	tx, err := Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	balance, err := ApplyPointsChange(ctx, tx, user.ID, 30, "Начисление")
	require.NoError(t, err)
	assert.Equal(t, 80, balance)
	require.NoError(t, tx.Commit(ctx))

	transactions, err := GetPointTransactions(ctx, user.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, transactions)
	assert.Equal(t, 30, transactions[0].Delta)
	assert.Equal(t, 80, transactions[0].BalanceAfter)
	assert.Equal(t, "Начисление", transactions[0].Reason)
}

func TestApplyPointsChangeUnknownUser(t *testing.T) {
	ctx := setupTestDB(t)

	tx, err := Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = ApplyPointsChange(ctx, tx, uuid.New(), 10, "Начисление")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
