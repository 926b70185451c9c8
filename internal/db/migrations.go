package db

import (
	"context"
	"fmt"
)

// schema содержит DDL для всех таблиц сервиса.
// Инвариант points >= 0 закреплен на уровне базы (CHECK),
// version используется для оптимистичных блокировок.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL DEFAULT '',
		email TEXT UNIQUE,
		password_hash TEXT,
		avatar_url TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL DEFAULT 100 CHECK (points >= 0),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		banned BOOLEAN NOT NULL DEFAULT FALSE,
		banned_at TIMESTAMPTZ,
		banned_by UUID,
		last_points_reason TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS telegram_users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		telegram_id BIGINT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		raw_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		uploader_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		uploader_name TEXT NOT NULL DEFAULT '',
		uploader_email TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		size TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL,
		points INTEGER NOT NULL CHECK (points >= 10 AND points <= 200),
		tags TEXT[] NOT NULL DEFAULT '{}',
		image_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		available BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by UUID,
		approved_at TIMESTAMPTZ,
		rejected_by UUID,
		rejected_at TIMESTAMPTZ,
		swapped_with UUID,
		swapped_at TIMESTAMPTZ,
		redeemed_by UUID,
		redeemed_at TIMESTAMPTZ,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_items_status_available ON items (status, available)`,
	`CREATE INDEX IF NOT EXISTS idx_items_uploader ON items (uploader_id)`,

	`CREATE TABLE IF NOT EXISTS swaps (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		requester_name TEXT NOT NULL DEFAULT '',
		requester_email TEXT NOT NULL DEFAULT '',
		item_id UUID NOT NULL,
		item_title TEXT NOT NULL DEFAULT '',
		uploader_id UUID NOT NULL,
		uploader_name TEXT NOT NULL DEFAULT '',
		uploader_email TEXT NOT NULL DEFAULT '',
		proposed_item_id UUID,
		proposed_item_title TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'swap',
		points_used INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ
	)`,

	`CREATE INDEX IF NOT EXISTS idx_swaps_requester ON swaps (requester_id)`,
	`CREATE INDEX IF NOT EXISTS idx_swaps_uploader ON swaps (uploader_id)`,
	`CREATE INDEX IF NOT EXISTS idx_swaps_item ON swaps (item_id)`,

	`CREATE TABLE IF NOT EXISTS point_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		delta INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		balance_after INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_point_transactions_user ON point_transactions (user_id, created_at DESC)`,
}

// Migrate применяет DDL схемы к базе данных
func Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка миграции #%d: %w", i, err)
		}
	}
	return nil
}
