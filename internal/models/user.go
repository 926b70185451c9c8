package models

import (
	"time"

	"github.com/google/uuid"
)

// SignupBonus начисляется каждому новому пользователю при регистрации
const SignupBonus = 100

// ListingBonus начисляется за размещение вещи
const ListingBonus = 5

// User представляет пользователя и его баланс баллов
type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Points           int        `json:"points"`
	IsAdmin          bool       `json:"is_admin"`
	Banned           bool       `json:"banned"`
	BannedAt         *time.Time `json:"banned_at,omitempty"`
	BannedBy         *uuid.UUID `json:"banned_by,omitempty"`
	LastPointsReason string     `json:"last_points_reason,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CanAfford сообщает, хватает ли у пользователя баллов на списание.
// Баланс никогда не уходит в минус.
func (u *User) CanAfford(cost int) bool {
	return cost >= 0 && u.Points >= cost
}

// PointTransaction представляет запись в журнале движения баллов
type PointTransaction struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Delta        int       `json:"delta"`
	Reason       string    `json:"reason"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
