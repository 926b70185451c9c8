package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы заявки на обмен
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
	SwapStatusWithdrawn = "withdrawn"
)

// Типы заявок
const (
	SwapTypeSwap       = "swap"
	SwapTypeRedemption = "redemption"
)

// Swap представляет заявку на обмен или выкуп за баллы
type Swap struct {
	ID                uuid.UUID  `json:"id"`
	RequesterID       uuid.UUID  `json:"requester_id"`
	RequesterName     string     `json:"requester_name"`
	RequesterEmail    string     `json:"requester_email"`
	ItemID            uuid.UUID  `json:"item_id"`
	ItemTitle         string     `json:"item_title"`
	UploaderID        uuid.UUID  `json:"uploader_id"`
	UploaderName      string     `json:"uploader_name"`
	UploaderEmail     string     `json:"uploader_email"`
	ProposedItemID    *uuid.UUID `json:"proposed_item_id,omitempty"`
	ProposedItemTitle string     `json:"proposed_item_title,omitempty"`
	Message           string     `json:"message,omitempty"`
	Type              string     `json:"type"` // swap, redemption
	PointsUsed        int        `json:"points_used"`
	Status            string     `json:"status"` // pending, accepted, rejected, completed, withdrawn
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`

	// Дополнительные поля для API
	RequestedItem *Item `json:"requested_item,omitempty"`
	ProposedItem  *Item `json:"proposed_item,omitempty"`
}

// IsTerminalSwapStatus сообщает, является ли статус заявки конечным.
// Из конечного статуса заявка больше не меняется.
func IsTerminalSwapStatus(status string) bool {
	switch status {
	case SwapStatusCompleted, SwapStatusAccepted, SwapStatusRejected, SwapStatusWithdrawn:
		return true
	}
	return false
}

// CanResolveSwap сообщает, допустим ли перевод заявки из текущего статуса в новый.
// Разрешать заявку можно только из pending, и только в конечный статус.
func CanResolveSwap(current, next string) bool {
	if current != SwapStatusPending {
		return false
	}
	switch next {
	case SwapStatusCompleted, SwapStatusRejected, SwapStatusWithdrawn:
		return true
	}
	return false
}

// ResolverFor возвращает, кто вправе перевести заявку в указанный статус:
// владелец вещи принимает или отклоняет, отправитель отзывает.
func (s *Swap) ResolverFor(next string) uuid.UUID {
	switch next {
	case SwapStatusCompleted, SwapStatusRejected:
		return s.UploaderID
	case SwapStatusWithdrawn:
		return s.RequesterID
	}
	return uuid.Nil
}
