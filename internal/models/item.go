package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы вещи в процессе модерации
const (
	ItemStatusPending   = "pending"
	ItemStatusApproved  = "approved"
	ItemStatusRejected  = "rejected"
	ItemStatusWithdrawn = "withdrawn"
)

// Границы стоимости вещи в баллах
const (
	MinItemPoints = 10
	MaxItemPoints = 200
)

// ValidCategories содержит допустимые категории вещей
var ValidCategories = map[string]bool{
	"Tops": true, "Bottoms": true, "Dresses": true, "Outerwear": true,
	"Shoes": true, "Accessories": true, "Bags": true, "Jewelry": true,
	"Athletic wear": true, "Formal wear": true,
}

// ValidConditions содержит допустимые состояния вещей
var ValidConditions = map[string]bool{
	"Like New": true, "Excellent": true, "Good": true, "Fair": true,
}

// Item представляет вещь в каталоге
type Item struct {
	ID            uuid.UUID  `json:"id"`
	UploaderID    uuid.UUID  `json:"uploader_id"`
	UploaderName  string     `json:"uploader_name"`
	UploaderEmail string     `json:"uploader_email"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Size          string     `json:"size"`
	Condition     string     `json:"condition"`
	Points        int        `json:"points"`
	Tags          []string   `json:"tags"`
	ImageURL      string     `json:"image_url"`
	Status        string     `json:"status"` // pending, approved, rejected, withdrawn
	Available     bool       `json:"available"`
	ApprovedBy    *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	RejectedBy    *uuid.UUID `json:"rejected_by,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	SwappedWith   *uuid.UUID `json:"swapped_with,omitempty"`
	SwappedAt     *time.Time `json:"swapped_at,omitempty"`
	RedeemedBy    *uuid.UUID `json:"redeemed_by,omitempty"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Дополнительные поля для API
	Uploader *User `json:"uploader,omitempty"`
}

// CanModerate сообщает, допустим ли перевод вещи в новый статус модератором.
// Одобрить или отклонить можно только вещь в статусе pending.
func CanModerate(current, next string) bool {
	if current != ItemStatusPending {
		return false
	}
	return next == ItemStatusApproved || next == ItemStatusRejected
}

// CanWithdraw сообщает, может ли владелец отозвать вещь.
// Отзыв допустим только пока вещь на модерации.
func CanWithdraw(status string) bool {
	return status == ItemStatusPending
}

// IsRequestable сообщает, может ли пользователь запросить обмен или выкуп вещи.
// Вещь должна быть одобрена, доступна и не принадлежать самому пользователю.
func (i *Item) IsRequestable(requesterID uuid.UUID) bool {
	return i.Status == ItemStatusApproved && i.Available && i.UploaderID != requesterID
}

// ValidateNew проверяет поля новой вещи перед сохранением
func (i *Item) ValidateNew() string {
	if i.Title == "" {
		return "Название обязательно"
	}
	if !ValidCategories[i.Category] {
		return "Недопустимая категория"
	}
	if !ValidConditions[i.Condition] {
		return "Недопустимое состояние вещи"
	}
	if i.Points < MinItemPoints || i.Points > MaxItemPoints {
		return "Стоимость вещи должна быть от 10 до 200 баллов"
	}
	if i.ImageURL == "" {
		return "Добавьте изображение"
	}
	return ""
}
