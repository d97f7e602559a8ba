package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingService бронируемая услуга клуба (тренировка, корт, консультация).
// Хранится в БД и привязана к тенанту — каталог услуг переживает рестарты процесса.
type BookingService struct {
	ID              uuid.UUID `json:"id"`
	ClubID          uuid.UUID `json:"club_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookingServiceRequest запрос на создание услуги
type BookingServiceRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"required,gt=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"gte=0"`
}
