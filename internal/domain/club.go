package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus статус подписки клуба на платформу
const (
	ClubSubscriptionTrial     = "trial"
	ClubSubscriptionActive    = "active"
	ClubSubscriptionSuspended = "suspended"
	ClubSubscriptionCancelled = "cancelled"
)

// Club представляет собой клуб — корневую сущность тенанта.
// Все остальные сущности принадлежат ровно одному клубу.
type Club struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description,omitempty"`
	LogoURL        string    `json:"logo_url,omitempty"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`

	// Stripe Connect
	StripeAccountID          string `json:"stripe_account_id,omitempty"`
	StripeOnboardingComplete bool   `json:"stripe_onboarding_complete"`
	WelcomeEmailSent         bool   `json:"welcome_email_sent"`

	// Зашифрованный OpenAI ключ хранится как есть, расшифровка — забота AI-прокси
	OpenAIAPIKeyEncrypted string `json:"-"`
	AIEnabled             bool   `json:"ai_enabled"`

	Features map[string]bool `json:"features,omitempty"`

	SubscriptionStatus string `json:"subscription_status"`
	SubscriptionPlan   string `json:"subscription_plan"`

	// Мягкое удаление: клуб никогда не удаляется физически
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDeleted возвращает true, если клуб помечен удаленным
func (c *Club) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ClubRequest представляет запрос на создание клуба
type ClubRequest struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Slug           string          `json:"slug" binding:"required,max=100"`
	Description    string          `json:"description"`
	PrimaryColor   string          `json:"primary_color"`
	SecondaryColor string          `json:"secondary_color"`
	Features       map[string]bool `json:"features"`
}

// ClubUpdateRequest представляет запрос на обновление клуба.
// Nil-поля не изменяются.
type ClubUpdateRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=255"`
	Description    *string          `json:"description"`
	LogoURL        *string          `json:"logo_url"`
	PrimaryColor   *string          `json:"primary_color"`
	SecondaryColor *string          `json:"secondary_color"`
	Features       *map[string]bool `json:"features"`
}
