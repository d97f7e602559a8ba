package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlatformUser представляет аккаунт уровня платформы (владелец/оператор клуба).
// Принадлежит платформе и может быть связан максимум с одним connected-аккаунтом.
type PlatformUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`

	// Stripe Connect
	StripeAccountID      string `json:"stripe_account_id,omitempty"`
	ConnectDashboardType string `json:"connect_dashboard_type,omitempty"` // express | standard
	ChargesEnabled       bool   `json:"charges_enabled"`
	DetailsSubmitted     bool   `json:"details_submitted"`
	Country              string `json:"country,omitempty"`
	DefaultCurrency      string `json:"default_currency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConnectStatusUpdate частичное обновление Connect-статуса пользователя.
// Nil-поля в payload отсутствовали и не затрагиваются.
type ConnectStatusUpdate struct {
	ChargesEnabled   *bool
	DetailsSubmitted *bool
	Country          *string
	DefaultCurrency  *string
}

// IsEmpty возвращает true, если обновлять нечего
func (u ConnectStatusUpdate) IsEmpty() bool {
	return u.ChargesEnabled == nil && u.DetailsSubmitted == nil && u.Country == nil && u.DefaultCurrency == nil
}

// ClubMember конечный клиент клуба. Жизненный цикл независим от PlatformUser,
// уникальность — в пределах (club_id, email).
type ClubMember struct {
	ID          uuid.UUID `json:"id"`
	ClubID      uuid.UUID `json:"club_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	MemberTier  string    `json:"member_tier"` // free, premium, vip
	Status      string    `json:"status"`      // active, suspended, banned
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberRequest представляет запрос на создание участника клуба
type MemberRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"max=100"`
	MemberTier  string `json:"member_tier"`
}
