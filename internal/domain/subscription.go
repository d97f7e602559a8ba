package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus статус подписки участника
const (
	MemberSubscriptionActive    = "active"
	MemberSubscriptionTrial     = "trialing"
	MemberSubscriptionPastDue   = "past_due"
	MemberSubscriptionCancelled = "cancelled"
	MemberSubscriptionExpired   = "expired"
)

// MembershipTier описывает тариф членства клуба
type MembershipTier struct {
	ID            uuid.UUID `json:"id"`
	ClubID        uuid.UUID `json:"club_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"` // free, premium, vip
	PriceMonthly  float64   `json:"price_monthly"`
	PriceYearly   float64   `json:"price_yearly"`
	StripePriceID string    `json:"stripe_price_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MemberSubscription подписка участника на тариф клуба.
// Строка обновляется lifecycle-вебхуками по stripe_subscription_id.
type MemberSubscription struct {
	ID       uuid.UUID `json:"id"`
	MemberID uuid.UUID `json:"member_id"`
	TierID   uuid.UUID `json:"tier_id"`

	Status string  `json:"status"`
	Amount float64 `json:"amount"`

	StripeSubscriptionID string     `json:"stripe_subscription_id,omitempty"`
	StripeCustomerID     string     `json:"stripe_customer_id,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionStatusUpdate частичное обновление подписки из lifecycle-вебхука
type SubscriptionStatusUpdate struct {
	Status            string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd *bool
	CancelledAt       *time.Time
}
