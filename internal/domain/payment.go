package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentType тип платежа
type PaymentType string

const (
	PaymentTypeBooking      PaymentType = "booking"
	PaymentTypeSubscription PaymentType = "subscription"
	PaymentTypeDonation     PaymentType = "donation"
	PaymentTypePlatformFee  PaymentType = "platform_fee"
)

// Payment финансовая запись, неизменяемая после фиксации.
// Создается только реконсилятором вебхуков по подтвержденному событию успеха:
// на один payment_intent_id существует не более одной строки.
type Payment struct {
	ID       uuid.UUID  `json:"id"`
	ClubID   uuid.UUID  `json:"club_id"`
	MemberID *uuid.UUID `json:"member_id,omitempty"`

	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	PaymentType PaymentType   `json:"payment_type"`
	Status      PaymentStatus `json:"status"`

	// Идентификаторы процессора — каждый служит натуральным ключом идемпотентности
	PaymentIntentID    string `json:"payment_intent_id,omitempty"`
	ChargeID           string `json:"charge_id,omitempty"`
	CheckoutSessionID  string `json:"checkout_session_id,omitempty"`
	ConnectedAccountID string `json:"connected_account_id,omitempty"`

	PlatformFeeAmount float64 `json:"platform_fee_amount"`
	ClubEarnings      float64 `json:"club_earnings"`

	FailureReason string            `json:"failure_reason,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckoutOneTimeRequest запрос на одноразовую checkout-сессию
type CheckoutOneTimeRequest struct {
	PriceID            string `json:"price_ref" binding:"required"`
	ConnectedAccountID string `json:"destination_account" binding:"required"`
	FeeCents           int64  `json:"fee_cents" binding:"required,gt=0"`
}

// CheckoutSubscriptionRequest запрос на подписочную checkout-сессию
type CheckoutSubscriptionRequest struct {
	PriceID            string  `json:"price_ref" binding:"required"`
	ConnectedAccountID string  `json:"destination_account" binding:"required"`
	FeePercent         float64 `json:"fee_percent" binding:"required,gt=0,lt=100"`
}

// CheckoutSessionResponse результат создания checkout-сессии
type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ServiceBookingRequest запрос на checkout-сессию бронирования услуги.
// Сумма берется из каталога услуг клуба, а не из запроса клиента.
type ServiceBookingRequest struct {
	ClubSlug      string `json:"club_slug" binding:"required"`
	ServiceID     string `json:"service_id" binding:"required,uuid4"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerName  string `json:"customer_name" binding:"max=255"`
	BookingDate   string `json:"booking_date"`
	BookingTime   string `json:"booking_time"`
}

// ServiceBookingResponse результат создания сессии бронирования
// с разбивкой комиссии платформы
type ServiceBookingResponse struct {
	CheckoutURL       string `json:"checkout_url"`
	SessionID         string `json:"session_id"`
	PriceCents        int64  `json:"price_cents"`
	PlatformFeeCents  int64  `json:"platform_fee_cents"`
	ClubReceivesCents int64  `json:"club_receives_cents"`
}
