package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/clublaunch/payments-service/internal/domain"
)

// OneTimeSessionInput параметры одноразовой checkout-сессии с destination charge
type OneTimeSessionInput struct {
	PriceID            string
	ConnectedAccountID string
	FeeCents           int64
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// SubscriptionSessionInput параметры подписочной checkout-сессии
type SubscriptionSessionInput struct {
	PriceID            string
	ConnectedAccountID string
	FeePercent         float64
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// BookingSessionInput параметры сессии бронирования услуги. Цена задается
// inline через price_data: сумма приходит из каталога услуг, а не от клиента.
type BookingSessionInput struct {
	ServiceName        string
	Currency           string
	PriceCents         int64
	FeeCents           int64
	ConnectedAccountID string
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CreateOneTimeSession создает checkout-сессию в режиме payment.
// Комиссия платформы удерживается через application_fee_amount,
// остаток уходит на connected-аккаунт через transfer_data.
func (c *Client) CreateOneTimeSession(ctx context.Context, in OneTimeSessionInput) (domain.CheckoutSessionResponse, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(in.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(in.ConnectedAccountID),
			},
			Metadata: in.Metadata,
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.log.Errorw("Failed to create one-time checkout session", "error", err, "accountID", in.ConnectedAccountID)
		return domain.CheckoutSessionResponse{}, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return domain.CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}

// CreateSubscriptionSession создает checkout-сессию в режиме subscription.
// Комиссия платформы удерживается с каждого инвойса через application_fee_percent.
func (c *Client) CreateSubscriptionSession(ctx context.Context, in SubscriptionSessionInput) (domain.CheckoutSessionResponse, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			ApplicationFeePercent: stripe.Float64(in.FeePercent),
			TransferData: &stripe.CheckoutSessionSubscriptionDataTransferDataParams{
				Destination: stripe.String(in.ConnectedAccountID),
			},
			Metadata: in.Metadata,
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.log.Errorw("Failed to create subscription checkout session", "error", err, "accountID", in.ConnectedAccountID)
		return domain.CheckoutSessionResponse{}, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return domain.CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}

// CreateBookingSession создает checkout-сессию бронирования услуги с inline-ценой
func (c *Client) CreateBookingSession(ctx context.Context, in BookingSessionInput) (domain.CheckoutSessionResponse, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(in.Currency),
					UnitAmount: stripe.Int64(in.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ServiceName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(in.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(in.ConnectedAccountID),
			},
			Metadata: in.Metadata,
		},
		CustomerEmail: stripe.String(in.CustomerEmail),
		SuccessURL:    stripe.String(in.SuccessURL),
		CancelURL:     stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.log.Errorw("Failed to create booking checkout session", "error", err, "accountID", in.ConnectedAccountID)
		return domain.CheckoutSessionResponse{}, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return domain.CheckoutSessionResponse{ID: session.ID, URL: session.URL}, nil
}
