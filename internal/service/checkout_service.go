package service

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	stripeint "github.com/clublaunch/payments-service/internal/integration/stripe"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// CheckoutProvider интерфейс интеграции с процессором для checkout-сессий
type CheckoutProvider interface {
	CreateOneTimeSession(ctx context.Context, in stripeint.OneTimeSessionInput) (domain.CheckoutSessionResponse, error)
	CreateSubscriptionSession(ctx context.Context, in stripeint.SubscriptionSessionInput) (domain.CheckoutSessionResponse, error)
	CreateBookingSession(ctx context.Context, in stripeint.BookingSessionInput) (domain.CheckoutSessionResponse, error)
}

// CheckoutService интерфейс сервиса создания checkout-сессий
type CheckoutService interface {
	// CreateOneTimeSession создает одноразовую сессию с фиксированной комиссией
	CreateOneTimeSession(ctx context.Context, req domain.CheckoutOneTimeRequest) (domain.CheckoutSessionResponse, error)

	// CreateSubscriptionSession создает подписочную сессию с процентной комиссией
	CreateSubscriptionSession(ctx context.Context, req domain.CheckoutSubscriptionRequest) (domain.CheckoutSessionResponse, error)

	// CreateServiceBookingSession создает сессию бронирования услуги из каталога клуба
	CreateServiceBookingSession(ctx context.Context, req domain.ServiceBookingRequest) (domain.ServiceBookingResponse, error)
}

// CheckoutConfig платформенные параметры checkout
type CheckoutConfig struct {
	SuccessURL      string
	CancelURL       string
	CommissionRate  float64
	DefaultCurrency string
	SiteName        string
}

type checkoutService struct {
	provider    CheckoutProvider
	clubRepo    repository.ClubRepository
	serviceRepo repository.BookingServiceRepository
	cfg         CheckoutConfig
	log         *logger.Logger
}

// NewCheckoutService создает новый сервис checkout-сессий
func NewCheckoutService(
	provider CheckoutProvider,
	clubRepo repository.ClubRepository,
	serviceRepo repository.BookingServiceRepository,
	cfg CheckoutConfig,
	log *logger.Logger,
) CheckoutService {
	return &checkoutService{
		provider:    provider,
		clubRepo:    clubRepo,
		serviceRepo: serviceRepo,
		cfg:         cfg,
		log:         log,
	}
}

// platformFeeCents комиссия платформы в центах, дробная часть отбрасывается
func platformFeeCents(priceCents int64, rate float64) int64 {
	return int64(math.Floor(float64(priceCents) * rate))
}

func (s *checkoutService) CreateOneTimeSession(ctx context.Context, req domain.CheckoutOneTimeRequest) (domain.CheckoutSessionResponse, error) {
	s.log.Debug("Creating one-time checkout session, account: %s", req.ConnectedAccountID)

	session, err := s.provider.CreateOneTimeSession(ctx, stripeint.OneTimeSessionInput{
		PriceID:            req.PriceID,
		ConnectedAccountID: req.ConnectedAccountID,
		FeeCents:           req.FeeCents,
		SuccessURL:         s.cfg.SuccessURL,
		CancelURL:          s.cfg.CancelURL,
		Metadata: map[string]string{
			"site":               s.cfg.SiteName,
			"payment_type":       string(domain.PaymentTypeDonation),
			"platform_fee_cents": strconv.FormatInt(req.FeeCents, 10),
		},
	})
	if err != nil {
		return domain.CheckoutSessionResponse{}, domain.NewExternalServiceError("stripe", "failed to create checkout session", err)
	}

	return session, nil
}

func (s *checkoutService) CreateSubscriptionSession(ctx context.Context, req domain.CheckoutSubscriptionRequest) (domain.CheckoutSessionResponse, error) {
	s.log.Debug("Creating subscription checkout session, account: %s", req.ConnectedAccountID)

	session, err := s.provider.CreateSubscriptionSession(ctx, stripeint.SubscriptionSessionInput{
		PriceID:            req.PriceID,
		ConnectedAccountID: req.ConnectedAccountID,
		FeePercent:         req.FeePercent,
		SuccessURL:         s.cfg.SuccessURL,
		CancelURL:          s.cfg.CancelURL,
		Metadata: map[string]string{
			"site":         s.cfg.SiteName,
			"payment_type": string(domain.PaymentTypeSubscription),
		},
	})
	if err != nil {
		return domain.CheckoutSessionResponse{}, domain.NewExternalServiceError("stripe", "failed to create checkout session", err)
	}

	return session, nil
}

func (s *checkoutService) CreateServiceBookingSession(ctx context.Context, req domain.ServiceBookingRequest) (domain.ServiceBookingResponse, error) {
	s.log.Debug("Creating booking session, club: %s, service: %s", req.ClubSlug, req.ServiceID)

	club, err := s.clubRepo.GetBySlug(ctx, req.ClubSlug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ServiceBookingResponse{}, domain.NewNotFoundError("club", req.ClubSlug)
		}
		return domain.ServiceBookingResponse{}, err
	}

	// Продажи возможны только после завершения онбординга
	if club.StripeAccountID == "" || !club.StripeOnboardingComplete {
		return domain.ServiceBookingResponse{}, domain.NewPreconditionError("club has not completed payment onboarding")
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return domain.ServiceBookingResponse{}, domain.NewValidationError("service_id", "must be a valid UUID")
	}

	svc, err := s.serviceRepo.GetByID(ctx, club.ID, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ServiceBookingResponse{}, domain.NewNotFoundError("booking service", req.ServiceID)
		}
		return domain.ServiceBookingResponse{}, err
	}
	if !svc.IsActive {
		return domain.ServiceBookingResponse{}, domain.NewNotFoundError("booking service", req.ServiceID)
	}

	// Сумма берется из каталога, клиентский запрос цену не задает
	feeCents := platformFeeCents(svc.PriceCents, s.cfg.CommissionRate)

	session, err := s.provider.CreateBookingSession(ctx, stripeint.BookingSessionInput{
		ServiceName:        svc.Name,
		Currency:           s.cfg.DefaultCurrency,
		PriceCents:         svc.PriceCents,
		FeeCents:           feeCents,
		ConnectedAccountID: club.StripeAccountID,
		CustomerEmail:      req.CustomerEmail,
		SuccessURL:         s.cfg.SuccessURL,
		CancelURL:          s.cfg.CancelURL,
		Metadata: map[string]string{
			"site":               s.cfg.SiteName,
			"payment_type":       string(domain.PaymentTypeBooking),
			"club_slug":          club.Slug,
			"service_id":         svc.ID.String(),
			"service_name":       svc.Name,
			"customer_email":     req.CustomerEmail,
			"customer_name":      req.CustomerName,
			"booking_date":       req.BookingDate,
			"booking_time":       req.BookingTime,
			"platform_fee_cents": strconv.FormatInt(feeCents, 10),
		},
	})
	if err != nil {
		return domain.ServiceBookingResponse{}, domain.NewExternalServiceError("stripe", "failed to create checkout session", err)
	}

	s.log.Info("Booking session %s created for club %s, fee %d cents", session.ID, club.Slug, feeCents)

	return domain.ServiceBookingResponse{
		CheckoutURL:       session.URL,
		SessionID:         session.ID,
		PriceCents:        svc.PriceCents,
		PlatformFeeCents:  feeCents,
		ClubReceivesCents: svc.PriceCents - feeCents,
	}, nil
}
