package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"github.com/clublaunch/payments-service/internal/domain"
	stripeint "github.com/clublaunch/payments-service/internal/integration/stripe"
	"github.com/clublaunch/payments-service/internal/kafka/producer"
	"github.com/clublaunch/payments-service/internal/metrics"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const (
	webhookSourcePlatform = "platform"
	webhookSourceConnect  = "connect"

	outcomeProcessed = "processed"
	outcomeIgnored   = "ignored"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

// WebhookService интерфейс реконсилятора вебхуков процессора.
// Платформенные и Connect-события приходят на разные эндпоинты
// и проверяются разными секретами.
type WebhookService interface {
	// ProcessPlatformEvent обрабатывает событие платформенного эндпоинта
	ProcessPlatformEvent(ctx context.Context, payload []byte, sigHeader string) error

	// ProcessConnectEvent обрабатывает событие Connect-эндпоинта
	ProcessConnectEvent(ctx context.Context, payload []byte, sigHeader string) error
}

// WebhookSecrets секреты подписи для двух эндпоинтов вебхуков
type WebhookSecrets struct {
	Platform string
	Connect  string
}

type webhookService struct {
	clubRepo    repository.ClubRepository
	userRepo    repository.UserRepository
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRepository
	subsRepo    repository.SubscriptionRepository
	events      producer.EventProducer
	metrics     metrics.PaymentMetrics
	secrets     WebhookSecrets
	log         *logger.Logger
}

// NewWebhookService создает новый реконсилятор вебхуков
func NewWebhookService(
	clubRepo repository.ClubRepository,
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	paymentRepo repository.PaymentRepository,
	subsRepo repository.SubscriptionRepository,
	events producer.EventProducer,
	paymentMetrics metrics.PaymentMetrics,
	secrets WebhookSecrets,
	log *logger.Logger,
) WebhookService {
	return &webhookService{
		clubRepo:    clubRepo,
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		subsRepo:    subsRepo,
		events:      events,
		metrics:     paymentMetrics,
		secrets:     secrets,
		log:         log,
	}
}

func (s *webhookService) ProcessPlatformEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := stripeint.VerifyEvent(payload, sigHeader, s.secrets.Platform)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, webhookSourcePlatform, event)
}

func (s *webhookService) ProcessConnectEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := stripeint.VerifyEvent(payload, sigHeader, s.secrets.Connect)
	if err != nil {
		return err
	}
	return s.dispatch(ctx, webhookSourceConnect, event)
}

func (s *webhookService) dispatch(ctx context.Context, source string, event stripe.Event) error {
	s.log.Info("Received %s webhook event %s, type: %s", source, event.ID, event.Type)

	var outcome string
	var err error

	switch event.Type {
	case "checkout.session.completed":
		outcome, err = s.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		outcome, err = s.handlePaymentIntentSucceeded(ctx, event)
	case "charge.succeeded":
		outcome, err = s.handleChargeSucceeded(ctx, event)
	case "account.updated":
		outcome, err = s.handleAccountUpdated(ctx, event)
	case "customer.subscription.updated":
		outcome, err = s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		outcome, err = s.handleSubscriptionDeleted(ctx, event)
	case "payment_intent.payment_failed":
		// Неудачные платежи не материализуются, достаточно следа в логах
		s.logPaymentFailed(event)
		outcome = outcomeProcessed
	case "application_fee.created", "invoice.payment_succeeded":
		// Учитываются метрикой, локального состояния не меняют
		s.log.Debug("Acknowledged %s event %s without local effect", event.Type, event.ID)
		outcome = outcomeProcessed
	default:
		s.log.Debug("Ignored webhook event type: %s", event.Type)
		outcome = outcomeIgnored
	}

	if err != nil {
		outcome = outcomeError
	}
	s.metrics.IncWebhookEvent(source, string(event.Type), outcome)

	return err
}

// checkoutSessionPayload устойчивый срез полей checkout-сессии
type checkoutSessionPayload struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	PaymentIntent   string `json:"payment_intent"`
	AmountTotal     int64  `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// handleCheckoutCompleted фиксирует платеж по завершенной checkout-сессии.
// Вставка идемпотентна по payment_intent_id: повторная доставка события
// не создает вторую строку и не считается ошибкой.
func (s *webhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) (string, error) {
	var session checkoutSessionPayload
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		// Битый payload при валидной подписи: ретрай не поможет, подтверждаем
		s.log.Error("Failed to decode checkout session in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}

	// У подписочных сессий нет payment intent, их жизненный цикл
	// ведут события customer.subscription.*
	if session.PaymentIntent == "" {
		s.log.Debug("Checkout session %s has no payment intent (mode %s), skipping", session.ID, session.Mode)
		return outcomeIgnored, nil
	}

	club, ok := s.resolveClub(ctx, event.Account, session.Metadata)
	if !ok {
		// Событие подписано и валидно, но соотнести его не с кем:
		// подтверждаем доставку, иначе процессор будет ретраить вечно
		s.log.Warn("Cannot resolve club for checkout session %s (account %q), acking", session.ID, event.Account)
		return outcomeIgnored, nil
	}

	payment := domain.Payment{
		ID:                uuid.New(),
		ClubID:            club.ID,
		Amount:            float64(session.AmountTotal) / 100,
		Currency:          session.Currency,
		PaymentType:       paymentTypeFromMetadata(session.Metadata),
		Status:            domain.PaymentStatusSucceeded,
		PaymentIntentID:   session.PaymentIntent,
		CheckoutSessionID: session.ID,
		Metadata:          session.Metadata,
	}

	if event.Account != "" {
		payment.ConnectedAccountID = event.Account
	} else {
		payment.ConnectedAccountID = club.StripeAccountID
	}

	payment.PlatformFeeAmount = feeAmountFromEvent(0, session.Metadata)
	payment.ClubEarnings = payment.Amount - payment.PlatformFeeAmount

	if memberID := s.resolveMember(ctx, club.ID, session); memberID != nil {
		payment.MemberID = memberID
	}

	return s.recordPayment(ctx, payment, club.Slug)
}

// paymentIntentPayload устойчивый срез полей payment_intent.succeeded
type paymentIntentPayload struct {
	ID                   string            `json:"id"`
	Amount               int64             `json:"amount"`
	AmountReceived       int64             `json:"amount_received"`
	Currency             string            `json:"currency"`
	ApplicationFeeAmount int64             `json:"application_fee_amount"`
	LatestCharge         string            `json:"latest_charge"`
	Metadata             map[string]string `json:"metadata"`
}

// handlePaymentIntentSucceeded фиксирует платеж по успешному intent.
// Событие может прийти вместе с checkout.session.completed для того же
// intent — уникальность по payment_intent_id схлопывает их в одну строку.
func (s *webhookService) handlePaymentIntentSucceeded(ctx context.Context, event stripe.Event) (string, error) {
	var intent paymentIntentPayload
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.log.Error("Failed to decode payment intent in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}
	if intent.ID == "" {
		s.log.Error("Event %s carries no intent id, acking", event.ID)
		return outcomeError, nil
	}

	club, ok := s.resolveClub(ctx, event.Account, intent.Metadata)
	if !ok {
		s.log.Warn("Cannot resolve club for payment intent %s (account %q), acking", intent.ID, event.Account)
		return outcomeIgnored, nil
	}

	amount := intent.AmountReceived
	if amount == 0 {
		amount = intent.Amount
	}

	payment := domain.Payment{
		ID:              uuid.New(),
		ClubID:          club.ID,
		Amount:          float64(amount) / 100,
		Currency:        intent.Currency,
		PaymentType:     paymentTypeFromMetadata(intent.Metadata),
		Status:          domain.PaymentStatusSucceeded,
		PaymentIntentID: intent.ID,
		ChargeID:        intent.LatestCharge,
		Metadata:        intent.Metadata,
	}
	if event.Account != "" {
		payment.ConnectedAccountID = event.Account
	} else {
		payment.ConnectedAccountID = club.StripeAccountID
	}
	payment.PlatformFeeAmount = feeAmountFromEvent(intent.ApplicationFeeAmount, intent.Metadata)
	payment.ClubEarnings = payment.Amount - payment.PlatformFeeAmount

	return s.recordPayment(ctx, payment, club.Slug)
}

// chargePayload устойчивый срез полей charge.succeeded
type chargePayload struct {
	ID                   string            `json:"id"`
	PaymentIntent        string            `json:"payment_intent"`
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	ApplicationFeeAmount int64             `json:"application_fee_amount"`
	Metadata             map[string]string `json:"metadata"`
}

func (s *webhookService) handleChargeSucceeded(ctx context.Context, event stripe.Event) (string, error) {
	var charge chargePayload
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		s.log.Error("Failed to decode charge in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}

	// Charge вне intent-флоу ключа идемпотентности не имеет
	if charge.PaymentIntent == "" {
		s.log.Debug("Charge %s has no payment intent, skipping", charge.ID)
		return outcomeIgnored, nil
	}

	club, ok := s.resolveClub(ctx, event.Account, charge.Metadata)
	if !ok {
		s.log.Warn("Cannot resolve club for charge %s (account %q), acking", charge.ID, event.Account)
		return outcomeIgnored, nil
	}

	payment := domain.Payment{
		ID:              uuid.New(),
		ClubID:          club.ID,
		Amount:          float64(charge.Amount) / 100,
		Currency:        charge.Currency,
		PaymentType:     paymentTypeFromMetadata(charge.Metadata),
		Status:          domain.PaymentStatusSucceeded,
		PaymentIntentID: charge.PaymentIntent,
		ChargeID:        charge.ID,
		Metadata:        charge.Metadata,
	}
	if event.Account != "" {
		payment.ConnectedAccountID = event.Account
	} else {
		payment.ConnectedAccountID = club.StripeAccountID
	}
	payment.PlatformFeeAmount = feeAmountFromEvent(charge.ApplicationFeeAmount, charge.Metadata)
	payment.ClubEarnings = payment.Amount - payment.PlatformFeeAmount

	return s.recordPayment(ctx, payment, club.Slug)
}

// feeAmountFromEvent комиссия платформы из события: application-fee поле,
// иначе platform_fee_cents из метаданных сессии, иначе ноль
func feeAmountFromEvent(applicationFeeCents int64, metadata map[string]string) float64 {
	if applicationFeeCents > 0 {
		return float64(applicationFeeCents) / 100
	}
	if feeStr, ok := metadata["platform_fee_cents"]; ok {
		if feeCents, err := strconv.ParseInt(feeStr, 10, 64); err == nil {
			return float64(feeCents) / 100
		}
	}
	return 0
}

// recordPayment идемпотентно вставляет платеж и публикует payment.recorded
func (s *webhookService) recordPayment(ctx context.Context, payment domain.Payment, clubSlug string) (string, error) {
	created, err := s.paymentRepo.Insert(ctx, payment)
	if err != nil {
		return outcomeError, fmt.Errorf("failed to insert payment: %w", err)
	}
	if !created {
		s.log.Info("Duplicate delivery for payment intent %s, skipping", payment.PaymentIntentID)
		// Повторная доставка должна нести те же суммы, что уже записаны;
		// расхождение означает рассинхрон с процессором
		if existing, getErr := s.paymentRepo.GetByPaymentIntentID(ctx, payment.PaymentIntentID); getErr == nil {
			if existing.Amount != payment.Amount {
				s.log.Warn("Payment intent %s redelivered with amount %.2f, recorded %.2f",
					payment.PaymentIntentID, payment.Amount, existing.Amount)
			}
		}
		s.metrics.IncDuplicateSkipped()
		return outcomeDuplicate, nil
	}

	s.metrics.IncPaymentRecorded(payment.Currency, string(payment.PaymentType))
	s.metrics.ObservePaymentAmount(payment.Amount, payment.Currency)

	// Публикация события после фиксации; сбой брокера не откатывает платеж
	if err := s.events.PublishPaymentRecorded(ctx, payment); err != nil {
		s.log.Error("Failed to publish payment.recorded for %s: %v", payment.PaymentIntentID, err)
	}

	s.log.Info("Payment %s recorded for club %s: %.2f %s (fee %.2f)",
		payment.PaymentIntentID, clubSlug, payment.Amount, payment.Currency, payment.PlatformFeeAmount)

	return outcomeProcessed, nil
}

// resolveClub сопоставляет событие клубу: по connected-аккаунту события,
// иначе по club_slug из метаданных сессии
func (s *webhookService) resolveClub(ctx context.Context, accountID string, metadata map[string]string) (domain.Club, bool) {
	if accountID != "" {
		club, err := s.clubRepo.GetByStripeAccountID(ctx, accountID)
		if err == nil {
			return club, true
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to resolve club by account %s: %v", accountID, err)
		}
	}

	if slug := metadata["club_slug"]; slug != "" {
		club, err := s.clubRepo.GetBySlug(ctx, slug)
		if err == nil {
			return club, true
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to resolve club by slug %s: %v", slug, err)
		}
	}

	return domain.Club{}, false
}

// resolveMember сопоставляет платеж участнику клуба по email, best-effort
func (s *webhookService) resolveMember(ctx context.Context, clubID uuid.UUID, session checkoutSessionPayload) *uuid.UUID {
	email := session.Metadata["customer_email"]
	if email == "" {
		email = session.CustomerEmail
	}
	if email == "" {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		return nil
	}

	member, err := s.memberRepo.GetByClubAndEmail(ctx, clubID, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Failed to resolve member %s in club %s: %v", email, clubID, err)
		}
		return nil
	}

	return &member.ID
}

func paymentTypeFromMetadata(metadata map[string]string) domain.PaymentType {
	switch domain.PaymentType(metadata["payment_type"]) {
	case domain.PaymentTypeBooking:
		return domain.PaymentTypeBooking
	case domain.PaymentTypeSubscription:
		return domain.PaymentTypeSubscription
	default:
		return domain.PaymentTypeDonation
	}
}

// accountPayload устойчивый срез полей события account.updated.
// Указатели отличают отсутствующее поле от ложного значения.
type accountPayload struct {
	ID               string  `json:"id"`
	ChargesEnabled   *bool   `json:"charges_enabled"`
	DetailsSubmitted *bool   `json:"details_submitted"`
	Country          *string `json:"country"`
	DefaultCurrency  *string `json:"default_currency"`
}

// handleAccountUpdated частично обновляет Connect-статус владельца аккаунта.
// Когда аккаунт отчитался о details_submitted, клуб помечается готовым к продажам,
// а приветственное событие публикуется не более одного раза.
func (s *webhookService) handleAccountUpdated(ctx context.Context, event stripe.Event) (string, error) {
	var account accountPayload
	if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
		s.log.Error("Failed to decode account in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}
	if account.ID == "" {
		s.log.Error("Event %s carries no account id, acking", event.ID)
		return outcomeError, nil
	}

	update := domain.ConnectStatusUpdate{
		ChargesEnabled:   account.ChargesEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
		Country:          account.Country,
		DefaultCurrency:  account.DefaultCurrency,
	}

	if err := s.userRepo.UpdateConnectStatus(ctx, account.ID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("No platform user for account %s, acking account.updated", account.ID)
		} else {
			return outcomeError, fmt.Errorf("failed to update connect status: %w", err)
		}
	}

	onboarded := account.DetailsSubmitted != nil && *account.DetailsSubmitted
	if !onboarded {
		return outcomeProcessed, nil
	}

	club, firstTime, err := s.clubRepo.CompleteOnboarding(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("No club linked to account %s, onboarding flag not applicable", account.ID)
			return outcomeProcessed, nil
		}
		return outcomeError, fmt.Errorf("failed to complete club onboarding: %w", err)
	}

	if firstTime {
		if err := s.events.PublishClubWelcome(ctx, club); err != nil {
			// Флаг уже взведен: приветствие теряется, но не дублируется
			s.log.Error("Failed to publish club.welcome for %s: %v", club.Slug, err)
		}
	}

	s.log.Info("Club %s onboarding complete (account %s, first time: %t)", club.Slug, account.ID, firstTime)
	return outcomeProcessed, nil
}

// subscriptionPayload устойчивый срез полей событий customer.subscription.*
type subscriptionPayload struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd *bool  `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CanceledAt        int64  `json:"canceled_at"`
}

func (s *webhookService) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) (string, error) {
	var sub subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		s.log.Error("Failed to decode subscription in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}

	update := domain.SubscriptionStatusUpdate{
		Status:            mapSubscriptionStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		update.CurrentPeriodEnd = &periodEnd
	}
	if sub.CanceledAt > 0 {
		cancelledAt := time.Unix(sub.CanceledAt, 0).UTC()
		update.CancelledAt = &cancelledAt
	}

	return s.applySubscriptionUpdate(ctx, sub.ID, update)
}

func (s *webhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) (string, error) {
	var sub subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		s.log.Error("Failed to decode subscription in event %s, acking: %v", event.ID, err)
		return outcomeError, nil
	}

	// Повторная доставка deleted-события не перезатирает cancelled_at
	if existing, getErr := s.subsRepo.GetByStripeID(ctx, sub.ID); getErr == nil &&
		existing.Status == domain.MemberSubscriptionCancelled {
		s.log.Info("Member subscription %s already cancelled, skipping", sub.ID)
		return outcomeDuplicate, nil
	}

	cancelledAt := time.Now().UTC()
	if sub.CanceledAt > 0 {
		cancelledAt = time.Unix(sub.CanceledAt, 0).UTC()
	}

	update := domain.SubscriptionStatusUpdate{
		Status:      domain.MemberSubscriptionCancelled,
		CancelledAt: &cancelledAt,
	}

	return s.applySubscriptionUpdate(ctx, sub.ID, update)
}

func (s *webhookService) applySubscriptionUpdate(ctx context.Context, stripeSubscriptionID string, update domain.SubscriptionStatusUpdate) (string, error) {
	if stripeSubscriptionID == "" {
		s.log.Error("Subscription event carries no subscription id, acking")
		return outcomeError, nil
	}

	if err := s.subsRepo.UpdateByStripeID(ctx, stripeSubscriptionID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("No member subscription for %s, acking", stripeSubscriptionID)
			return outcomeIgnored, nil
		}
		return outcomeError, fmt.Errorf("failed to update member subscription: %w", err)
	}

	s.log.Info("Member subscription %s updated, status: %s", stripeSubscriptionID, update.Status)
	return outcomeProcessed, nil
}

// mapSubscriptionStatus переводит статус процессора во внутренний
func mapSubscriptionStatus(status string) string {
	switch status {
	case "active":
		return domain.MemberSubscriptionActive
	case "trialing":
		return domain.MemberSubscriptionTrial
	case "past_due":
		return domain.MemberSubscriptionPastDue
	case "canceled":
		return domain.MemberSubscriptionCancelled
	case "unpaid", "incomplete_expired":
		return domain.MemberSubscriptionExpired
	default:
		return status
	}
}

func (s *webhookService) logPaymentFailed(event stripe.Event) {
	var intent struct {
		ID               string `json:"id"`
		LastPaymentError struct {
			Message string `json:"message"`
		} `json:"last_payment_error"`
	}
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.log.Warn("Failed to decode payment_intent.payment_failed: %v", err)
		return
	}

	s.log.Warn("Payment intent %s failed: %s", intent.ID, intent.LastPaymentError.Message)
}
