package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	stripeint "github.com/clublaunch/payments-service/internal/integration/stripe"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// Common test errors
var (
	errMockRepo     = errors.New("mock repository error")
	errMockProvider = errors.New("mock provider error")
	errMockBroker   = errors.New("mock broker error")
)

func testLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}

// mockClubRepo implements repository.ClubRepository for testing
type mockClubRepo struct {
	CreateFunc               func(ctx context.Context, club domain.Club) (domain.Club, error)
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (domain.Club, error)
	GetBySlugFunc            func(ctx context.Context, slug string) (domain.Club, error)
	GetByStripeAccountFunc   func(ctx context.Context, accountID string) (domain.Club, error)
	ListFunc                 func(ctx context.Context, limit, offset int) ([]domain.Club, error)
	UpdateFunc               func(ctx context.Context, club domain.Club) error
	SetStripeAccountFunc     func(ctx context.Context, clubID uuid.UUID, accountID string) error
	CompleteOnboardingFunc   func(ctx context.Context, accountID string) (domain.Club, bool, error)
	SoftDeleteFunc           func(ctx context.Context, id uuid.UUID) error
	SetStripeAccountCalls    int
	CompleteOnboardingCalls  int
}

func (m *mockClubRepo) Create(ctx context.Context, club domain.Club) (domain.Club, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, club)
	}
	return club, nil
}

func (m *mockClubRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Club, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.Club{}, repository.ErrNotFound
}

func (m *mockClubRepo) GetBySlug(ctx context.Context, slug string) (domain.Club, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return domain.Club{}, repository.ErrNotFound
}

func (m *mockClubRepo) GetByStripeAccountID(ctx context.Context, accountID string) (domain.Club, error) {
	if m.GetByStripeAccountFunc != nil {
		return m.GetByStripeAccountFunc(ctx, accountID)
	}
	return domain.Club{}, repository.ErrNotFound
}

func (m *mockClubRepo) List(ctx context.Context, limit, offset int) ([]domain.Club, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockClubRepo) Update(ctx context.Context, club domain.Club) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, club)
	}
	return nil
}

func (m *mockClubRepo) SetStripeAccount(ctx context.Context, clubID uuid.UUID, accountID string) error {
	m.SetStripeAccountCalls++
	if m.SetStripeAccountFunc != nil {
		return m.SetStripeAccountFunc(ctx, clubID, accountID)
	}
	return nil
}

func (m *mockClubRepo) CompleteOnboarding(ctx context.Context, accountID string) (domain.Club, bool, error) {
	m.CompleteOnboardingCalls++
	if m.CompleteOnboardingFunc != nil {
		return m.CompleteOnboardingFunc(ctx, accountID)
	}
	return domain.Club{}, false, repository.ErrNotFound
}

func (m *mockClubRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return nil
}

// mockUserRepo implements repository.UserRepository for testing
type mockUserRepo struct {
	CreateFunc              func(ctx context.Context, user domain.PlatformUser) (domain.PlatformUser, error)
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error)
	GetByStripeAccountFunc  func(ctx context.Context, accountID string) (domain.PlatformUser, error)
	SetConnectAccountFunc   func(ctx context.Context, userID uuid.UUID, accountID, dashboardType string) error
	UpdateConnectStatusFunc func(ctx context.Context, accountID string, update domain.ConnectStatusUpdate) error

	mu                  sync.Mutex
	LastDashboardType   string
	LastLinkedAccountID string
	LastStatusUpdate    domain.ConnectStatusUpdate
	StatusUpdateCalls   int
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.PlatformUser) (domain.PlatformUser, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.PlatformUser{}, repository.ErrNotFound
}

func (m *mockUserRepo) GetByStripeAccountID(ctx context.Context, accountID string) (domain.PlatformUser, error) {
	if m.GetByStripeAccountFunc != nil {
		return m.GetByStripeAccountFunc(ctx, accountID)
	}
	return domain.PlatformUser{}, repository.ErrNotFound
}

func (m *mockUserRepo) SetConnectAccount(ctx context.Context, userID uuid.UUID, accountID, dashboardType string) error {
	m.mu.Lock()
	m.LastLinkedAccountID = accountID
	m.LastDashboardType = dashboardType
	m.mu.Unlock()
	if m.SetConnectAccountFunc != nil {
		return m.SetConnectAccountFunc(ctx, userID, accountID, dashboardType)
	}
	return nil
}

func (m *mockUserRepo) UpdateConnectStatus(ctx context.Context, accountID string, update domain.ConnectStatusUpdate) error {
	m.mu.Lock()
	m.LastStatusUpdate = update
	m.StatusUpdateCalls++
	m.mu.Unlock()
	if m.UpdateConnectStatusFunc != nil {
		return m.UpdateConnectStatusFunc(ctx, accountID, update)
	}
	return nil
}

// mockMemberRepo implements repository.MemberRepository for testing
type mockMemberRepo struct {
	CreateFunc            func(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error)
	GetByClubAndEmailFunc func(ctx context.Context, clubID uuid.UUID, email string) (domain.ClubMember, error)
	ListByClubFunc        func(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.ClubMember, error)
}

func (m *mockMemberRepo) Create(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	return member, nil
}

func (m *mockMemberRepo) GetByClubAndEmail(ctx context.Context, clubID uuid.UUID, email string) (domain.ClubMember, error) {
	if m.GetByClubAndEmailFunc != nil {
		return m.GetByClubAndEmailFunc(ctx, clubID, email)
	}
	return domain.ClubMember{}, repository.ErrNotFound
}

func (m *mockMemberRepo) ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.ClubMember, error) {
	if m.ListByClubFunc != nil {
		return m.ListByClubFunc(ctx, clubID, limit, offset)
	}
	return nil, nil
}

// mockPaymentRepo implements repository.PaymentRepository for testing
type mockPaymentRepo struct {
	InsertFunc               func(ctx context.Context, payment domain.Payment) (bool, error)
	GetByPaymentIntentIDFunc func(ctx context.Context, paymentIntentID string) (domain.Payment, error)
	ListByClubFunc           func(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.Payment, error)

	mu          sync.Mutex
	Inserted    []domain.Payment
	InsertCalls int
}

func (m *mockPaymentRepo) Insert(ctx context.Context, payment domain.Payment) (bool, error) {
	m.mu.Lock()
	m.Inserted = append(m.Inserted, payment)
	m.InsertCalls++
	m.mu.Unlock()
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, payment)
	}
	return true, nil
}

func (m *mockPaymentRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (domain.Payment, error) {
	if m.GetByPaymentIntentIDFunc != nil {
		return m.GetByPaymentIntentIDFunc(ctx, paymentIntentID)
	}
	return domain.Payment{}, repository.ErrNotFound
}

func (m *mockPaymentRepo) ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.Payment, error) {
	if m.ListByClubFunc != nil {
		return m.ListByClubFunc(ctx, clubID, limit, offset)
	}
	return nil, nil
}

// mockSubscriptionRepo implements repository.SubscriptionRepository for testing
type mockSubscriptionRepo struct {
	GetByStripeIDFunc    func(ctx context.Context, stripeSubscriptionID string) (domain.MemberSubscription, error)
	UpdateByStripeIDFunc func(ctx context.Context, stripeSubscriptionID string, update domain.SubscriptionStatusUpdate) error

	mu         sync.Mutex
	LastID     string
	LastUpdate domain.SubscriptionStatusUpdate
}

func (m *mockSubscriptionRepo) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (domain.MemberSubscription, error) {
	if m.GetByStripeIDFunc != nil {
		return m.GetByStripeIDFunc(ctx, stripeSubscriptionID)
	}
	return domain.MemberSubscription{}, repository.ErrNotFound
}

func (m *mockSubscriptionRepo) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, update domain.SubscriptionStatusUpdate) error {
	m.mu.Lock()
	m.LastID = stripeSubscriptionID
	m.LastUpdate = update
	m.mu.Unlock()
	if m.UpdateByStripeIDFunc != nil {
		return m.UpdateByStripeIDFunc(ctx, stripeSubscriptionID, update)
	}
	return nil
}

// mockBookingRepo implements repository.BookingServiceRepository for testing
type mockBookingRepo struct {
	CreateFunc     func(ctx context.Context, svc domain.BookingService) (domain.BookingService, error)
	GetByIDFunc    func(ctx context.Context, clubID, id uuid.UUID) (domain.BookingService, error)
	ListByClubFunc func(ctx context.Context, clubID uuid.UUID) ([]domain.BookingService, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, svc domain.BookingService) (domain.BookingService, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, svc)
	}
	return svc, nil
}

func (m *mockBookingRepo) GetByID(ctx context.Context, clubID, id uuid.UUID) (domain.BookingService, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, clubID, id)
	}
	return domain.BookingService{}, repository.ErrNotFound
}

func (m *mockBookingRepo) ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.BookingService, error) {
	if m.ListByClubFunc != nil {
		return m.ListByClubFunc(ctx, clubID)
	}
	return nil, nil
}

// mockEventProducer implements producer.EventProducer for testing
type mockEventProducer struct {
	PublishPaymentRecordedFunc func(ctx context.Context, payment domain.Payment) error
	PublishClubWelcomeFunc     func(ctx context.Context, club domain.Club) error

	mu                sync.Mutex
	RecordedPayments  []domain.Payment
	WelcomedClubs     []domain.Club
}

func (m *mockEventProducer) PublishPaymentRecorded(ctx context.Context, payment domain.Payment) error {
	m.mu.Lock()
	m.RecordedPayments = append(m.RecordedPayments, payment)
	m.mu.Unlock()
	if m.PublishPaymentRecordedFunc != nil {
		return m.PublishPaymentRecordedFunc(ctx, payment)
	}
	return nil
}

func (m *mockEventProducer) PublishClubWelcome(ctx context.Context, club domain.Club) error {
	m.mu.Lock()
	m.WelcomedClubs = append(m.WelcomedClubs, club)
	m.mu.Unlock()
	if m.PublishClubWelcomeFunc != nil {
		return m.PublishClubWelcomeFunc(ctx, club)
	}
	return nil
}

func (m *mockEventProducer) Close() error { return nil }

// mockMetrics implements metrics.PaymentMetrics for testing
type mockMetrics struct {
	mu             sync.Mutex
	WebhookEvents  map[string]int // "source/type/outcome"
	Recorded       int
	Duplicates     int
	ObservedAmount float64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{WebhookEvents: make(map[string]int)}
}

func (m *mockMetrics) IncWebhookEvent(source, eventType, outcome string) {
	m.mu.Lock()
	m.WebhookEvents[source+"/"+eventType+"/"+outcome]++
	m.mu.Unlock()
}

func (m *mockMetrics) IncPaymentRecorded(currency, paymentType string) {
	m.mu.Lock()
	m.Recorded++
	m.mu.Unlock()
}

func (m *mockMetrics) IncDuplicateSkipped() {
	m.mu.Lock()
	m.Duplicates++
	m.mu.Unlock()
}

func (m *mockMetrics) ObservePaymentAmount(amount float64, currency string) {
	m.mu.Lock()
	m.ObservedAmount = amount
	m.mu.Unlock()
}

// mockConnectProvider implements ConnectProvider for testing
type mockConnectProvider struct {
	CreateExpressAccountFunc func(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error)
	GetAccountFunc           func(ctx context.Context, accountID string) (domain.ConnectedAccount, error)
	CreateOnboardingLinkFunc func(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	AuthorizeURLFunc         func(state string) string
	ExchangeOAuthCodeFunc    func(ctx context.Context, code string) (string, error)
}

func (m *mockConnectProvider) CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
	if m.CreateExpressAccountFunc != nil {
		return m.CreateExpressAccountFunc(ctx, req)
	}
	return domain.ConnectedAccount{AccountID: "acct_mock"}, nil
}

func (m *mockConnectProvider) GetAccount(ctx context.Context, accountID string) (domain.ConnectedAccount, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, accountID)
	}
	return domain.ConnectedAccount{AccountID: accountID}, nil
}

func (m *mockConnectProvider) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if m.CreateOnboardingLinkFunc != nil {
		return m.CreateOnboardingLinkFunc(ctx, accountID, refreshURL, returnURL)
	}
	return "https://connect.stripe.com/setup/mock", nil
}

func (m *mockConnectProvider) AuthorizeURL(state string) string {
	if m.AuthorizeURLFunc != nil {
		return m.AuthorizeURLFunc(state)
	}
	return "https://connect.stripe.com/oauth/authorize?state=" + state
}

func (m *mockConnectProvider) ExchangeOAuthCode(ctx context.Context, code string) (string, error) {
	if m.ExchangeOAuthCodeFunc != nil {
		return m.ExchangeOAuthCodeFunc(ctx, code)
	}
	return "acct_oauth_mock", nil
}

// mockCheckoutProvider implements CheckoutProvider for testing
type mockCheckoutProvider struct {
	CreateOneTimeSessionFunc      func(ctx context.Context, in stripeint.OneTimeSessionInput) (domain.CheckoutSessionResponse, error)
	CreateSubscriptionSessionFunc func(ctx context.Context, in stripeint.SubscriptionSessionInput) (domain.CheckoutSessionResponse, error)
	CreateBookingSessionFunc      func(ctx context.Context, in stripeint.BookingSessionInput) (domain.CheckoutSessionResponse, error)

	mu               sync.Mutex
	LastOneTimeInput stripeint.OneTimeSessionInput
	LastSubInput     stripeint.SubscriptionSessionInput
	LastBookingInput stripeint.BookingSessionInput
}

func (m *mockCheckoutProvider) CreateOneTimeSession(ctx context.Context, in stripeint.OneTimeSessionInput) (domain.CheckoutSessionResponse, error) {
	m.mu.Lock()
	m.LastOneTimeInput = in
	m.mu.Unlock()
	if m.CreateOneTimeSessionFunc != nil {
		return m.CreateOneTimeSessionFunc(ctx, in)
	}
	return domain.CheckoutSessionResponse{ID: "cs_mock", URL: "https://checkout.stripe.com/c/cs_mock"}, nil
}

func (m *mockCheckoutProvider) CreateSubscriptionSession(ctx context.Context, in stripeint.SubscriptionSessionInput) (domain.CheckoutSessionResponse, error) {
	m.mu.Lock()
	m.LastSubInput = in
	m.mu.Unlock()
	if m.CreateSubscriptionSessionFunc != nil {
		return m.CreateSubscriptionSessionFunc(ctx, in)
	}
	return domain.CheckoutSessionResponse{ID: "cs_mock_sub", URL: "https://checkout.stripe.com/c/cs_mock_sub"}, nil
}

func (m *mockCheckoutProvider) CreateBookingSession(ctx context.Context, in stripeint.BookingSessionInput) (domain.CheckoutSessionResponse, error) {
	m.mu.Lock()
	m.LastBookingInput = in
	m.mu.Unlock()
	if m.CreateBookingSessionFunc != nil {
		return m.CreateBookingSessionFunc(ctx, in)
	}
	return domain.CheckoutSessionResponse{ID: "cs_mock_booking", URL: "https://checkout.stripe.com/c/cs_mock_booking"}, nil
}
