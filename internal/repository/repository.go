package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
)

// ClubRepository интерфейс репозитория клубов
type ClubRepository interface {
	// Create создает новый клуб; дубликат slug возвращает ErrDuplicate
	Create(ctx context.Context, club domain.Club) (domain.Club, error)

	// GetByID возвращает клуб по ID (включая мягко удаленные)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Club, error)

	// GetBySlug возвращает активный клуб по slug
	GetBySlug(ctx context.Context, slug string) (domain.Club, error)

	// GetByStripeAccountID возвращает активный клуб по connected-аккаунту
	GetByStripeAccountID(ctx context.Context, accountID string) (domain.Club, error)

	// List возвращает активные клубы с пагинацией
	List(ctx context.Context, limit, offset int) ([]domain.Club, error)

	// Update обновляет изменяемые поля клуба
	Update(ctx context.Context, club domain.Club) error

	// SetStripeAccount привязывает connected-аккаунт к клубу
	SetStripeAccount(ctx context.Context, clubID uuid.UUID, accountID string) error

	// CompleteOnboarding помечает онбординг завершенным и взводит флаг
	// welcome_email_sent под блокировкой строки. Второе возвращаемое значение —
	// true, если флаг взведен впервые (приветствие еще не отправлялось).
	CompleteOnboarding(ctx context.Context, accountID string) (domain.Club, bool, error)

	// SoftDelete помечает клуб удаленным, строка сохраняется
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// UserRepository интерфейс репозитория пользователей платформы
type UserRepository interface {
	// Create создает пользователя; дубликат email/username возвращает ErrDuplicate
	Create(ctx context.Context, user domain.PlatformUser) (domain.PlatformUser, error)

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error)

	// GetByStripeAccountID возвращает пользователя по connected-аккаунту
	GetByStripeAccountID(ctx context.Context, accountID string) (domain.PlatformUser, error)

	// SetConnectAccount привязывает connected-аккаунт к пользователю
	SetConnectAccount(ctx context.Context, userID uuid.UUID, accountID, dashboardType string) error

	// UpdateConnectStatus частично обновляет Connect-статус по аккаунту:
	// nil-поля не затрагиваются
	UpdateConnectStatus(ctx context.Context, accountID string, update domain.ConnectStatusUpdate) error
}

// MemberRepository интерфейс репозитория участников клубов
type MemberRepository interface {
	// Create создает участника; дубликат (club_id, email) возвращает ErrDuplicate
	Create(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error)

	// GetByClubAndEmail возвращает участника клуба по email
	GetByClubAndEmail(ctx context.Context, clubID uuid.UUID, email string) (domain.ClubMember, error)

	// ListByClub возвращает участников клуба
	ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.ClubMember, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	// Insert вставляет платеж. Возвращает false без ошибки, если строка
	// с таким payment_intent_id уже существует (повторная доставка события).
	Insert(ctx context.Context, payment domain.Payment) (bool, error)

	// GetByPaymentIntentID возвращает платеж по идентификатору intent
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (domain.Payment, error)

	// ListByClub возвращает платежи клуба
	ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.Payment, error)
}

// SubscriptionRepository интерфейс репозитория подписок участников
type SubscriptionRepository interface {
	// GetByStripeID возвращает подписку по stripe_subscription_id
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (domain.MemberSubscription, error)

	// UpdateByStripeID применяет lifecycle-обновление к подписке
	UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, update domain.SubscriptionStatusUpdate) error
}

// BookingServiceRepository интерфейс репозитория каталога услуг
type BookingServiceRepository interface {
	// Create создает услугу клуба
	Create(ctx context.Context, svc domain.BookingService) (domain.BookingService, error)

	// GetByID возвращает услугу клуба
	GetByID(ctx context.Context, clubID, id uuid.UUID) (domain.BookingService, error)

	// ListByClub возвращает активные услуги клуба
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.BookingService, error)
}
