package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const subscriptionColumns = `
	id, member_id, tier_id, status, amount,
	stripe_subscription_id, stripe_customer_id,
	current_period_end, cancel_at_period_end, cancelled_at,
	created_at, updated_at
`

// PostgresSubscriptionRepository реализация репозитория подписок через PostgreSQL
type PostgresSubscriptionRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresSubscriptionRepository создает новый репозиторий подписок через PostgreSQL
func NewPostgresSubscriptionRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		db:  db,
		log: log,
	}
}

// scanSubscription читает строку подписки участника
func scanSubscription(row rowScanner) (domain.MemberSubscription, error) {
	var (
		sub        domain.MemberSubscription
		stripeID   *string
		customerID *string
	)

	err := row.Scan(
		&sub.ID,
		&sub.MemberID,
		&sub.TierID,
		&sub.Status,
		&sub.Amount,
		&stripeID,
		&customerID,
		&sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd,
		&sub.CancelledAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return domain.MemberSubscription{}, err
	}

	if stripeID != nil {
		sub.StripeSubscriptionID = *stripeID
	}
	if customerID != nil {
		sub.StripeCustomerID = *customerID
	}

	return sub, nil
}

// GetByStripeID возвращает подписку по stripe_subscription_id
func (r *PostgresSubscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (domain.MemberSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM member_subscriptions WHERE stripe_subscription_id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, stripeSubscriptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MemberSubscription{}, repository.ErrNotFound
		}
		return domain.MemberSubscription{}, fmt.Errorf("failed to get member subscription: %w", err)
	}

	return sub, nil
}

// UpdateByStripeID применяет lifecycle-обновление к подписке.
// SET собирается только из присутствующих полей, отсутствующие не затрагиваются.
func (r *PostgresSubscriptionRepository) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, update domain.SubscriptionStatusUpdate) error {
	var (
		sets []string
		args []any
	)

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.Status != "" {
		addSet("status", update.Status)
	}
	if update.CurrentPeriodEnd != nil {
		addSet("current_period_end", *update.CurrentPeriodEnd)
	}
	if update.CancelAtPeriodEnd != nil {
		addSet("cancel_at_period_end", *update.CancelAtPeriodEnd)
	}
	if update.CancelledAt != nil {
		addSet("cancelled_at", *update.CancelledAt)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, stripeSubscriptionID)
	query := fmt.Sprintf(
		`UPDATE member_subscriptions SET %s, updated_at = now() WHERE stripe_subscription_id = $%d`,
		strings.Join(sets, ", "),
		len(args),
	)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update member subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
