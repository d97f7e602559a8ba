package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const paymentColumns = `
	id, club_id, member_id, amount, currency, payment_type, status,
	payment_intent_id, charge_id, checkout_session_id, connected_account_id,
	platform_fee_amount, club_earnings, failure_reason, metadata,
	created_at, updated_at
`

// PostgresPaymentRepository реализация репозитория платежей через PostgreSQL
type PostgresPaymentRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresPaymentRepository создает новый репозиторий платежей через PostgreSQL
func NewPostgresPaymentRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db:  db,
		log: log,
	}
}

// scanPayment читает строку платежа, разворачивая nullable-поля и JSON метаданных
func scanPayment(row rowScanner) (domain.Payment, error) {
	var (
		payment       domain.Payment
		intentID      *string
		chargeID      *string
		sessionID     *string
		accountID     *string
		failureReason *string
		metadataBytes []byte
	)

	err := row.Scan(
		&payment.ID,
		&payment.ClubID,
		&payment.MemberID,
		&payment.Amount,
		&payment.Currency,
		&payment.PaymentType,
		&payment.Status,
		&intentID,
		&chargeID,
		&sessionID,
		&accountID,
		&payment.PlatformFeeAmount,
		&payment.ClubEarnings,
		&failureReason,
		&metadataBytes,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return domain.Payment{}, err
	}

	if intentID != nil {
		payment.PaymentIntentID = *intentID
	}
	if chargeID != nil {
		payment.ChargeID = *chargeID
	}
	if sessionID != nil {
		payment.CheckoutSessionID = *sessionID
	}
	if accountID != nil {
		payment.ConnectedAccountID = *accountID
	}
	if failureReason != nil {
		payment.FailureReason = *failureReason
	}
	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &payment.Metadata); err != nil {
			return domain.Payment{}, fmt.Errorf("failed to decode payment metadata: %w", err)
		}
	}

	return payment, nil
}

// Insert вставляет платеж. Уникальный индекс на payment_intent_id и
// ON CONFLICT DO NOTHING делают вставку идемпотентной: повторная доставка
// того же события возвращает false без ошибки, строка не изменяется.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, payment domain.Payment) (bool, error) {
	query := `
		INSERT INTO payments (
			id, club_id, member_id, amount, currency, payment_type, status,
			payment_intent_id, charge_id, checkout_session_id, connected_account_id,
			platform_fee_amount, club_earnings, failure_reason, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (payment_intent_id) DO NOTHING
	`

	metadataBytes, err := json.Marshal(payment.Metadata)
	if err != nil {
		return false, fmt.Errorf("failed to encode payment metadata: %w", err)
	}

	result, err := r.db.Exec(
		ctx,
		query,
		payment.ID,
		payment.ClubID,
		payment.MemberID,
		payment.Amount,
		payment.Currency,
		payment.PaymentType,
		payment.Status,
		nullable(payment.PaymentIntentID),
		nullable(payment.ChargeID),
		nullable(payment.CheckoutSessionID),
		nullable(payment.ConnectedAccountID),
		payment.PlatformFeeAmount,
		payment.ClubEarnings,
		nullable(payment.FailureReason),
		metadataBytes,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert payment: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByPaymentIntentID возвращает платеж по идентификатору intent
func (r *PostgresPaymentRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_intent_id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, paymentIntentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Payment{}, repository.ErrNotFound
		}
		return domain.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// ListByClub возвращает платежи клуба, новые первыми
func (r *PostgresPaymentRepository) ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE club_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clubID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
