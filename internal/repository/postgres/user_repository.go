package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const userColumns = `
	id, username, email, password_hash,
	stripe_account_id, connect_dashboard_type, charges_enabled, details_submitted,
	country, default_currency, created_at, updated_at
`

// PostgresUserRepository реализация репозитория пользователей платформы через PostgreSQL
type PostgresUserRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresUserRepository создает новый репозиторий пользователей через PostgreSQL
func NewPostgresUserRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: log,
	}
}

// scanUser читает строку пользователя, разворачивая nullable-поля
func scanUser(row rowScanner) (domain.PlatformUser, error) {
	var (
		user          domain.PlatformUser
		accountID     *string
		dashboardType *string
		country       *string
		currency      *string
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&accountID,
		&dashboardType,
		&user.ChargesEnabled,
		&user.DetailsSubmitted,
		&country,
		&currency,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.PlatformUser{}, err
	}

	if accountID != nil {
		user.StripeAccountID = *accountID
	}
	if dashboardType != nil {
		user.ConnectDashboardType = *dashboardType
	}
	if country != nil {
		user.Country = *country
	}
	if currency != nil {
		user.DefaultCurrency = *currency
	}

	return user, nil
}

// Create создает нового пользователя платформы
func (r *PostgresUserRepository) Create(ctx context.Context, user domain.PlatformUser) (domain.PlatformUser, error) {
	query := `
		INSERT INTO platform_users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.PlatformUser{}, repository.ErrDuplicate
		}
		return domain.PlatformUser{}, fmt.Errorf("failed to create platform user: %w", err)
	}

	return user, nil
}

// GetByID возвращает пользователя по ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
	query := `SELECT ` + userColumns + ` FROM platform_users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlatformUser{}, repository.ErrNotFound
		}
		return domain.PlatformUser{}, fmt.Errorf("failed to get platform user: %w", err)
	}

	return user, nil
}

// GetByStripeAccountID возвращает пользователя по connected-аккаунту
func (r *PostgresUserRepository) GetByStripeAccountID(ctx context.Context, accountID string) (domain.PlatformUser, error) {
	query := `SELECT ` + userColumns + ` FROM platform_users WHERE stripe_account_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlatformUser{}, repository.ErrNotFound
		}
		return domain.PlatformUser{}, fmt.Errorf("failed to get platform user by account: %w", err)
	}

	return user, nil
}

// SetConnectAccount привязывает connected-аккаунт к пользователю
func (r *PostgresUserRepository) SetConnectAccount(ctx context.Context, userID uuid.UUID, accountID, dashboardType string) error {
	query := `
		UPDATE platform_users
		SET stripe_account_id = $1, connect_dashboard_type = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.Exec(ctx, query, accountID, nullable(dashboardType), userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to set connect account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateConnectStatus частично обновляет Connect-статус пользователя.
// SET собирается только из присутствующих полей, отсутствующие не затрагиваются.
func (r *PostgresUserRepository) UpdateConnectStatus(ctx context.Context, accountID string, update domain.ConnectStatusUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var (
		sets []string
		args []any
	)

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.ChargesEnabled != nil {
		addSet("charges_enabled", *update.ChargesEnabled)
	}
	if update.DetailsSubmitted != nil {
		addSet("details_submitted", *update.DetailsSubmitted)
	}
	if update.Country != nil {
		addSet("country", *update.Country)
	}
	if update.DefaultCurrency != nil {
		addSet("default_currency", *update.DefaultCurrency)
	}

	args = append(args, accountID)
	query := fmt.Sprintf(
		`UPDATE platform_users SET %s, updated_at = now() WHERE stripe_account_id = $%d`,
		strings.Join(sets, ", "),
		len(args),
	)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update connect status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
