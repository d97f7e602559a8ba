package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const clubColumns = `
	id, name, slug, description, logo_url, primary_color, secondary_color,
	stripe_account_id, stripe_onboarding_complete, welcome_email_sent,
	openai_api_key_encrypted, ai_enabled, features,
	subscription_status, subscription_plan, deleted_at, created_at, updated_at
`

// PostgresClubRepository реализация репозитория клубов через PostgreSQL
type PostgresClubRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresClubRepository создает новый репозиторий клубов через PostgreSQL
func NewPostgresClubRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresClubRepository {
	return &PostgresClubRepository{
		db:  db,
		log: log,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanClub читает строку клуба, разворачивая nullable-поля и JSON фич
func scanClub(row rowScanner) (domain.Club, error) {
	var (
		club          domain.Club
		description   *string
		logoURL       *string
		accountID     *string
		openAIKey     *string
		featuresBytes []byte
	)

	err := row.Scan(
		&club.ID,
		&club.Name,
		&club.Slug,
		&description,
		&logoURL,
		&club.PrimaryColor,
		&club.SecondaryColor,
		&accountID,
		&club.StripeOnboardingComplete,
		&club.WelcomeEmailSent,
		&openAIKey,
		&club.AIEnabled,
		&featuresBytes,
		&club.SubscriptionStatus,
		&club.SubscriptionPlan,
		&club.DeletedAt,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		return domain.Club{}, err
	}

	if description != nil {
		club.Description = *description
	}
	if logoURL != nil {
		club.LogoURL = *logoURL
	}
	if accountID != nil {
		club.StripeAccountID = *accountID
	}
	if openAIKey != nil {
		club.OpenAIAPIKeyEncrypted = *openAIKey
	}
	if len(featuresBytes) > 0 {
		if err := json.Unmarshal(featuresBytes, &club.Features); err != nil {
			return domain.Club{}, fmt.Errorf("failed to decode club features: %w", err)
		}
	}

	return club, nil
}

// Create создает новый клуб
func (r *PostgresClubRepository) Create(ctx context.Context, club domain.Club) (domain.Club, error) {
	query := `
		INSERT INTO clubs (
			id, name, slug, description, primary_color, secondary_color,
			features, subscription_status, subscription_plan
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	featuresBytes, err := json.Marshal(club.Features)
	if err != nil {
		return domain.Club{}, fmt.Errorf("failed to encode club features: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		query,
		club.ID,
		club.Name,
		club.Slug,
		nullable(club.Description),
		club.PrimaryColor,
		club.SecondaryColor,
		featuresBytes,
		club.SubscriptionStatus,
		club.SubscriptionPlan,
	).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Club{}, repository.ErrDuplicate
		}
		return domain.Club{}, fmt.Errorf("failed to create club: %w", err)
	}

	return club, nil
}

// GetByID возвращает клуб по ID, включая мягко удаленные
func (r *PostgresClubRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Club, error) {
	query := selectClubQuery(`WHERE id = $1`)

	return scanClubQuery(r.db.QueryRow(ctx, query, id))
}

// GetBySlug возвращает активный клуб по slug
func (r *PostgresClubRepository) GetBySlug(ctx context.Context, slug string) (domain.Club, error) {
	query := selectClubQuery(`WHERE slug = $1 AND deleted_at IS NULL`)

	return scanClubQuery(r.db.QueryRow(ctx, query, slug))
}

// GetByStripeAccountID возвращает активный клуб по connected-аккаунту
func (r *PostgresClubRepository) GetByStripeAccountID(ctx context.Context, accountID string) (domain.Club, error) {
	query := selectClubQuery(`WHERE stripe_account_id = $1 AND deleted_at IS NULL`)

	return scanClubQuery(r.db.QueryRow(ctx, query, accountID))
}

// List возвращает активные клубы с пагинацией
func (r *PostgresClubRepository) List(ctx context.Context, limit, offset int) ([]domain.Club, error) {
	query := selectClubQuery(`WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT $1 OFFSET $2`)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		club, err := scanClub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}

	return clubs, nil
}

// Update обновляет изменяемые поля клуба
func (r *PostgresClubRepository) Update(ctx context.Context, club domain.Club) error {
	query := `
		UPDATE clubs
		SET name = $1, description = $2, logo_url = $3, primary_color = $4,
			secondary_color = $5, features = $6, updated_at = now()
		WHERE id = $7 AND deleted_at IS NULL
	`

	featuresBytes, err := json.Marshal(club.Features)
	if err != nil {
		return fmt.Errorf("failed to encode club features: %w", err)
	}

	result, err := r.db.Exec(
		ctx,
		query,
		club.Name,
		nullable(club.Description),
		nullable(club.LogoURL),
		club.PrimaryColor,
		club.SecondaryColor,
		featuresBytes,
		club.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update club: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetStripeAccount привязывает connected-аккаунт к клубу
func (r *PostgresClubRepository) SetStripeAccount(ctx context.Context, clubID uuid.UUID, accountID string) error {
	query := `
		UPDATE clubs
		SET stripe_account_id = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, accountID, clubID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to set club stripe account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CompleteOnboarding помечает онбординг завершенным. Флаг welcome_email_sent
// проверяется и взводится под блокировкой строки, чтобы при конкурентной
// доставке одного события приветствие ушло не более одного раза.
func (r *PostgresClubRepository) CompleteOnboarding(ctx context.Context, accountID string) (domain.Club, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Club{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := selectClubQuery(`WHERE stripe_account_id = $1 AND deleted_at IS NULL FOR UPDATE`)

	club, err := scanClubQuery(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		return domain.Club{}, false, err
	}

	firstTime := !club.WelcomeEmailSent

	_, err = tx.Exec(ctx, `
		UPDATE clubs
		SET stripe_onboarding_complete = TRUE, welcome_email_sent = TRUE, updated_at = now()
		WHERE id = $1
	`, club.ID)
	if err != nil {
		return domain.Club{}, false, fmt.Errorf("failed to complete club onboarding: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Club{}, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	club.StripeOnboardingComplete = true
	club.WelcomeEmailSent = true

	return club, firstTime, nil
}

// SoftDelete помечает клуб удаленным
func (r *PostgresClubRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clubs
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete club: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// selectClubQuery собирает SELECT по колонкам клуба с произвольным хвостом
func selectClubQuery(tail string) string {
	return `SELECT ` + clubColumns + ` FROM clubs ` + tail
}

// scanClubQuery маппит pgx.ErrNoRows в repository.ErrNotFound
func scanClubQuery(row rowScanner) (domain.Club, error) {
	club, err := scanClub(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Club{}, repository.ErrNotFound
		}
		return domain.Club{}, fmt.Errorf("failed to get club: %w", err)
	}
	return club, nil
}

// nullable превращает пустую строку в NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
