package postgres

import (
	"context"
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

const bookingServiceColumns = `
	id, club_id, name, description, price_cents, duration_minutes, is_active,
	created_at, updated_at
`

// PostgresBookingServiceRepository реализация репозитория каталога услуг через PostgreSQL
type PostgresBookingServiceRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresBookingServiceRepository создает новый репозиторий услуг через PostgreSQL
func NewPostgresBookingServiceRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresBookingServiceRepository {
	return &PostgresBookingServiceRepository{
		db:  db,
		log: log,
	}
}

// scanBookingService читает строку услуги клуба
func scanBookingService(row rowScanner) (domain.BookingService, error) {
	var (
		svc         domain.BookingService
		description *string
	)

	err := row.Scan(
		&svc.ID,
		&svc.ClubID,
		&svc.Name,
		&description,
		&svc.PriceCents,
		&svc.DurationMinutes,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		return domain.BookingService{}, err
	}

	if description != nil {
		svc.Description = *description
	}

	return svc, nil
}

// Create создает услугу клуба
func (r *PostgresBookingServiceRepository) Create(ctx context.Context, svc domain.BookingService) (domain.BookingService, error) {
	query := `
		INSERT INTO booking_services (id, club_id, name, description, price_cents, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		svc.ID,
		svc.ClubID,
		svc.Name,
		nullable(svc.Description),
		svc.PriceCents,
		svc.DurationMinutes,
		svc.IsActive,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.BookingService{}, repository.ErrDuplicate
		}
		return domain.BookingService{}, fmt.Errorf("failed to create booking service: %w", err)
	}

	return svc, nil
}

// GetByID возвращает услугу клуба. Поиск ограничен clubID, чтобы услуга
// одного тенанта не была доступна по ID из контекста другого.
func (r *PostgresBookingServiceRepository) GetByID(ctx context.Context, clubID, id uuid.UUID) (domain.BookingService, error) {
	query := `SELECT ` + bookingServiceColumns + ` FROM booking_services WHERE club_id = $1 AND id = $2`

	svc, err := scanBookingService(r.db.QueryRow(ctx, query, clubID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BookingService{}, repository.ErrNotFound
		}
		return domain.BookingService{}, fmt.Errorf("failed to get booking service: %w", err)
	}

	return svc, nil
}

// ListByClub возвращает активные услуги клуба
func (r *PostgresBookingServiceRepository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]domain.BookingService, error) {
	query := `SELECT ` + bookingServiceColumns + ` FROM booking_services WHERE club_id = $1 AND is_active ORDER BY name`

	rows, err := r.db.Query(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking services: %w", err)
	}
	defer rows.Close()

	var services []domain.BookingService
	for rows.Next() {
		svc, err := scanBookingService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking service: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking services: %w", err)
	}

	return services, nil
}
