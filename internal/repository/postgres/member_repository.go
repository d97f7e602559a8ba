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

const memberColumns = `
	id, club_id, email, display_name, member_tier, status, created_at, updated_at
`

// PostgresMemberRepository реализация репозитория участников клубов через PostgreSQL
type PostgresMemberRepository struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresMemberRepository создает новый репозиторий участников через PostgreSQL
func NewPostgresMemberRepository(db *pgxpool.Pool, log *logger.Logger) *PostgresMemberRepository {
	return &PostgresMemberRepository{
		db:  db,
		log: log,
	}
}

// scanMember читает строку участника клуба
func scanMember(row rowScanner) (domain.ClubMember, error) {
	var (
		member      domain.ClubMember
		displayName *string
	)

	err := row.Scan(
		&member.ID,
		&member.ClubID,
		&member.Email,
		&displayName,
		&member.MemberTier,
		&member.Status,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return domain.ClubMember{}, err
	}

	if displayName != nil {
		member.DisplayName = *displayName
	}

	return member, nil
}

// Create создает участника; дубликат (club_id, email) возвращает ErrDuplicate
func (r *PostgresMemberRepository) Create(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error) {
	query := `
		INSERT INTO club_members (id, club_id, email, display_name, member_tier, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		member.ID,
		member.ClubID,
		member.Email,
		nullable(member.DisplayName),
		member.MemberTier,
		member.Status,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ClubMember{}, repository.ErrDuplicate
		}
		return domain.ClubMember{}, fmt.Errorf("failed to create club member: %w", err)
	}

	return member, nil
}

// GetByClubAndEmail возвращает участника клуба по email
func (r *PostgresMemberRepository) GetByClubAndEmail(ctx context.Context, clubID uuid.UUID, email string) (domain.ClubMember, error) {
	query := `SELECT ` + memberColumns + ` FROM club_members WHERE club_id = $1 AND email = $2`

	member, err := scanMember(r.db.QueryRow(ctx, query, clubID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ClubMember{}, repository.ErrNotFound
		}
		return domain.ClubMember{}, fmt.Errorf("failed to get club member: %w", err)
	}

	return member, nil
}

// ListByClub возвращает участников клуба с пагинацией
func (r *PostgresMemberRepository) ListByClub(ctx context.Context, clubID uuid.UUID, limit, offset int) ([]domain.ClubMember, error) {
	query := `SELECT ` + memberColumns + ` FROM club_members WHERE club_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clubID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query club members: %w", err)
	}
	defer rows.Close()

	var members []domain.ClubMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan club member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club members: %w", err)
	}

	return members, nil
}
