package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// CachedClubRepository реализует ClubRepository с кешированием горячих чтений.
// Кешируются выборки по slug (checkout) и по connected-аккаунту (вебхуки);
// любая запись инвалидирует оба ключа клуба.
type CachedClubRepository struct {
	repo  ClubRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedClubRepository создает новый репозиторий клубов с кешированием
func NewCachedClubRepository(
	repo ClubRepository,
	cache *RedisCacheRepository,
	log *logger.Logger,
) ClubRepository {
	return &CachedClubRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает клуб в БД и кеширует его
func (r *CachedClubRepository) Create(ctx context.Context, club domain.Club) (domain.Club, error) {
	created, err := r.repo.Create(ctx, club)
	if err != nil {
		return domain.Club{}, err
	}

	if err := r.cache.CacheClub(ctx, created); err != nil {
		r.log.Warnw("Failed to cache club after creation", "error", err, "clubID", created.ID)
		// Продолжаем выполнение, несмотря на ошибку кеширования
	}

	return created, nil
}

// GetByID получает клуб по ID напрямую из БД: путь редкий и включает удаленные
func (r *CachedClubRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Club, error) {
	return r.repo.GetByID(ctx, id)
}

// GetBySlug получает клуб по slug (сначала из кеша, потом из БД)
func (r *CachedClubRepository) GetBySlug(ctx context.Context, slug string) (domain.Club, error) {
	cached, err := r.cache.GetCachedClubBySlug(ctx, slug)
	if err != nil {
		r.log.Warnw("Error getting club from cache", "error", err, "slug", slug)
		// Продолжаем выполнение при ошибке кеша
	}
	if cached != nil {
		return *cached, nil
	}

	club, err := r.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Club{}, err
	}

	if err := r.cache.CacheClub(ctx, club); err != nil {
		r.log.Warnw("Failed to cache club after fetching", "error", err, "slug", slug)
	}

	return club, nil
}

// GetByStripeAccountID получает клуб по connected-аккаунту (сначала из кеша, потом из БД)
func (r *CachedClubRepository) GetByStripeAccountID(ctx context.Context, accountID string) (domain.Club, error) {
	cached, err := r.cache.GetCachedClubByAccount(ctx, accountID)
	if err != nil {
		r.log.Warnw("Error getting club from cache", "error", err, "accountID", accountID)
	}
	if cached != nil {
		return *cached, nil
	}

	club, err := r.repo.GetByStripeAccountID(ctx, accountID)
	if err != nil {
		return domain.Club{}, err
	}

	if err := r.cache.CacheClub(ctx, club); err != nil {
		r.log.Warnw("Failed to cache club after fetching", "error", err, "accountID", accountID)
	}

	return club, nil
}

// List возвращает активные клубы напрямую из БД
func (r *CachedClubRepository) List(ctx context.Context, limit, offset int) ([]domain.Club, error) {
	return r.repo.List(ctx, limit, offset)
}

// Update обновляет клуб в БД и инвалидирует кеш
func (r *CachedClubRepository) Update(ctx context.Context, club domain.Club) error {
	if err := r.repo.Update(ctx, club); err != nil {
		return err
	}

	r.invalidate(ctx, club)
	return nil
}

// SetStripeAccount привязывает connected-аккаунт и инвалидирует кеш
func (r *CachedClubRepository) SetStripeAccount(ctx context.Context, clubID uuid.UUID, accountID string) error {
	if err := r.repo.SetStripeAccount(ctx, clubID, accountID); err != nil {
		return err
	}

	club, err := r.repo.GetByID(ctx, clubID)
	if err != nil {
		r.log.Warnw("Failed to load club for cache invalidation", "error", err, "clubID", clubID)
		return nil
	}

	r.invalidate(ctx, club)
	return nil
}

// CompleteOnboarding помечает онбординг завершенным и инвалидирует кеш
func (r *CachedClubRepository) CompleteOnboarding(ctx context.Context, accountID string) (domain.Club, bool, error) {
	club, firstTime, err := r.repo.CompleteOnboarding(ctx, accountID)
	if err != nil {
		return domain.Club{}, false, err
	}

	r.invalidate(ctx, club)
	return club, firstTime, nil
}

// SoftDelete помечает клуб удаленным и инвалидирует кеш
func (r *CachedClubRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	club, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, club)
	return nil
}

func (r *CachedClubRepository) invalidate(ctx context.Context, club domain.Club) {
	if err := r.cache.InvalidateClub(ctx, club); err != nil {
		r.log.Warnw("Failed to invalidate club cache", "error", err, "clubID", club.ID)
	}
}
