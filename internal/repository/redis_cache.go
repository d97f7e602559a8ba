package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const (
	// Префиксы ключей для различных типов данных
	clubSlugKeyPrefix    = "club:slug:"
	clubAccountKeyPrefix = "club:account:"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository реализует кеширование для репозиториев с использованием Redis
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CacheClub кеширует клуб под ключами slug и connected-аккаунта
func (r *RedisCacheRepository) CacheClub(ctx context.Context, club domain.Club) error {
	data, err := json.Marshal(club)
	if err != nil {
		r.log.Errorw("Failed to marshal club for caching", "error", err, "clubID", club.ID)
		return fmt.Errorf("failed to marshal club: %w", err)
	}

	if err := r.client.Set(ctx, clubSlugKeyPrefix+club.Slug, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache club in Redis", "error", err, "slug", club.Slug)
		return fmt.Errorf("failed to cache club: %w", err)
	}

	if club.StripeAccountID != "" {
		if err := r.client.Set(ctx, clubAccountKeyPrefix+club.StripeAccountID, data, defaultCacheTTL).Err(); err != nil {
			r.log.Errorw("Failed to cache club by account in Redis", "error", err, "accountID", club.StripeAccountID)
			return fmt.Errorf("failed to cache club by account: %w", err)
		}
	}

	r.log.Debugw("Club cached successfully", "clubID", club.ID, "slug", club.Slug)
	return nil
}

// GetCachedClubBySlug получает клуб из кеша по slug
func (r *RedisCacheRepository) GetCachedClubBySlug(ctx context.Context, slug string) (*domain.Club, error) {
	return r.getCachedClub(ctx, clubSlugKeyPrefix+slug)
}

// GetCachedClubByAccount получает клуб из кеша по connected-аккаунту
func (r *RedisCacheRepository) GetCachedClubByAccount(ctx context.Context, accountID string) (*domain.Club, error) {
	return r.getCachedClub(ctx, clubAccountKeyPrefix+accountID)
}

func (r *RedisCacheRepository) getCachedClub(ctx context.Context, key string) (*domain.Club, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			// Ключ не найден в кеше
			r.log.Debugw("Club not found in cache", "key", key)
			return nil, nil
		}
		r.log.Errorw("Error getting club from Redis", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get club from cache: %w", err)
	}

	var club domain.Club
	if err := json.Unmarshal(data, &club); err != nil {
		r.log.Errorw("Failed to unmarshal cached club", "error", err, "key", key)
		return nil, fmt.Errorf("failed to unmarshal cached club: %w", err)
	}

	r.log.Debugw("Club retrieved from cache", "key", key)
	return &club, nil
}

// InvalidateClub удаляет все ключи клуба из кеша
func (r *RedisCacheRepository) InvalidateClub(ctx context.Context, club domain.Club) error {
	keys := []string{clubSlugKeyPrefix + club.Slug}
	if club.StripeAccountID != "" {
		keys = append(keys, clubAccountKeyPrefix+club.StripeAccountID)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Errorw("Failed to invalidate club cache", "error", err, "clubID", club.ID)
		return fmt.Errorf("failed to invalidate club cache: %w", err)
	}

	r.log.Debugw("Club cache invalidated", "clubID", club.ID)
	return nil
}
