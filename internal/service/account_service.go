package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const (
	dashboardTypeExpress  = "express"
	dashboardTypeStandard = "standard"
)

// ConnectProvider интерфейс интеграции с процессором для Connect-аккаунтов
type ConnectProvider interface {
	CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error)
	GetAccount(ctx context.Context, accountID string) (domain.ConnectedAccount, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	AuthorizeURL(state string) string
	ExchangeOAuthCode(ctx context.Context, code string) (string, error)
}

// AccountService интерфейс сервиса управления connected-аккаунтами
type AccountService interface {
	// CreateExpressAccount создает Express-аккаунт и привязывает его
	// к пользователю платформы и, опционально, к клубу
	CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error)

	// CreateOnboardingLink выдает свежую ссылку онбординга для аккаунта
	CreateOnboardingLink(ctx context.Context, accountID string) (string, error)

	// StartOAuth возвращает URL авторизации для подключения Standard-аккаунта
	StartOAuth(ctx context.Context, userID string) (string, error)

	// CompleteOAuth обменивает code на аккаунт и привязывает его к пользователю
	CompleteOAuth(ctx context.Context, state, code string) (domain.ConnectedAccount, error)
}

// AccountURLs адреса возврата для онбординга
type AccountURLs struct {
	OnboardingRefreshURL string
	OnboardingReturnURL  string
}

type accountService struct {
	provider ConnectProvider
	userRepo repository.UserRepository
	clubRepo repository.ClubRepository
	urls     AccountURLs
	log      *logger.Logger
}

// NewAccountService создает новый сервис connected-аккаунтов
func NewAccountService(
	provider ConnectProvider,
	userRepo repository.UserRepository,
	clubRepo repository.ClubRepository,
	urls AccountURLs,
	log *logger.Logger,
) AccountService {
	return &accountService{
		provider: provider,
		userRepo: userRepo,
		clubRepo: clubRepo,
		urls:     urls,
		log:      log,
	}
}

func (s *accountService) CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
	s.log.Debug("Creating express account for user: %s", req.UserID)

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return domain.ConnectedAccount{}, domain.NewValidationError("user_id", "must be a valid UUID")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ConnectedAccount{}, domain.NewNotFoundError("platform user", req.UserID)
		}
		return domain.ConnectedAccount{}, err
	}

	// Один пользователь — максимум один connected-аккаунт
	if user.StripeAccountID != "" {
		return domain.ConnectedAccount{}, domain.NewDuplicateError("connected account", "user_id", req.UserID)
	}

	if req.Country == "" {
		req.Country = "US"
	}

	account, err := s.provider.CreateExpressAccount(ctx, req)
	if err != nil {
		return domain.ConnectedAccount{}, domain.NewExternalServiceError("stripe", "failed to create express account", err)
	}

	if err := s.userRepo.SetConnectAccount(ctx, userID, account.AccountID, dashboardTypeExpress); err != nil {
		s.log.Error("Failed to link account %s to user %s: %v", account.AccountID, userID, err)
		return domain.ConnectedAccount{}, err
	}

	if req.ClubSlug != "" {
		club, err := s.clubRepo.GetBySlug(ctx, req.ClubSlug)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ConnectedAccount{}, domain.NewNotFoundError("club", req.ClubSlug)
			}
			return domain.ConnectedAccount{}, err
		}
		if err := s.clubRepo.SetStripeAccount(ctx, club.ID, account.AccountID); err != nil {
			s.log.Error("Failed to link account %s to club %s: %v", account.AccountID, club.Slug, err)
			return domain.ConnectedAccount{}, err
		}
	}

	s.log.Info("Express account %s created for user %s", account.AccountID, userID)
	return account, nil
}

func (s *accountService) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	s.log.Debug("Creating onboarding link for account: %s", accountID)

	if accountID == "" {
		return "", domain.NewValidationError("account_id", "is required")
	}

	url, err := s.provider.CreateOnboardingLink(ctx, accountID, s.urls.OnboardingRefreshURL, s.urls.OnboardingReturnURL)
	if err != nil {
		return "", domain.NewExternalServiceError("stripe", "failed to create onboarding link", err)
	}

	return url, nil
}

func (s *accountService) StartOAuth(ctx context.Context, userID string) (string, error) {
	s.log.Debug("Starting oauth flow for user: %s", userID)

	id, err := uuid.Parse(userID)
	if err != nil {
		return "", domain.NewValidationError("user_id", "must be a valid UUID")
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.NewNotFoundError("platform user", userID)
		}
		return "", err
	}

	// State несет ID пользователя и проверяется на callback
	return s.provider.AuthorizeURL(userID), nil
}

func (s *accountService) CompleteOAuth(ctx context.Context, state, code string) (domain.ConnectedAccount, error) {
	s.log.Debug("Completing oauth flow, state: %s", state)

	userID, err := uuid.Parse(state)
	if err != nil {
		return domain.ConnectedAccount{}, domain.NewValidationError("state", "must be a valid UUID")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ConnectedAccount{}, domain.NewNotFoundError("platform user", state)
		}
		return domain.ConnectedAccount{}, err
	}

	if user.StripeAccountID != "" {
		return domain.ConnectedAccount{}, domain.NewDuplicateError("connected account", "user_id", state)
	}

	accountID, err := s.provider.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return domain.ConnectedAccount{}, domain.NewExternalServiceError("stripe", "failed to exchange oauth code", err)
	}

	if err := s.userRepo.SetConnectAccount(ctx, userID, accountID, dashboardTypeStandard); err != nil {
		s.log.Error("Failed to link oauth account %s to user %s: %v", accountID, userID, err)
		return domain.ConnectedAccount{}, err
	}

	// Подтягиваем текущий статус аккаунта, чтобы не ждать первого вебхука
	account, err := s.provider.GetAccount(ctx, accountID)
	if err != nil {
		s.log.Warn("Failed to fetch account %s after oauth: %v", accountID, err)
		return domain.ConnectedAccount{AccountID: accountID}, nil
	}

	update := domain.ConnectStatusUpdate{
		ChargesEnabled:   &account.ChargesEnabled,
		DetailsSubmitted: &account.DetailsSubmitted,
	}
	if account.Country != "" {
		update.Country = &account.Country
	}
	if account.DefaultCurrency != "" {
		update.DefaultCurrency = &account.DefaultCurrency
	}
	if err := s.userRepo.UpdateConnectStatus(ctx, accountID, update); err != nil {
		s.log.Warn("Failed to sync connect status for account %s: %v", accountID, err)
	}

	s.log.Info("OAuth account %s linked to user %s", accountID, userID)
	return account, nil
}
