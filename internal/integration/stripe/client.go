package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// Config конфигурация для клиента Stripe
type Config struct {
	APIKey          string
	ConnectClientID string
	RedirectURI     string
}

// Client представляет клиент для работы с API Stripe Connect
type Client struct {
	api *client.API
	cfg Config
	log *logger.Logger
}

// NewClient создает новый клиент Stripe
func NewClient(cfg Config, log *logger.Logger) *Client {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)

	return &Client{
		api: api,
		cfg: cfg,
		log: log,
	}
}

// mapAccount преобразует аккаунт Stripe в доменную модель
func mapAccount(acct *stripe.Account) domain.ConnectedAccount {
	return domain.ConnectedAccount{
		AccountID:        acct.ID,
		Country:          acct.Country,
		DefaultCurrency:  string(acct.DefaultCurrency),
		ChargesEnabled:   acct.ChargesEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}
}

// CreateExpressAccount создает новый Express-аккаунт с запрошенными
// card_payments и transfers capabilities. Метаданные связывают аккаунт
// с пользователем платформы и клубом.
func (c *Client) CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(req.Country),
		Email:   stripe.String(req.OwnerEmail),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(req.DisplayName),
		},
	}
	params.Context = ctx
	params.AddMetadata("platform_user_id", req.UserID)
	params.AddMetadata("club_slug", req.ClubSlug)

	acct, err := c.api.Accounts.New(params)
	if err != nil {
		c.log.Errorw("Failed to create express account", "error", err, "country", req.Country)
		return domain.ConnectedAccount{}, fmt.Errorf("failed to create express account: %w", err)
	}

	c.log.Infow("Express account created", "accountID", acct.ID, "country", acct.Country)
	return mapAccount(acct), nil
}

// GetAccount возвращает текущее состояние connected-аккаунта
func (c *Client) GetAccount(ctx context.Context, accountID string) (domain.ConnectedAccount, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := c.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return domain.ConnectedAccount{}, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return mapAccount(acct), nil
}

// CreateOnboardingLink создает одноразовую ссылку онбординга для аккаунта.
// Ссылки короткоживущие, повторный вызов всегда выдает новую.
func (c *Client) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := c.api.AccountLinks.New(params)
	if err != nil {
		c.log.Errorw("Failed to create onboarding link", "error", err, "accountID", accountID)
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}

	return link.URL, nil
}

// AuthorizeURL возвращает URL авторизации OAuth для Standard-аккаунтов.
// State прокидывается как есть и проверяется на callback.
func (c *Client) AuthorizeURL(state string) string {
	params := &stripe.AuthorizeURLParams{
		ClientID:     stripe.String(c.cfg.ConnectClientID),
		ResponseType: stripe.String("code"),
		Scope:        stripe.String("read_write"),
		RedirectURI:  stripe.String(c.cfg.RedirectURI),
		State:        stripe.String(state),
	}

	return c.api.OAuth.AuthorizeURL(params)
}

// ExchangeOAuthCode обменивает authorization code на connected-аккаунт
func (c *Client) ExchangeOAuthCode(ctx context.Context, code string) (string, error) {
	params := &stripe.OAuthTokenParams{
		GrantType: stripe.String("authorization_code"),
		Code:      stripe.String(code),
	}
	params.Context = ctx

	token, err := c.api.OAuth.New(params)
	if err != nil {
		c.log.Errorw("Failed to exchange oauth code", "error", err)
		return "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	return token.StripeUserID, nil
}
