package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
)

func testAccountURLs() AccountURLs {
	return AccountURLs{
		OnboardingRefreshURL: "https://ezclub.app/stripe-setup/callback?stripe_return=error",
		OnboardingReturnURL:  "https://ezclub.app/stripe-setup/callback?stripe_return=success",
	}
}

func TestCreateExpressAccount(t *testing.T) {
	userID := uuid.New()
	clubID := uuid.New()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
			if id != userID {
				return domain.PlatformUser{}, repository.ErrNotFound
			}
			return domain.PlatformUser{ID: userID, Email: "owner@example.com"}, nil
		},
	}
	clubs := &mockClubRepo{
		GetBySlugFunc: func(ctx context.Context, slug string) (domain.Club, error) {
			if slug != "tennis-club" {
				return domain.Club{}, repository.ErrNotFound
			}
			return domain.Club{ID: clubID, Slug: slug}, nil
		},
	}
	var gotCountry string
	provider := &mockConnectProvider{
		CreateExpressAccountFunc: func(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
			gotCountry = req.Country
			return domain.ConnectedAccount{AccountID: "acct_new", Country: req.Country}, nil
		},
	}
	svc := NewAccountService(provider, users, clubs, testAccountURLs(), testLogger())

	account, err := svc.CreateExpressAccount(context.Background(), domain.CreateExpressAccountRequest{
		DisplayName: "Tennis Club",
		OwnerEmail:  "owner@example.com",
		UserID:      userID.String(),
		ClubSlug:    "tennis-club",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AccountID != "acct_new" {
		t.Errorf("account id = %q", account.AccountID)
	}
	if gotCountry != "US" {
		t.Errorf("country = %q, want default US", gotCountry)
	}
	if users.LastDashboardType != "express" {
		t.Errorf("dashboard type = %q, want express", users.LastDashboardType)
	}
	if users.LastLinkedAccountID != "acct_new" {
		t.Errorf("linked account = %q", users.LastLinkedAccountID)
	}
	if clubs.SetStripeAccountCalls != 1 {
		t.Errorf("club link calls = %d, want 1", clubs.SetStripeAccountCalls)
	}
}

func TestCreateExpressAccountErrors(t *testing.T) {
	userID := uuid.New()
	linkedID := uuid.New()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
			switch id {
			case userID:
				return domain.PlatformUser{ID: userID}, nil
			case linkedID:
				return domain.PlatformUser{ID: linkedID, StripeAccountID: "acct_existing"}, nil
			default:
				return domain.PlatformUser{}, repository.ErrNotFound
			}
		},
	}
	provider := &mockConnectProvider{
		CreateExpressAccountFunc: func(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
			return domain.ConnectedAccount{}, errMockProvider
		},
	}
	svc := NewAccountService(provider, users, &mockClubRepo{}, testAccountURLs(), testLogger())

	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{"malformed user id", "nope", domain.ErrInvalidInput},
		{"unknown user", uuid.NewString(), domain.ErrNotFound},
		{"user already linked", linkedID.String(), domain.ErrDuplicate},
		{"provider failure", userID.String(), domain.ErrExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpressAccount(context.Background(), domain.CreateExpressAccountRequest{
				DisplayName: "X",
				OwnerEmail:  "x@example.com",
				UserID:      tt.userID,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateOnboardingLink(t *testing.T) {
	var gotRefresh, gotReturn string
	provider := &mockConnectProvider{
		CreateOnboardingLinkFunc: func(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
			gotRefresh, gotReturn = refreshURL, returnURL
			return "https://connect.stripe.com/setup/s/abc", nil
		},
	}
	svc := NewAccountService(provider, &mockUserRepo{}, &mockClubRepo{}, testAccountURLs(), testLogger())

	url, err := svc.CreateOnboardingLink(context.Background(), "acct_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Errorf("expected onboarding url")
	}
	if !strings.Contains(gotRefresh, "stripe_return=error") || !strings.Contains(gotReturn, "stripe_return=success") {
		t.Errorf("callback urls = %q / %q", gotRefresh, gotReturn)
	}

	if _, err := svc.CreateOnboardingLink(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty account id: error = %v, want validation error", err)
	}
}

func TestStartOAuth(t *testing.T) {
	userID := uuid.New()
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
			if id != userID {
				return domain.PlatformUser{}, repository.ErrNotFound
			}
			return domain.PlatformUser{ID: userID}, nil
		},
	}
	svc := NewAccountService(&mockConnectProvider{}, users, &mockClubRepo{}, testAccountURLs(), testLogger())

	url, err := svc.StartOAuth(context.Background(), userID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(url, "state="+userID.String()) {
		t.Errorf("state must carry user id, url = %q", url)
	}

	if _, err := svc.StartOAuth(context.Background(), uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: error = %v, want not found", err)
	}
}

func TestCompleteOAuth(t *testing.T) {
	userID := uuid.New()
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
			if id != userID {
				return domain.PlatformUser{}, repository.ErrNotFound
			}
			return domain.PlatformUser{ID: userID}, nil
		},
	}
	provider := &mockConnectProvider{
		ExchangeOAuthCodeFunc: func(ctx context.Context, code string) (string, error) {
			if code != "ac_valid" {
				return "", errMockProvider
			}
			return "acct_std", nil
		},
		GetAccountFunc: func(ctx context.Context, accountID string) (domain.ConnectedAccount, error) {
			return domain.ConnectedAccount{
				AccountID:       accountID,
				Country:         "GB",
				DefaultCurrency: "gbp",
				ChargesEnabled:  true,
			}, nil
		},
	}
	svc := NewAccountService(provider, users, &mockClubRepo{}, testAccountURLs(), testLogger())

	account, err := svc.CompleteOAuth(context.Background(), userID.String(), "ac_valid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.AccountID != "acct_std" {
		t.Errorf("account id = %q", account.AccountID)
	}
	if users.LastDashboardType != "standard" {
		t.Errorf("dashboard type = %q, want standard", users.LastDashboardType)
	}
	// Статус подтянут сразу, без ожидания первого account.updated
	if users.StatusUpdateCalls != 1 {
		t.Errorf("status sync calls = %d, want 1", users.StatusUpdateCalls)
	}
	if u := users.LastStatusUpdate; u.Country == nil || *u.Country != "GB" {
		t.Errorf("country not synced: %+v", u)
	}
}

func TestCompleteOAuthErrors(t *testing.T) {
	userID := uuid.New()
	linkedID := uuid.New()
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.PlatformUser, error) {
			switch id {
			case userID:
				return domain.PlatformUser{ID: userID}, nil
			case linkedID:
				return domain.PlatformUser{ID: linkedID, StripeAccountID: "acct_existing"}, nil
			default:
				return domain.PlatformUser{}, repository.ErrNotFound
			}
		},
	}
	provider := &mockConnectProvider{
		ExchangeOAuthCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "", errMockProvider
		},
	}
	svc := NewAccountService(provider, users, &mockClubRepo{}, testAccountURLs(), testLogger())

	tests := []struct {
		name    string
		state   string
		wantErr error
	}{
		{"malformed state", "garbage", domain.ErrInvalidInput},
		{"unknown user", uuid.NewString(), domain.ErrNotFound},
		{"user already linked", linkedID.String(), domain.ErrDuplicate},
		{"exchange failure", userID.String(), domain.ErrExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteOAuth(context.Background(), tt.state, "ac_code")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
