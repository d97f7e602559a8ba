package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
)

// mockAccountService implements service.AccountService for testing
type mockAccountService struct {
	CreateExpressAccountFunc func(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error)
	CreateOnboardingLinkFunc func(ctx context.Context, accountID string) (string, error)
	StartOAuthFunc           func(ctx context.Context, userID string) (string, error)
	CompleteOAuthFunc        func(ctx context.Context, state, code string) (domain.ConnectedAccount, error)

	CompleteOAuthCalls int
}

func (m *mockAccountService) CreateExpressAccount(ctx context.Context, req domain.CreateExpressAccountRequest) (domain.ConnectedAccount, error) {
	if m.CreateExpressAccountFunc != nil {
		return m.CreateExpressAccountFunc(ctx, req)
	}
	return domain.ConnectedAccount{}, nil
}

func (m *mockAccountService) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	if m.CreateOnboardingLinkFunc != nil {
		return m.CreateOnboardingLinkFunc(ctx, accountID)
	}
	return "", nil
}

func (m *mockAccountService) StartOAuth(ctx context.Context, userID string) (string, error) {
	if m.StartOAuthFunc != nil {
		return m.StartOAuthFunc(ctx, userID)
	}
	return "", nil
}

func (m *mockAccountService) CompleteOAuth(ctx context.Context, state, code string) (domain.ConnectedAccount, error) {
	m.CompleteOAuthCalls++
	if m.CompleteOAuthFunc != nil {
		return m.CompleteOAuthFunc(ctx, state, code)
	}
	return domain.ConnectedAccount{}, nil
}

func newConnectRouter(svc *mockAccountService) *gin.Engine {
	h := NewConnectHandler(svc, discardLogger())
	r := gin.New()
	r.POST("/stripe/connect/express/accounts", h.CreateExpressAccount)
	r.POST("/stripe/connect/express/accounts/:account_id/onboard", h.CreateOnboardingLink)
	r.GET("/stripe/connect/oauth/start", h.StartOAuth)
	r.GET("/stripe/connect/oauth/callback", h.CompleteOAuth)
	return r
}

func TestProcessorErrorIsBadRequest(t *testing.T) {
	svc := &mockAccountService{
		CreateOnboardingLinkFunc: func(ctx context.Context, accountID string) (string, error) {
			return "", domain.NewExternalServiceError("stripe", "failed to create onboarding link", nil)
		},
	}
	r := newConnectRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/stripe/connect/express/accounts/acct_1/onboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	// Текст ошибки процессора отдается клиенту как есть
	if !strings.Contains(w.Body.String(), "failed to create onboarding link") {
		t.Errorf("response = %s", w.Body.String())
	}
}

func TestCompleteOAuthDeniedAuthorization(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"error only", "error=access_denied", "access_denied"},
		{
			"error with description",
			"error=access_denied&error_description=The+user+denied+your+request",
			"The user denied your request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAccountService{}
			r := newConnectRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/stripe/connect/oauth/callback?"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("response = %s, want %q", w.Body.String(), tt.want)
			}
			if svc.CompleteOAuthCalls != 0 {
				t.Errorf("service must not be called on a denied authorization")
			}
		})
	}
}

func TestCompleteOAuthRequiresStateAndCode(t *testing.T) {
	svc := &mockAccountService{}
	r := newConnectRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/stripe/connect/oauth/callback?code=ac_1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.CompleteOAuthCalls != 0 {
		t.Errorf("service must not be called without state")
	}
}
