package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/service"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// ConnectHandler обработчик для управления connected-аккаунтами
type ConnectHandler struct {
	service service.AccountService
	log     *logger.Logger
}

// NewConnectHandler создает новый обработчик connected-аккаунтов
func NewConnectHandler(svc service.AccountService, log *logger.Logger) *ConnectHandler {
	return &ConnectHandler{
		service: svc,
		log:     log,
	}
}

// CreateExpressAccount создает Express-аккаунт для пользователя платформы
func (h *ConnectHandler) CreateExpressAccount(c *gin.Context) {
	var req domain.CreateExpressAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.service.CreateExpressAccount(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created express account: %s", account.AccountID)
	c.JSON(http.StatusCreated, account)
}

// CreateOnboardingLink выдает свежую ссылку онбординга
func (h *ConnectHandler) CreateOnboardingLink(c *gin.Context) {
	accountID := c.Param("account_id")

	url, err := h.service.CreateOnboardingLink(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// StartOAuth возвращает URL авторизации для Standard-аккаунта
func (h *ConnectHandler) StartOAuth(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	url, err := h.service.StartOAuth(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// CompleteOAuth обрабатывает callback авторизации
func (h *ConnectHandler) CompleteOAuth(c *gin.Context) {
	// Отказ в авторизации приходит параметром error вместо code
	if oauthErr := c.Query("error"); oauthErr != "" {
		detail := oauthErr
		if desc := c.Query("error_description"); desc != "" {
			detail = desc
		}
		h.log.Warn("OAuth authorization denied: %s", detail)
		c.JSON(http.StatusBadRequest, gin.H{"error": detail})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and code are required"})
		return
	}

	account, err := h.service.CompleteOAuth(c.Request.Context(), state, code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("OAuth completed for account: %s", account.AccountID)
	c.JSON(http.StatusOK, account)
}
