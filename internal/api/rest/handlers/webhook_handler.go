package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/service"
	"github.com/clublaunch/payments-service/pkg/logger"
)

const webhookBodyLimit = 1024 * 1024 // 1MiB

// WebhookHandler обработчик вебхуков процессора.
// Проверка подписи — единственная аутентификация этих эндпоинтов.
type WebhookHandler struct {
	service service.WebhookService
	log     *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(svc service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		log:     log,
	}
}

// HandlePlatformWebhook обрабатывает события платформенного эндпоинта
func (h *WebhookHandler) HandlePlatformWebhook(c *gin.Context) {
	h.handle(c, h.service.ProcessPlatformEvent)
}

// HandleConnectWebhook обрабатывает события Connect-эндпоинта
func (h *WebhookHandler) HandleConnectWebhook(c *gin.Context) {
	h.handle(c, h.service.ProcessConnectEvent)
}

func (h *WebhookHandler) handle(c *gin.Context, process func(ctx context.Context, payload []byte, sigHeader string) error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		// Намеренно расплывчато: отсутствие подписи не отличается от неверной
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if err := process(c.Request.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, domain.ErrSignatureInvalid) {
			h.log.Warn("Webhook signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		h.log.Error("Failed to process webhook event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
