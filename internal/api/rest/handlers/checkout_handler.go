package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/service"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// CheckoutHandler обработчик для создания checkout-сессий
type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

// NewCheckoutHandler создает новый обработчик checkout-сессий
func NewCheckoutHandler(svc service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		log:     log,
	}
}

// CreateOneTimeSession создает одноразовую checkout-сессию
func (h *CheckoutHandler) CreateOneTimeSession(c *gin.Context) {
	var req domain.CheckoutOneTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.CreateOneTimeSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created one-time checkout session: %s", session.ID)
	c.JSON(http.StatusOK, session)
}

// CreateSubscriptionSession создает подписочную checkout-сессию
func (h *CheckoutHandler) CreateSubscriptionSession(c *gin.Context) {
	var req domain.CheckoutSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.CreateSubscriptionSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created subscription checkout session: %s", session.ID)
	c.JSON(http.StatusOK, session)
}

// CreateServiceBookingSession создает сессию бронирования услуги
func (h *CheckoutHandler) CreateServiceBookingSession(c *gin.Context) {
	var req domain.ServiceBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.CreateServiceBookingSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created booking session: %s", booking.SessionID)
	c.JSON(http.StatusOK, booking)
}
