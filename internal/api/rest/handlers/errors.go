package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// respondError переводит доменную ошибку в HTTP-ответ
func respondError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("Not found: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		log.Warn("Duplicate: %v", err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPreconditionFailed):
		log.Warn("Precondition failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrExternalService):
		// Ошибки процессора отдаются клиенту как 400 с исходным текстом:
		// ретраить их бессмысленно, причина почти всегда в самом запросе
		log.Error("External service error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
