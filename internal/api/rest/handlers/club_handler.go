package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/service"
	"github.com/clublaunch/payments-service/pkg/logger"
)

// ClubHandler обработчик для клубов, участников и каталога услуг
type ClubHandler struct {
	service service.ClubService
	log     *logger.Logger
}

// NewClubHandler создает новый обработчик клубов
func NewClubHandler(svc service.ClubService, log *logger.Logger) *ClubHandler {
	return &ClubHandler{
		service: svc,
		log:     log,
	}
}

func paginationParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// CreateClub создает новый клуб
func (h *ClubHandler) CreateClub(c *gin.Context) {
	var req domain.ClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	club, err := h.service.CreateClub(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created club: %s", club.Slug)
	c.JSON(http.StatusCreated, club)
}

// GetClub возвращает клуб по ID
func (h *ClubHandler) GetClub(c *gin.Context) {
	club, err := h.service.GetClub(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, club)
}

// GetClubBySlug возвращает клуб по slug
func (h *ClubHandler) GetClubBySlug(c *gin.Context) {
	club, err := h.service.GetClubBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, club)
}

// ListClubs возвращает список активных клубов
func (h *ClubHandler) ListClubs(c *gin.Context) {
	limit, offset := paginationParams(c)

	clubs, err := h.service.ListClubs(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, clubs)
}

// UpdateClub обновляет клуб
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	var req domain.ClubUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	club, err := h.service.UpdateClub(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, club)
}

// DeleteClub помечает клуб удаленным
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	if err := h.service.DeleteClub(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember добавляет участника в клуб
func (h *ClubHandler) AddMember(c *gin.Context) {
	var req domain.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// ListMembers возвращает участников клуба
func (h *ClubHandler) ListMembers(c *gin.Context) {
	limit, offset := paginationParams(c)

	members, err := h.service.ListMembers(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// CreateBookingService добавляет услугу в каталог клуба
func (h *ClubHandler) CreateBookingService(c *gin.Context) {
	var req domain.BookingServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.service.CreateBookingService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// ListBookingServices возвращает активные услуги клуба
func (h *ClubHandler) ListBookingServices(c *gin.Context) {
	services, err := h.service.ListBookingServices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// ListPayments возвращает платежи клуба
func (h *ClubHandler) ListPayments(c *gin.Context) {
	limit, offset := paginationParams(c)

	payments, err := h.service.ListPayments(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}
