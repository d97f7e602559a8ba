package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
	"github.com/clublaunch/payments-service/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Значения по умолчанию для white-label темы клуба
const (
	defaultPrimaryColor   = "#1F2937"
	defaultSecondaryColor = "#3B82F6"
	defaultMemberTier     = "free"
	defaultMemberStatus   = "active"
)

// ClubService интерфейс сервиса для работы с клубами и их участниками
type ClubService interface {
	CreateClub(ctx context.Context, req domain.ClubRequest) (domain.Club, error)
	GetClub(ctx context.Context, id string) (domain.Club, error)
	GetClubBySlug(ctx context.Context, slug string) (domain.Club, error)
	ListClubs(ctx context.Context, limit, offset int) ([]domain.Club, error)
	UpdateClub(ctx context.Context, id string, req domain.ClubUpdateRequest) (domain.Club, error)
	DeleteClub(ctx context.Context, id string) error

	AddMember(ctx context.Context, clubID string, req domain.MemberRequest) (domain.ClubMember, error)
	ListMembers(ctx context.Context, clubID string, limit, offset int) ([]domain.ClubMember, error)

	CreateBookingService(ctx context.Context, clubID string, req domain.BookingServiceRequest) (domain.BookingService, error)
	ListBookingServices(ctx context.Context, clubID string) ([]domain.BookingService, error)

	ListPayments(ctx context.Context, clubID string, limit, offset int) ([]domain.Payment, error)
}

type clubService struct {
	clubRepo    repository.ClubRepository
	memberRepo  repository.MemberRepository
	serviceRepo repository.BookingServiceRepository
	paymentRepo repository.PaymentRepository
	log         *logger.Logger
}

// NewClubService создает новый сервис для работы с клубами
func NewClubService(
	clubRepo repository.ClubRepository,
	memberRepo repository.MemberRepository,
	serviceRepo repository.BookingServiceRepository,
	paymentRepo repository.PaymentRepository,
	log *logger.Logger,
) ClubService {
	return &clubService{
		clubRepo:    clubRepo,
		memberRepo:  memberRepo,
		serviceRepo: serviceRepo,
		paymentRepo: paymentRepo,
		log:         log,
	}
}

func (s *clubService) CreateClub(ctx context.Context, req domain.ClubRequest) (domain.Club, error) {
	s.log.Debug("Creating club: %s", req.Slug)

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return domain.Club{}, domain.NewValidationError("slug", "must contain only lowercase letters, digits and hyphens")
	}

	club := domain.Club{
		ID:                 uuid.New(),
		Name:               req.Name,
		Slug:               slug,
		Description:        req.Description,
		PrimaryColor:       req.PrimaryColor,
		SecondaryColor:     req.SecondaryColor,
		Features:           req.Features,
		SubscriptionStatus: domain.ClubSubscriptionTrial,
		SubscriptionPlan:   "starter",
	}
	if club.PrimaryColor == "" {
		club.PrimaryColor = defaultPrimaryColor
	}
	if club.SecondaryColor == "" {
		club.SecondaryColor = defaultSecondaryColor
	}
	if club.Features == nil {
		club.Features = map[string]bool{}
	}

	created, err := s.clubRepo.Create(ctx, club)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Club{}, domain.NewDuplicateError("club", "slug", slug)
		}
		return domain.Club{}, err
	}

	s.log.Info("Club %s created: %s", created.Slug, created.ID)
	return created, nil
}

func (s *clubService) GetClub(ctx context.Context, id string) (domain.Club, error) {
	clubID, err := uuid.Parse(id)
	if err != nil {
		return domain.Club{}, domain.NewValidationError("id", "must be a valid UUID")
	}

	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Club{}, domain.NewNotFoundError("club", id)
		}
		return domain.Club{}, err
	}
	if club.IsDeleted() {
		return domain.Club{}, domain.NewNotFoundError("club", id)
	}

	return club, nil
}

func (s *clubService) GetClubBySlug(ctx context.Context, slug string) (domain.Club, error) {
	club, err := s.clubRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Club{}, domain.NewNotFoundError("club", slug)
		}
		return domain.Club{}, err
	}

	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context, limit, offset int) ([]domain.Club, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.clubRepo.List(ctx, limit, offset)
}

func (s *clubService) UpdateClub(ctx context.Context, id string, req domain.ClubUpdateRequest) (domain.Club, error) {
	club, err := s.GetClub(ctx, id)
	if err != nil {
		return domain.Club{}, err
	}

	if req.Name != nil {
		club.Name = *req.Name
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.LogoURL != nil {
		club.LogoURL = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		club.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		club.SecondaryColor = *req.SecondaryColor
	}
	if req.Features != nil {
		club.Features = *req.Features
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Club{}, domain.NewNotFoundError("club", id)
		}
		return domain.Club{}, err
	}

	s.log.Info("Club %s updated", club.Slug)
	return club, nil
}

func (s *clubService) DeleteClub(ctx context.Context, id string) error {
	clubID, err := uuid.Parse(id)
	if err != nil {
		return domain.NewValidationError("id", "must be a valid UUID")
	}

	if err := s.clubRepo.SoftDelete(ctx, clubID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewNotFoundError("club", id)
		}
		return err
	}

	s.log.Info("Club %s soft deleted", id)
	return nil
}

func (s *clubService) AddMember(ctx context.Context, clubID string, req domain.MemberRequest) (domain.ClubMember, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return domain.ClubMember{}, err
	}

	member := domain.ClubMember{
		ID:          uuid.New(),
		ClubID:      club.ID,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName: req.DisplayName,
		MemberTier:  req.MemberTier,
		Status:      defaultMemberStatus,
	}
	if member.MemberTier == "" {
		member.MemberTier = defaultMemberTier
	}

	created, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.ClubMember{}, domain.NewDuplicateError("member", "email", member.Email)
		}
		return domain.ClubMember{}, err
	}

	s.log.Info("Member %s added to club %s", created.Email, club.Slug)
	return created, nil
}

func (s *clubService) ListMembers(ctx context.Context, clubID string, limit, offset int) ([]domain.ClubMember, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.memberRepo.ListByClub(ctx, club.ID, limit, offset)
}

func (s *clubService) CreateBookingService(ctx context.Context, clubID string, req domain.BookingServiceRequest) (domain.BookingService, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return domain.BookingService{}, err
	}

	svc := domain.BookingService{
		ID:              uuid.New(),
		ClubID:          club.ID,
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	created, err := s.serviceRepo.Create(ctx, svc)
	if err != nil {
		return domain.BookingService{}, err
	}

	s.log.Info("Booking service %q created for club %s", created.Name, club.Slug)
	return created, nil
}

func (s *clubService) ListBookingServices(ctx context.Context, clubID string) ([]domain.BookingService, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	return s.serviceRepo.ListByClub(ctx, club.ID)
}

func (s *clubService) ListPayments(ctx context.Context, clubID string, limit, offset int) ([]domain.Payment, error) {
	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.paymentRepo.ListByClub(ctx, club.ID, limit, offset)
}
