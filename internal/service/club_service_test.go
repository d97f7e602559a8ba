package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clublaunch/payments-service/internal/domain"
	"github.com/clublaunch/payments-service/internal/repository"
)

func newClubService(clubs *mockClubRepo, members *mockMemberRepo, services *mockBookingRepo, payments *mockPaymentRepo) ClubService {
	if clubs == nil {
		clubs = &mockClubRepo{}
	}
	if members == nil {
		members = &mockMemberRepo{}
	}
	if services == nil {
		services = &mockBookingRepo{}
	}
	if payments == nil {
		payments = &mockPaymentRepo{}
	}
	return NewClubService(clubs, members, services, payments, testLogger())
}

func TestCreateClubDefaults(t *testing.T) {
	var created domain.Club
	clubs := &mockClubRepo{
		CreateFunc: func(ctx context.Context, club domain.Club) (domain.Club, error) {
			created = club
			return club, nil
		},
	}
	svc := newClubService(clubs, nil, nil, nil)

	club, err := svc.CreateClub(context.Background(), domain.ClubRequest{
		Name: "Tennis Club",
		Slug: "  Tennis-Club  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Slug != "tennis-club" {
		t.Errorf("slug = %q, want normalized tennis-club", created.Slug)
	}
	if created.PrimaryColor == "" || created.SecondaryColor == "" {
		t.Errorf("default colors not applied: %q/%q", created.PrimaryColor, created.SecondaryColor)
	}
	if created.SubscriptionStatus != domain.ClubSubscriptionTrial {
		t.Errorf("subscription status = %q, want trial", created.SubscriptionStatus)
	}
	if created.SubscriptionPlan != "starter" {
		t.Errorf("plan = %q, want starter", created.SubscriptionPlan)
	}
	if club.ID == uuid.Nil {
		t.Errorf("id not assigned")
	}
}

func TestCreateClubSlugValidation(t *testing.T) {
	svc := newClubService(nil, nil, nil, nil)

	for _, slug := range []string{"", "-leading", "trailing-", "two--dashes", "with space", "UPPER_case!"} {
		_, err := svc.CreateClub(context.Background(), domain.ClubRequest{Name: "X", Slug: slug})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("slug %q: error = %v, want validation error", slug, err)
		}
	}
}

func TestCreateClubDuplicateSlug(t *testing.T) {
	clubs := &mockClubRepo{
		CreateFunc: func(ctx context.Context, club domain.Club) (domain.Club, error) {
			return domain.Club{}, repository.ErrDuplicate
		},
	}
	svc := newClubService(clubs, nil, nil, nil)

	_, err := svc.CreateClub(context.Background(), domain.ClubRequest{Name: "X", Slug: "tennis-club"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("error = %v, want duplicate", err)
	}
}

func TestGetClubDeletedIsNotFound(t *testing.T) {
	deletedAt := time.Now()
	id := uuid.New()
	clubs := &mockClubRepo{
		GetByIDFunc: func(ctx context.Context, cid uuid.UUID) (domain.Club, error) {
			return domain.Club{ID: cid, Slug: "gone", DeletedAt: &deletedAt}, nil
		},
	}
	svc := newClubService(clubs, nil, nil, nil)

	_, err := svc.GetClub(context.Background(), id.String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestGetClubMalformedID(t *testing.T) {
	svc := newClubService(nil, nil, nil, nil)

	_, err := svc.GetClub(context.Background(), "not-a-uuid")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestListClubsClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	clubs := &mockClubRepo{
		ListFunc: func(ctx context.Context, limit, offset int) ([]domain.Club, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := newClubService(clubs, nil, nil, nil)

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-5, -3, 50, 0},
		{500, 10, 50, 10},
		{25, 5, 25, 5},
	}

	for _, tt := range tests {
		if _, err := svc.ListClubs(context.Background(), tt.limit, tt.offset); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
			t.Errorf("ListClubs(%d, %d) passed %d/%d, want %d/%d",
				tt.limit, tt.offset, gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestUpdateClubPartialFields(t *testing.T) {
	id := uuid.New()
	clubs := &mockClubRepo{
		GetByIDFunc: func(ctx context.Context, cid uuid.UUID) (domain.Club, error) {
			return domain.Club{
				ID:             cid,
				Name:           "Old Name",
				Slug:           "tennis-club",
				Description:    "old description",
				PrimaryColor:   "#111111",
				SecondaryColor: "#222222",
			}, nil
		},
	}
	svc := newClubService(clubs, nil, nil, nil)

	newName := "New Name"
	club, err := svc.UpdateClub(context.Background(), id.String(), domain.ClubUpdateRequest{
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if club.Name != "New Name" {
		t.Errorf("name = %q, want New Name", club.Name)
	}
	if club.Description != "old description" {
		t.Errorf("nil field must not be touched, description = %q", club.Description)
	}
	if club.PrimaryColor != "#111111" {
		t.Errorf("nil field must not be touched, primary color = %q", club.PrimaryColor)
	}
}

func TestAddMemberNormalizesEmail(t *testing.T) {
	id := uuid.New()
	clubs := &mockClubRepo{
		GetByIDFunc: func(ctx context.Context, cid uuid.UUID) (domain.Club, error) {
			return domain.Club{ID: cid, Slug: "tennis-club"}, nil
		},
	}
	var created domain.ClubMember
	members := &mockMemberRepo{
		CreateFunc: func(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error) {
			created = member
			return member, nil
		},
	}
	svc := newClubService(clubs, members, nil, nil)

	_, err := svc.AddMember(context.Background(), id.String(), domain.MemberRequest{
		Email: "  Alice@Example.COM ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized alice@example.com", created.Email)
	}
	if created.MemberTier != "free" {
		t.Errorf("tier = %q, want default free", created.MemberTier)
	}
	if created.Status != "active" {
		t.Errorf("status = %q, want active", created.Status)
	}
}

func TestAddMemberDuplicateEmail(t *testing.T) {
	id := uuid.New()
	clubs := &mockClubRepo{
		GetByIDFunc: func(ctx context.Context, cid uuid.UUID) (domain.Club, error) {
			return domain.Club{ID: cid, Slug: "tennis-club"}, nil
		},
	}
	members := &mockMemberRepo{
		CreateFunc: func(ctx context.Context, member domain.ClubMember) (domain.ClubMember, error) {
			return domain.ClubMember{}, repository.ErrDuplicate
		},
	}
	svc := newClubService(clubs, members, nil, nil)

	_, err := svc.AddMember(context.Background(), id.String(), domain.MemberRequest{Email: "alice@example.com"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("error = %v, want duplicate", err)
	}
}

func TestCreateBookingServiceScopedToClub(t *testing.T) {
	id := uuid.New()
	clubs := &mockClubRepo{
		GetByIDFunc: func(ctx context.Context, cid uuid.UUID) (domain.Club, error) {
			return domain.Club{ID: cid, Slug: "tennis-club"}, nil
		},
	}
	var created domain.BookingService
	services := &mockBookingRepo{
		CreateFunc: func(ctx context.Context, svc domain.BookingService) (domain.BookingService, error) {
			created = svc
			return svc, nil
		},
	}
	svc := newClubService(clubs, nil, services, nil)

	_, err := svc.CreateBookingService(context.Background(), id.String(), domain.BookingServiceRequest{
		Name:            "Court rental",
		PriceCents:      5000,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ClubID != id {
		t.Errorf("club id = %s, want %s", created.ClubID, id)
	}
	if !created.IsActive {
		t.Errorf("new service must be active")
	}
}

func TestListPaymentsForMissingClub(t *testing.T) {
	svc := newClubService(nil, nil, nil, nil)

	_, err := svc.ListPayments(context.Background(), uuid.NewString(), 10, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
