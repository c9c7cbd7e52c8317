package services

import (
	"context"

	"bizgate/internal/autherrors"
	"bizgate/internal/models"
	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// MembershipService resolves which businesses a user may act in. The
// three-way selection branch (none / one / several) lives here once and is
// shared by sign-in, password reset, and email verification.
type MembershipService interface {
	ResolveEligible(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error)
	// SelectBusiness picks the tenant for an operation. With an explicit id it
	// re-validates membership and tenant status. Without one: zero eligible
	// memberships fail, exactly one auto-selects, several return the options
	// so the caller can ask the user to choose (tenant id is then uuid.Nil).
	SelectBusiness(ctx context.Context, userID uuid.UUID, explicit *uuid.UUID) (uuid.UUID, []models.BusinessOption, error)
}

type membershipService struct {
	membershipRepo repositories.MembershipRepository
	tenantRepo     repositories.TenantRepository
}

func NewMembershipService(membershipRepo repositories.MembershipRepository, tenantRepo repositories.TenantRepository) MembershipService {
	return &membershipService{
		membershipRepo: membershipRepo,
		tenantRepo:     tenantRepo,
	}
}

func (s *membershipService) ResolveEligible(ctx context.Context, userID uuid.UUID) ([]models.BusinessOption, error) {
	return s.membershipRepo.ListEligibleByUser(ctx, userID)
}

func (s *membershipService) SelectBusiness(ctx context.Context, userID uuid.UUID, explicit *uuid.UUID) (uuid.UUID, []models.BusinessOption, error) {
	if explicit != nil && *explicit != uuid.Nil {
		// Re-validate even when the caller supplies the id; it may be stale
		// or forged.
		membership, err := s.membershipRepo.GetByUserAndTenant(ctx, userID, *explicit)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if membership == nil || membership.Status != models.MembershipStatusActive {
			return uuid.Nil, nil, autherrors.ErrMembershipInactive
		}
		tenant, err := s.tenantRepo.GetByID(ctx, *explicit)
		if err != nil {
			return uuid.Nil, nil, err
		}
		if tenant == nil || tenant.Status == models.TenantStatusSuspended || tenant.Status == models.TenantStatusDeleted {
			return uuid.Nil, nil, autherrors.ErrTenantInactive
		}
		return *explicit, nil, nil
	}

	options, err := s.membershipRepo.ListEligibleByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	switch len(options) {
	case 0:
		return uuid.Nil, nil, autherrors.ErrNoActiveBusiness
	case 1:
		return options[0].TenantID, nil, nil
	default:
		return uuid.Nil, options, nil
	}
}
