package services

import (
	"context"

	"bizgate/internal/repositories"

	"github.com/google/uuid"
)

// AccessSnapshot is what gets sealed into an access token: resolved roles,
// permissions, and the membership's branch scope at issuance time.
type AccessSnapshot struct {
	RoleIDs     []uuid.UUID
	Permissions []string
	BranchScope string
}

// RBACService resolves a user's authorization state within one tenant.
type RBACService interface {
	Resolve(ctx context.Context, userID, tenantID uuid.UUID) (*AccessSnapshot, error)
}

type rbacService struct {
	userRoleRepo       repositories.UserRoleRepository
	rolePermissionRepo repositories.RolePermissionRepository
	membershipRepo     repositories.MembershipRepository
}

func NewRBACService(userRoleRepo repositories.UserRoleRepository, rolePermissionRepo repositories.RolePermissionRepository, membershipRepo repositories.MembershipRepository) RBACService {
	return &rbacService{
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
		membershipRepo:     membershipRepo,
	}
}

func (s *rbacService) Resolve(ctx context.Context, userID, tenantID uuid.UUID) (*AccessSnapshot, error) {
	roleIDs, err := s.userRoleRepo.ListRoleIDs(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	permissions, err := s.rolePermissionRepo.ListPermissionNames(ctx, tenantID, roleIDs)
	if err != nil {
		return nil, err
	}

	branchScope := "all"
	membership, err := s.membershipRepo.GetByUserAndTenant(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if membership != nil && membership.BranchScope != "" {
		branchScope = membership.BranchScope
	}

	return &AccessSnapshot{
		RoleIDs:     roleIDs,
		Permissions: permissions,
		BranchScope: branchScope,
	}, nil
}
