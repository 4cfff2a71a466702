package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/idx"
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

var (
	ErrInvalidRole     = errors.New("invalid admin role")
	ErrAlreadyGranted  = errors.New("account already holds an admin grant")
	ErrGrantNotFound   = errors.New("no admin grant for this account")
	ErrTargetSuspended = errors.New("suspended accounts cannot hold an admin grant")
)

// AdminService resolves and mutates admin grants. Role lookups always hit
// the store; grants gate security-relevant actions and must reflect the
// latest committed write.
type AdminService struct {
	Store store.Store
	Clock clockx.Clock

	// AdminCanGrantAdmin lets a plain admin grant the admin role. Granting
	// superadmin and revoking anything always require superadmin.
	AdminCanGrantAdmin bool
}

// RoleOf returns the account's current role, RoleNone when no grant exists.
func (s *AdminService) RoleOf(ctx context.Context, accountID string) (domain.Role, error) {
	grant, err := s.Store.Grants().GetGrantByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RoleNone, nil
		}
		return domain.RoleNone, err
	}
	return grant.Role, nil
}

// Grant assigns a role to the target account. The target only needs to
// exist; email verification is not required. A suspended account can never
// receive a grant.
func (s *AdminService) Grant(ctx context.Context, requesterID, targetID string, role domain.Role) error {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		return ErrInvalidRole
	}

	requesterRole, err := s.RoleOf(ctx, requesterID)
	if err != nil {
		return err
	}
	if !s.mayGrant(requesterRole, role) {
		log.Warn("unauthorized admin grant attempt",
			slog.String("requester_id", requesterID),
			slog.String("target_id", targetID),
			slog.String("role", string(role)),
		)
		return ErrUnauthorized
	}

	target, err := s.Store.Accounts().GetAccountByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if target.Suspended {
		return ErrTargetSuspended
	}

	if _, err := s.Store.Grants().GetGrantByAccount(ctx, targetID); err == nil {
		return ErrAlreadyGranted
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	grant := domain.AdminGrant{
		ID:        idx.New().String(),
		AccountID: targetID,
		Role:      role,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Store.Grants().CreateGrant(ctx, grant); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyGranted
		}
		return err
	}

	log.Info("admin role granted",
		slog.String("requester_id", requesterID),
		slog.String("target_id", targetID),
		slog.String("role", string(role)),
	)
	return nil
}

// Revoke removes the target's grant. Superadmin only.
func (s *AdminService) Revoke(ctx context.Context, requesterID, targetID string) error {
	log := slogx.FromContext(ctx)

	requesterRole, err := s.RoleOf(ctx, requesterID)
	if err != nil {
		return err
	}
	if requesterRole != domain.RoleSuperAdmin {
		log.Warn("unauthorized admin revoke attempt",
			slog.String("requester_id", requesterID),
			slog.String("target_id", targetID),
		)
		return ErrUnauthorized
	}

	if _, err := s.Store.Grants().GetGrantByAccount(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGrantNotFound
		}
		return err
	}

	if err := s.Store.Grants().DeleteGrantByAccount(ctx, targetID); err != nil {
		return err
	}

	log.Info("admin role revoked",
		slog.String("requester_id", requesterID),
		slog.String("target_id", targetID),
	)
	return nil
}

// ListAdmins returns all current grants.
func (s *AdminService) ListAdmins(ctx context.Context) ([]domain.AdminGrant, error) {
	return s.Store.Grants().ListGrants(ctx)
}

func (s *AdminService) mayGrant(requester domain.Role, granting domain.Role) bool {
	if requester == domain.RoleSuperAdmin {
		return true
	}
	return requester == domain.RoleAdmin && granting == domain.RoleAdmin && s.AdminCanGrantAdmin
}
