// Package permission authorizes actors against organizations and projects.
package permission

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/model"
)

var (
	_ model.OrgPermissionChecker     = (*Service)(nil)
	_ model.ProjectPermissionChecker = (*Service)(nil)
)

// Service checks memberships. Rejections surface as model.ErrForbidden and
// are propagated unchanged to the API boundary.
type Service struct {
	orgs     model.OrgStore
	projects model.ProjectStore
}

func New(orgs model.OrgStore, projects model.ProjectStore) *Service {
	return &Service{
		orgs:     orgs,
		projects: projects,
	}
}

// CheckOrgPermission verifies the actor belongs to orgID and that its
// credentials, when org-scoped, were issued for the same organization.
func (s *Service) CheckOrgPermission(ctx context.Context, actor model.Actor, orgID uuid.UUID) error {
	if actor.OrgID != uuid.Nil && actor.OrgID != orgID {
		return fmt.Errorf("%w: token is scoped to another organization", model.ErrForbidden)
	}

	isMember, err := s.orgs.IsMember(ctx, actor.ID, orgID)
	if err != nil {
		return fmt.Errorf("failed to check org membership: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: not a member of the organization", model.ErrForbidden)
	}

	return nil
}

// CheckProjectPermission verifies the actor belongs to projectID.
func (s *Service) CheckProjectPermission(ctx context.Context, actor model.Actor, projectID uuid.UUID) error {
	isMember, err := s.projects.IsMember(ctx, actor.ID, projectID)
	if err != nil {
		return fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: not a member of the project", model.ErrForbidden)
	}

	return nil
}
