package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrgStore defines persistence operations for organizations and memberships.
type OrgStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	Create(ctx context.Context, org Organization) (Organization, error)
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, membership OrgMembership) (OrgMembership, error)
}

// Organization is the primary tenancy boundary. Every key and secret row
// carries an org id.
type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrgMembership links a user to an organization.
type OrgMembership struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	UserID    uuid.UUID
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
