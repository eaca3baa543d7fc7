package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.OrgStore = (*OrgRepository)(nil)

type OrgRepository struct {
	db *Connection
}

func NewOrgRepository(db *Connection) *OrgRepository {
	return &OrgRepository{
		db: db,
	}
}

func (r *OrgRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Organization, error) {
	var org model.Organization
	query := `SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Organization{}, model.ErrNotFound
		}
		return model.Organization{}, fmt.Errorf("failed to get organization by id: %w", err)
	}

	return org, nil
}

func (r *OrgRepository) Create(ctx context.Context, org model.Organization) (model.Organization, error) {
	query := `INSERT INTO organizations (id, name) VALUES ($1, $2)
			  RETURNING id, name, created_at, updated_at`

	var savedOrg model.Organization
	err := r.db.querier(ctx).QueryRow(ctx, query, org.ID, org.Name).Scan(
		&savedOrg.ID, &savedOrg.Name, &savedOrg.CreatedAt, &savedOrg.UpdatedAt,
	)
	if err != nil {
		return model.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}

	return savedOrg, nil
}

func (r *OrgRepository) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM org_memberships WHERE user_id = $1 AND org_id = $2)`

	var isMember bool
	err := r.db.querier(ctx).QueryRow(ctx, query, userID, orgID).Scan(&isMember)
	if err != nil {
		return false, fmt.Errorf("failed to check org membership: %w", err)
	}

	return isMember, nil
}

func (r *OrgRepository) AddMember(ctx context.Context, membership model.OrgMembership) (model.OrgMembership, error) {
	query := `INSERT INTO org_memberships (id, org_id, user_id, role) VALUES ($1, $2, $3, $4)
			  RETURNING id, org_id, user_id, role, created_at, updated_at`

	var savedMembership model.OrgMembership
	err := r.db.querier(ctx).QueryRow(ctx, query,
		membership.ID, membership.OrgID, membership.UserID, membership.Role,
	).Scan(
		&savedMembership.ID, &savedMembership.OrgID, &savedMembership.UserID,
		&savedMembership.Role, &savedMembership.CreatedAt, &savedMembership.UpdatedAt,
	)
	if err != nil {
		return model.OrgMembership{}, fmt.Errorf("failed to add org member: %w", err)
	}

	return savedMembership, nil
}
