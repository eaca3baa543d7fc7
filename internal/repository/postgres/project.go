package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.ProjectStore = (*ProjectRepository)(nil)

type ProjectRepository struct {
	db *Connection
}

func NewProjectRepository(db *Connection) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Project, error) {
	var project model.Project
	query := `SELECT id, org_id, name, version, created_at, updated_at FROM projects WHERE id = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(
		&project.ID, &project.OrgID, &project.Name, &project.Version,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Project{}, model.ErrNotFound
		}
		return model.Project{}, fmt.Errorf("failed to get project by id: %w", err)
	}

	return project, nil
}

func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error) {
	query := `SELECT id, org_id, name, version, created_at, updated_at FROM projects WHERE id = ANY($1)`

	rows, err := r.db.querier(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var project model.Project
		err := rows.Scan(
			&project.ID, &project.OrgID, &project.Name, &project.Version,
			&project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project model.Project) (model.Project, error) {
	query := `INSERT INTO projects (id, org_id, name, version) VALUES ($1, $2, $3, $4)
			  RETURNING id, org_id, name, version, created_at, updated_at`

	var savedProject model.Project
	err := r.db.querier(ctx).QueryRow(ctx, query,
		project.ID, project.OrgID, project.Name, project.Version,
	).Scan(
		&savedProject.ID, &savedProject.OrgID, &savedProject.Name, &savedProject.Version,
		&savedProject.CreatedAt, &savedProject.UpdatedAt,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to create project: %w", err)
	}

	return savedProject, nil
}

func (r *ProjectRepository) IsMember(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM project_memberships WHERE user_id = $1 AND project_id = $2)`

	var isMember bool
	err := r.db.querier(ctx).QueryRow(ctx, query, userID, projectID).Scan(&isMember)
	if err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}

	return isMember, nil
}

func (r *ProjectRepository) AddMember(ctx context.Context, membership model.ProjectMembership) (model.ProjectMembership, error) {
	query := `INSERT INTO project_memberships (id, project_id, user_id) VALUES ($1, $2, $3)
			  RETURNING id, project_id, user_id, created_at, updated_at`

	var savedMembership model.ProjectMembership
	err := r.db.querier(ctx).QueryRow(ctx, query,
		membership.ID, membership.ProjectID, membership.UserID,
	).Scan(
		&savedMembership.ID, &savedMembership.ProjectID, &savedMembership.UserID,
		&savedMembership.CreatedAt, &savedMembership.UpdatedAt,
	)
	if err != nil {
		return model.ProjectMembership{}, fmt.Errorf("failed to add project member: %w", err)
	}

	return savedMembership, nil
}
