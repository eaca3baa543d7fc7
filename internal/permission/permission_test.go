package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/keyfold/keyfold-server/internal/model"
)

// MockOrgStore mocks the OrgStore interface
type MockOrgStore struct {
	mock.Mock
}

func (m *MockOrgStore) GetByID(ctx context.Context, id uuid.UUID) (model.Organization, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *MockOrgStore) Create(ctx context.Context, org model.Organization) (model.Organization, error) {
	args := m.Called(ctx, org)
	return args.Get(0).(model.Organization), args.Error(1)
}

func (m *MockOrgStore) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, orgID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrgStore) AddMember(ctx context.Context, membership model.OrgMembership) (model.OrgMembership, error) {
	args := m.Called(ctx, membership)
	return args.Get(0).(model.OrgMembership), args.Error(1)
}

// MockProjectStore mocks the ProjectStore interface
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (model.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Project), args.Error(1)
}

func (m *MockProjectStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Project, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectStore) Create(ctx context.Context, project model.Project) (model.Project, error) {
	args := m.Called(ctx, project)
	return args.Get(0).(model.Project), args.Error(1)
}

func (m *MockProjectStore) IsMember(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectStore) AddMember(ctx context.Context, membership model.ProjectMembership) (model.ProjectMembership, error) {
	args := m.Called(ctx, membership)
	return args.Get(0).(model.ProjectMembership), args.Error(1)
}

func TestService_CheckOrgPermission(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name      string
		actor     model.Actor
		mockSetup func(*MockOrgStore)
		wantErr   error
	}{
		{
			name:  "member with unscoped token",
			actor: model.Actor{ID: userID, Type: model.ActorTypeUser},
			mockSetup: func(orgs *MockOrgStore) {
				orgs.On("IsMember", mock.Anything, userID, orgID).Return(true, nil)
			},
		},
		{
			name:  "member with matching org scope",
			actor: model.Actor{ID: userID, Type: model.ActorTypeUser, OrgID: orgID},
			mockSetup: func(orgs *MockOrgStore) {
				orgs.On("IsMember", mock.Anything, userID, orgID).Return(true, nil)
			},
		},
		{
			name:      "token scoped to another org",
			actor:     model.Actor{ID: userID, Type: model.ActorTypeUser, OrgID: uuid.New()},
			mockSetup: func(orgs *MockOrgStore) {},
			wantErr:   model.ErrForbidden,
		},
		{
			name:  "not a member",
			actor: model.Actor{ID: userID, Type: model.ActorTypeUser},
			mockSetup: func(orgs *MockOrgStore) {
				orgs.On("IsMember", mock.Anything, userID, orgID).Return(false, nil)
			},
			wantErr: model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orgs := &MockOrgStore{}
			tt.mockSetup(orgs)

			service := New(orgs, &MockProjectStore{})

			err := service.CheckOrgPermission(context.Background(), tt.actor, orgID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			orgs.AssertExpectations(t)
		})
	}
}

func TestService_CheckOrgPermission_StoreError(t *testing.T) {
	orgID := uuid.New()
	actor := model.Actor{ID: uuid.New(), Type: model.ActorTypeUser}

	orgs := &MockOrgStore{}
	orgs.On("IsMember", mock.Anything, actor.ID, orgID).Return(false, errors.New("database error"))

	service := New(orgs, &MockProjectStore{})

	err := service.CheckOrgPermission(context.Background(), actor, orgID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrForbidden)
}

func TestService_CheckProjectPermission(t *testing.T) {
	projectID := uuid.New()
	actor := model.Actor{ID: uuid.New(), Type: model.ActorTypeUser}

	t.Run("member", func(t *testing.T) {
		projects := &MockProjectStore{}
		projects.On("IsMember", mock.Anything, actor.ID, projectID).Return(true, nil)

		service := New(&MockOrgStore{}, projects)

		assert.NoError(t, service.CheckProjectPermission(context.Background(), actor, projectID))
	})

	t.Run("not a member", func(t *testing.T) {
		projects := &MockProjectStore{}
		projects.On("IsMember", mock.Anything, actor.ID, projectID).Return(false, nil)

		service := New(&MockOrgStore{}, projects)

		err := service.CheckProjectPermission(context.Background(), actor, projectID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
