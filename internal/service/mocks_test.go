package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/keyfold/keyfold-server/internal/model"
)

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindEncryptionKey(ctx context.Context, userID uuid.UUID) (*model.UserEncryptionKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserEncryptionKey), args.Error(1)
}

func (m *MockUserStore) CreateEncryptionKey(ctx context.Context, key model.UserEncryptionKey) (model.UserEncryptionKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.UserEncryptionKey), args.Error(1)
}

func (m *MockUserStore) FindGhostUser(ctx context.Context, orgID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockConsumerKeyStore mocks the ConsumerKeyStore interface
type MockConsumerKeyStore struct {
	mock.Mock
}

func (m *MockConsumerKeyStore) Create(ctx context.Context, key model.ConsumerKey) (model.ConsumerKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.ConsumerKey), args.Error(1)
}

func (m *MockConsumerKeyStore) FindLatest(ctx context.Context, receiverID, orgID uuid.UUID) (*model.ConsumerKeyWithSender, error) {
	args := m.Called(ctx, receiverID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConsumerKeyWithSender), args.Error(1)
}

// MockProjectKeyStore mocks the ProjectKeyStore interface
type MockProjectKeyStore struct {
	mock.Mock
}

func (m *MockProjectKeyStore) Create(ctx context.Context, key model.ProjectKey) (model.ProjectKey, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.ProjectKey), args.Error(1)
}

func (m *MockProjectKeyStore) FindLatest(ctx context.Context, receiverID, projectID uuid.UUID) (*model.ProjectKeyWithSender, error) {
	args := m.Called(ctx, receiverID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectKeyWithSender), args.Error(1)
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

// MockConsumerSecretStore mocks the ConsumerSecretStore interface
type MockConsumerSecretStore struct {
	mock.Mock
}

func (m *MockConsumerSecretStore) Create(ctx context.Context, secret model.ConsumerSecret) (model.ConsumerSecret, error) {
	args := m.Called(ctx, secret)
	return args.Get(0).(model.ConsumerSecret), args.Error(1)
}

func (m *MockConsumerSecretStore) FindByUserOrg(ctx context.Context, userID, orgID uuid.UUID) ([]model.ConsumerSecret, error) {
	args := m.Called(ctx, userID, orgID)
	return args.Get(0).([]model.ConsumerSecret), args.Error(1)
}

func (m *MockConsumerSecretStore) Update(ctx context.Context, id, userID, orgID uuid.UUID, fields model.ConsumerSecretFields, skipMultilineEncoding bool) (model.ConsumerSecret, error) {
	args := m.Called(ctx, id, userID, orgID, fields, skipMultilineEncoding)
	return args.Get(0).(model.ConsumerSecret), args.Error(1)
}

func (m *MockConsumerSecretStore) Delete(ctx context.Context, id, userID, orgID uuid.UUID) (model.ConsumerSecret, error) {
	args := m.Called(ctx, id, userID, orgID)
	return args.Get(0).(model.ConsumerSecret), args.Error(1)
}

// MockOrgPermission mocks the OrgPermissionChecker interface
type MockOrgPermission struct {
	mock.Mock
}

func (m *MockOrgPermission) CheckOrgPermission(ctx context.Context, actor model.Actor, orgID uuid.UUID) error {
	args := m.Called(ctx, actor, orgID)
	return args.Error(0)
}

// MockProjectPermission mocks the ProjectPermissionChecker interface
type MockProjectPermission struct {
	mock.Mock
}

func (m *MockProjectPermission) CheckProjectPermission(ctx context.Context, actor model.Actor, projectID uuid.UUID) error {
	args := m.Called(ctx, actor, projectID)
	return args.Error(0)
}

// fakeTransactor runs fn directly so service transaction flows are testable
// without a database.
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
