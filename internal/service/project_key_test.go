package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keyfold/keyfold-server/internal/crypto"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

func TestCreateProjectKey(t *testing.T) {
	keyPair, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	encryptedKey, nonce, err := CreateProjectKey(keyPair.PublicKey, keyPair.PrivateKey)
	require.NoError(t, err)

	plainKey, err := crypto.DecryptAsymmetric(encryptedKey, nonce, keyPair.PublicKey, keyPair.PrivateKey)
	require.NoError(t, err)
	assert.Len(t, plainKey, 32)
}

func TestVerifyProjectVersions(t *testing.T) {
	tests := []struct {
		name     string
		projects []model.Project
		expected model.ProjectVersion
		want     bool
	}{
		{
			name:     "empty batch",
			projects: nil,
			expected: model.ProjectVersionV2,
			want:     true,
		},
		{
			name: "all match",
			projects: []model.Project{
				{ID: uuid.New(), Version: model.ProjectVersionV2},
				{ID: uuid.New(), Version: model.ProjectVersionV2},
			},
			expected: model.ProjectVersionV2,
			want:     true,
		},
		{
			name: "one older",
			projects: []model.Project{
				{ID: uuid.New(), Version: model.ProjectVersionV2},
				{ID: uuid.New(), Version: model.ProjectVersionV1},
			},
			expected: model.ProjectVersionV2,
			want:     false,
		},
		{
			name: "one newer",
			projects: []model.Project{
				{ID: uuid.New(), Version: model.ProjectVersionV3},
			},
			expected: model.ProjectVersionV2,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyProjectVersions(tt.projects, tt.expected))
		})
	}
}

func TestAssignProjectKeysToMembers(t *testing.T) {
	projectID := uuid.New()

	inviter, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	invitee, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	plainKey, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	encryptedKey, nonce, err := crypto.EncryptAsymmetric(plainKey, inviter.PublicKey, inviter.PrivateKey)
	require.NoError(t, err)

	decryptKey := model.ProjectKeyWithSender{
		ProjectKey:      model.ProjectKey{ProjectID: projectID, EncryptedKey: encryptedKey, Nonce: nonce},
		SenderPublicKey: inviter.PublicKey,
	}

	inviteeID := uuid.New()
	wrapped, err := AssignProjectKeysToMembers(decryptKey, inviter.PrivateKey, []ProjectKeyReceiver{
		{UserID: inviteeID, ProjectID: projectID, PublicKey: invitee.PublicKey},
	})
	require.NoError(t, err)
	require.Len(t, wrapped, 1)

	assert.Equal(t, inviteeID, wrapped[0].UserID)
	assert.Equal(t, projectID, wrapped[0].ProjectID)

	recovered, err := crypto.DecryptAsymmetric(wrapped[0].EncryptedKey, wrapped[0].Nonce, inviter.PublicKey, invitee.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, plainKey, recovered)
}

func TestProjectKeyService_AddMembersToProject(t *testing.T) {
	projectID := uuid.New()
	orgID := uuid.New()
	memberID := uuid.New()
	inviterActor := model.Actor{ID: uuid.New(), Type: model.ActorTypeUser}

	inviter, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	member, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	plainKey, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	encryptedKey, nonce, err := crypto.EncryptAsymmetric(plainKey, inviter.PublicKey, inviter.PrivateKey)
	require.NoError(t, err)

	inviterKey := &model.ProjectKeyWithSender{
		ProjectKey:      model.ProjectKey{ProjectID: projectID, ReceiverID: inviterActor.ID, EncryptedKey: encryptedKey, Nonce: nonce},
		SenderPublicKey: inviter.PublicKey,
	}

	tests := []struct {
		name      string
		mockSetup func(*MockProjectStore, *MockProjectKeyStore, *MockUserStore, *MockProjectPermission)
		wantErr   error
	}{
		{
			name: "successful invitation",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(nil)
				projects.On("FindByIDs", mock.Anything, []uuid.UUID{projectID}).
					Return([]model.Project{{ID: projectID, OrgID: orgID, Version: model.ProjectVersionV2}}, nil)
				keys.On("FindLatest", mock.Anything, inviterActor.ID, projectID).Return(inviterKey, nil)
				users.On("FindEncryptionKey", mock.Anything, memberID).
					Return(&model.UserEncryptionKey{UserID: memberID, PublicKey: member.PublicKey}, nil)
				projects.On("AddMember", mock.Anything, mock.MatchedBy(func(m model.ProjectMembership) bool {
					return m.ProjectID == projectID && m.UserID == memberID
				})).Return(model.ProjectMembership{}, nil)
				keys.On("Create", mock.Anything, mock.MatchedBy(func(k model.ProjectKey) bool {
					return k.ProjectID == projectID && k.ReceiverID == memberID &&
						k.SenderID != nil && *k.SenderID == inviterActor.ID
				})).Return(model.ProjectKey{}, nil)
			},
		},
		{
			name: "project missing",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(nil)
				projects.On("FindByIDs", mock.Anything, []uuid.UUID{projectID}).Return([]model.Project{}, nil)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "project version mismatch",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(nil)
				projects.On("FindByIDs", mock.Anything, []uuid.UUID{projectID}).
					Return([]model.Project{{ID: projectID, OrgID: orgID, Version: model.ProjectVersionV1}}, nil)
			},
			wantErr: model.ErrBadRequest,
		},
		{
			name: "inviter not provisioned",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(nil)
				projects.On("FindByIDs", mock.Anything, []uuid.UUID{projectID}).
					Return([]model.Project{{ID: projectID, OrgID: orgID, Version: model.ProjectVersionV2}}, nil)
				keys.On("FindLatest", mock.Anything, inviterActor.ID, projectID).Return(nil, nil)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "invitee has no public key",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(nil)
				projects.On("FindByIDs", mock.Anything, []uuid.UUID{projectID}).
					Return([]model.Project{{ID: projectID, OrgID: orgID, Version: model.ProjectVersionV2}}, nil)
				keys.On("FindLatest", mock.Anything, inviterActor.ID, projectID).Return(inviterKey, nil)
				users.On("FindEncryptionKey", mock.Anything, memberID).Return(nil, nil)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "permission denied",
			mockSetup: func(projects *MockProjectStore, keys *MockProjectKeyStore, users *MockUserStore, permission *MockProjectPermission) {
				permission.On("CheckProjectPermission", mock.Anything, inviterActor, projectID).Return(model.ErrForbidden)
			},
			wantErr: model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &MockProjectStore{}
			keys := &MockProjectKeyStore{}
			users := &MockUserStore{}
			permission := &MockProjectPermission{}
			tt.mockSetup(projects, keys, users, permission)

			service := NewProjectKey(fakeTransactor{}, keys, projects, users, permission, logger.New(0))

			err := service.AddMembersToProject(context.Background(), AddMembersParams{
				ProjectID:         projectID,
				Inviter:           inviterActor,
				InviterPrivateKey: inviter.PrivateKey,
				MemberUserIDs:     []uuid.UUID{memberID},
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				keys.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				projects.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}

			projects.AssertExpectations(t)
			keys.AssertExpectations(t)
		})
	}
}

func TestProjectKeyService_GetLatestProjectKey(t *testing.T) {
	projectID := uuid.New()
	actor := model.Actor{ID: uuid.New(), Type: model.ActorTypeUser}

	t.Run("returns latest key", func(t *testing.T) {
		want := &model.ProjectKeyWithSender{
			ProjectKey:      model.ProjectKey{ID: uuid.New(), ProjectID: projectID, ReceiverID: actor.ID},
			SenderPublicKey: "sender-public-key",
		}

		permission := &MockProjectPermission{}
		permission.On("CheckProjectPermission", mock.Anything, actor, projectID).Return(nil)
		keys := &MockProjectKeyStore{}
		keys.On("FindLatest", mock.Anything, actor.ID, projectID).Return(want, nil)

		service := NewProjectKey(fakeTransactor{}, keys, &MockProjectStore{}, &MockUserStore{}, permission, logger.New(0))

		got, err := service.GetLatestProjectKey(context.Background(), actor, projectID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("nil when not provisioned", func(t *testing.T) {
		permission := &MockProjectPermission{}
		permission.On("CheckProjectPermission", mock.Anything, actor, projectID).Return(nil)
		keys := &MockProjectKeyStore{}
		keys.On("FindLatest", mock.Anything, actor.ID, projectID).Return(nil, nil)

		service := NewProjectKey(fakeTransactor{}, keys, &MockProjectStore{}, &MockUserStore{}, permission, logger.New(0))

		got, err := service.GetLatestProjectKey(context.Background(), actor, projectID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store error", func(t *testing.T) {
		permission := &MockProjectPermission{}
		permission.On("CheckProjectPermission", mock.Anything, actor, projectID).Return(nil)
		keys := &MockProjectKeyStore{}
		keys.On("FindLatest", mock.Anything, actor.ID, projectID).Return(nil, errors.New("database error"))

		service := NewProjectKey(fakeTransactor{}, keys, &MockProjectStore{}, &MockUserStore{}, permission, logger.New(0))

		_, err := service.GetLatestProjectKey(context.Background(), actor, projectID)
		assert.Error(t, err)
	})
}
