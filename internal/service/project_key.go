package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/crypto"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

// ProjectKeyReceiver describes one invitee a project key is assigned to.
type ProjectKeyReceiver struct {
	UserID    uuid.UUID
	ProjectID uuid.UUID
	PublicKey string
}

// WrappedProjectKey is the result of re-sealing the project key for one
// invitee. Persistence is the caller's responsibility.
type WrappedProjectKey struct {
	UserID       uuid.UUID
	ProjectID    uuid.UUID
	EncryptedKey string
	Nonce        string
}

// CreateProjectKey generates a fresh random symmetric key for a project and
// seals it with the creator's keypair.
func CreateProjectKey(publicKey, privateKey string) (encryptedKey, nonce string, err error) {
	plainKey, err := crypto.GenerateSecretKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate project key: %w", err)
	}

	encryptedKey, nonce, err = crypto.EncryptAsymmetric(plainKey, publicKey, privateKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to seal project key: %w", err)
	}

	return encryptedKey, nonce, nil
}

// AssignProjectKeysToMembers unwraps the inviter's key record once and
// re-seals the recovered key per invitee. Pure transform, like its org-level
// counterpart.
func AssignProjectKeysToMembers(decryptKey model.ProjectKeyWithSender, inviterPrivateKey string, members []ProjectKeyReceiver) ([]WrappedProjectKey, error) {
	plainKey, err := crypto.DecryptAsymmetric(decryptKey.EncryptedKey, decryptKey.Nonce, decryptKey.SenderPublicKey, inviterPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap project key: %w", err)
	}

	wrapped := make([]WrappedProjectKey, 0, len(members))
	for _, member := range members {
		encryptedKey, nonce, err := crypto.EncryptAsymmetric(plainKey, member.PublicKey, inviterPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to seal project key for user %s: %w", member.UserID, err)
		}

		wrapped = append(wrapped, WrappedProjectKey{
			UserID:       member.UserID,
			ProjectID:    member.ProjectID,
			EncryptedKey: encryptedKey,
			Nonce:        nonce,
		})
	}

	return wrapped, nil
}

// VerifyProjectVersions reports whether every project in the batch carries
// the expected crypto version. Mixed-version key operations silently produce
// undecryptable ciphertext, so callers must guard with this before fan-out.
func VerifyProjectVersions(projects []model.Project, expected model.ProjectVersion) bool {
	for _, project := range projects {
		if project.Version != expected {
			return false
		}
	}

	return true
}

// ProjectKey distributes per-project symmetric keys. Unlike the org level
// there is no ghost user: the inviting member's own keypair roots the chain.
type ProjectKey struct {
	tx           model.Transactor
	keyStore     model.ProjectKeyStore
	projectStore model.ProjectStore
	userStore    model.UserStore
	permission   model.ProjectPermissionChecker
	logger       *logger.Logger
}

func NewProjectKey(
	tx model.Transactor,
	keyStore model.ProjectKeyStore,
	projectStore model.ProjectStore,
	userStore model.UserStore,
	permission model.ProjectPermissionChecker,
	logger *logger.Logger,
) *ProjectKey {
	return &ProjectKey{
		tx:           tx,
		keyStore:     keyStore,
		projectStore: projectStore,
		userStore:    userStore,
		permission:   permission,
		logger:       logger,
	}
}

// AddMembersParams are the inputs of a member invitation. The inviter's
// private key arrives decrypted from the client and is never persisted.
type AddMembersParams struct {
	ProjectID         uuid.UUID
	Inviter           model.Actor
	InviterPrivateKey string
	MemberUserIDs     []uuid.UUID
}

// AddMembersToProject grants new members access to the project key: version
// guard, unwrap the inviter's latest key, re-seal per invitee, then persist
// memberships and key records in one transaction.
func (s *ProjectKey) AddMembersToProject(ctx context.Context, params AddMembersParams) error {
	if err := s.permission.CheckProjectPermission(ctx, params.Inviter, params.ProjectID); err != nil {
		return err
	}

	projects, err := s.projectStore.FindByIDs(ctx, []uuid.UUID{params.ProjectID})
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if len(projects) == 0 {
		return fmt.Errorf("project %s: %w", params.ProjectID, model.ErrNotFound)
	}
	if !VerifyProjectVersions(projects, model.ProjectVersionV2) {
		return fmt.Errorf("%w: project version mismatch", model.ErrBadRequest)
	}

	inviterKey, err := s.keyStore.FindLatest(ctx, params.Inviter.ID, params.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to find inviter project key: %w", err)
	}
	if inviterKey == nil {
		return fmt.Errorf("project key for user %s: %w", params.Inviter.ID, model.ErrNotFound)
	}

	receivers := make([]ProjectKeyReceiver, 0, len(params.MemberUserIDs))
	for _, userID := range params.MemberUserIDs {
		encKey, err := s.userStore.FindEncryptionKey(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to find public key of user %s: %w", userID, err)
		}
		if encKey == nil {
			return fmt.Errorf("public key of user %s: %w", userID, model.ErrNotFound)
		}
		receivers = append(receivers, ProjectKeyReceiver{
			UserID:    userID,
			ProjectID: params.ProjectID,
			PublicKey: encKey.PublicKey,
		})
	}

	wrapped, err := AssignProjectKeysToMembers(*inviterKey, params.InviterPrivateKey, receivers)
	if err != nil {
		return err
	}

	inviterID := params.Inviter.ID
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, w := range wrapped {
			if _, err := s.projectStore.AddMember(ctx, model.ProjectMembership{
				ID:        uuid.New(),
				ProjectID: w.ProjectID,
				UserID:    w.UserID,
			}); err != nil {
				return fmt.Errorf("failed to add project member %s: %w", w.UserID, err)
			}

			if _, err := s.keyStore.Create(ctx, model.ProjectKey{
				ID:           uuid.New(),
				ProjectID:    w.ProjectID,
				ReceiverID:   w.UserID,
				SenderID:     &inviterID,
				EncryptedKey: w.EncryptedKey,
				Nonce:        w.Nonce,
			}); err != nil {
				return fmt.Errorf("failed to save project key for user %s: %w", w.UserID, err)
			}
		}

		s.logger.Info("assigned project keys", "project_id", params.ProjectID, "members", len(wrapped))

		return nil
	})
}

// GetLatestProjectKey returns the actor's newest wrapped project key, or nil
// when the actor has not been provisioned for the project.
func (s *ProjectKey) GetLatestProjectKey(ctx context.Context, actor model.Actor, projectID uuid.UUID) (*model.ProjectKeyWithSender, error) {
	if err := s.permission.CheckProjectPermission(ctx, actor, projectID); err != nil {
		return nil, err
	}

	latestKey, err := s.keyStore.FindLatest(ctx, actor.ID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest project key: %w", err)
	}

	return latestKey, nil
}
