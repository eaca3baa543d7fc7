package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/crypto"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

// Org manages organization-level identities, in particular the ghost user
// acting as the root key holder of each organization.
type Org struct {
	userStore model.UserStore
	// rootKey seals ghost private keys at rest so repeated bootstraps can
	// re-derive them. Human users never have a server-side private key.
	rootKey []byte
	logger  *logger.Logger
}

func NewOrg(userStore model.UserStore, rootKey []byte, logger *logger.Logger) *Org {
	return &Org{
		userStore: userStore,
		rootKey:   rootKey,
		logger:    logger,
	}
}

func ghostUserEmail(orgID uuid.UUID) string {
	return fmt.Sprintf("sys-ghost-%s@keyfold.internal", orgID)
}

// EnsureGhostUser returns the organization's ghost user with its keypair,
// creating it on first use. The find-before-create check plus the unique
// constraint on ghost_org_id keep this idempotent under retries; callers
// wanting atomicity with follow-up writes run it inside a transaction.
func (s *Org) EnsureGhostUser(ctx context.Context, orgID uuid.UUID) (model.GhostUser, error) {
	existing, err := s.userStore.FindGhostUser(ctx, orgID)
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to find ghost user: %w", err)
	}

	if existing != nil {
		return s.loadGhostUser(ctx, *existing)
	}

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to generate ghost keypair: %w", err)
	}

	sealedPrivateKey, err := crypto.EncryptSymmetric(keyPair.PrivateKey, s.rootKey)
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to seal ghost private key: %w", err)
	}

	user, err := s.userStore.Create(ctx, model.User{
		ID:         uuid.New(),
		Email:      ghostUserEmail(orgID),
		IsGhost:    true,
		GhostOrgID: &orgID,
	})
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to create ghost user: %w", err)
	}

	_, err = s.userStore.CreateEncryptionKey(ctx, model.UserEncryptionKey{
		UserID:              user.ID,
		PublicKey:           keyPair.PublicKey,
		EncryptedPrivateKey: sealedPrivateKey.Ciphertext,
		PrivateKeyIV:        sealedPrivateKey.IV,
		PrivateKeyTag:       sealedPrivateKey.Tag,
	})
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to create ghost encryption key: %w", err)
	}

	s.logger.Info("created ghost user", "org_id", orgID, "user_id", user.ID)

	return model.GhostUser{
		User:       user,
		PublicKey:  keyPair.PublicKey,
		PrivateKey: keyPair.PrivateKey,
	}, nil
}

func (s *Org) loadGhostUser(ctx context.Context, user model.User) (model.GhostUser, error) {
	encKey, err := s.userStore.FindEncryptionKey(ctx, user.ID)
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to load ghost encryption key: %w", err)
	}
	if encKey == nil {
		return model.GhostUser{}, fmt.Errorf("ghost user %s has no encryption key: %w", user.ID, model.ErrNotFound)
	}

	privateKey, err := crypto.DecryptSymmetric(crypto.SymmetricCipher{
		Ciphertext: encKey.EncryptedPrivateKey,
		IV:         encKey.PrivateKeyIV,
		Tag:        encKey.PrivateKeyTag,
	}, s.rootKey)
	if err != nil {
		return model.GhostUser{}, fmt.Errorf("failed to unseal ghost private key: %w", err)
	}

	return model.GhostUser{
		User:       user,
		PublicKey:  encKey.PublicKey,
		PrivateKey: privateKey,
	}, nil
}
