package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/crypto"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

// OrgKeyReceiver describes one member a consumer key is being shared with.
type OrgKeyReceiver struct {
	UserID    uuid.UUID
	OrgID     uuid.UUID
	PublicKey string
}

// WrappedOrgKey is the result of re-sealing the consumer key for one member.
// Persistence is the caller's responsibility.
type WrappedOrgKey struct {
	UserID       uuid.UUID
	OrgID        uuid.UUID
	EncryptedKey string
	Nonce        string
}

// CreateConsumerKey generates a fresh random symmetric key and seals it with
// the given keypair. Self-sealing (both halves from the same identity) roots
// an organization's key chain at its ghost user.
func CreateConsumerKey(publicKey, privateKey string) (encryptedKey, nonce string, err error) {
	plainKey, err := crypto.GenerateSecretKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate consumer key: %w", err)
	}

	encryptedKey, nonce, err = crypto.EncryptAsymmetric(plainKey, publicKey, privateKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to seal consumer key: %w", err)
	}

	return encryptedKey, nonce, nil
}

// AssignConsumerKeysToOrgMembers unwraps the holder's key record once and
// re-seals the recovered key for each member. Pure transform, no persistence:
// a partial failure while saving must not force re-deriving key material for
// recipients that already succeeded.
func AssignConsumerKeysToOrgMembers(decryptKey model.ConsumerKeyWithSender, holderPrivateKey string, members []OrgKeyReceiver) ([]WrappedOrgKey, error) {
	plainKey, err := crypto.DecryptAsymmetric(decryptKey.EncryptedKey, decryptKey.Nonce, decryptKey.SenderPublicKey, holderPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap consumer key: %w", err)
	}

	wrapped := make([]WrappedOrgKey, 0, len(members))
	for _, member := range members {
		encryptedKey, nonce, err := crypto.EncryptAsymmetric(plainKey, member.PublicKey, holderPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to seal consumer key for user %s: %w", member.UserID, err)
		}

		wrapped = append(wrapped, WrappedOrgKey{
			UserID:       member.UserID,
			OrgID:        member.OrgID,
			EncryptedKey: encryptedKey,
			Nonce:        nonce,
		})
	}

	return wrapped, nil
}

// ConsumerKey distributes the per-organization symmetric key as wrapped key
// records, rooted at the organization's ghost user.
type ConsumerKey struct {
	tx         model.Transactor
	keyStore   model.ConsumerKeyStore
	userStore  model.UserStore
	orgService *Org
	permission model.OrgPermissionChecker
	logger     *logger.Logger
}

func NewConsumerKey(
	tx model.Transactor,
	keyStore model.ConsumerKeyStore,
	userStore model.UserStore,
	orgService *Org,
	permission model.OrgPermissionChecker,
	logger *logger.Logger,
) *ConsumerKey {
	return &ConsumerKey{
		tx:         tx,
		keyStore:   keyStore,
		userStore:  userStore,
		orgService: orgService,
		permission: permission,
		logger:     logger,
	}
}

// BootstrapOrgKey provisions the organization's root consumer key and issues
// it to the requesting admin. The whole sequence is one transaction: a
// failure at any step leaves neither a ghost record nor a half-issued key.
func (s *ConsumerKey) BootstrapOrgKey(ctx context.Context, orgID, adminUserID uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ghost, err := s.orgService.EnsureGhostUser(ctx, orgID)
		if err != nil {
			return fmt.Errorf("failed to ensure ghost user: %w", err)
		}

		encryptedKey, nonce, err := CreateConsumerKey(ghost.PublicKey, ghost.PrivateKey)
		if err != nil {
			return err
		}

		ghostID := ghost.User.ID
		if _, err := s.keyStore.Create(ctx, model.ConsumerKey{
			ID:           uuid.New(),
			OrgID:        orgID,
			ReceiverID:   ghostID,
			SenderID:     &ghostID,
			EncryptedKey: encryptedKey,
			Nonce:        nonce,
		}); err != nil {
			return fmt.Errorf("failed to save root consumer key: %w", err)
		}

		latestKey, err := s.keyStore.FindLatest(ctx, ghostID, orgID)
		if err != nil {
			return fmt.Errorf("failed to find latest consumer key: %w", err)
		}
		if latestKey == nil {
			return fmt.Errorf("latest consumer key missing after bootstrap: %w", model.ErrNotFound)
		}

		adminEncKey, err := s.userStore.FindEncryptionKey(ctx, adminUserID)
		if err != nil {
			return fmt.Errorf("failed to find admin public key: %w", err)
		}
		if adminEncKey == nil {
			return fmt.Errorf("public key of user %s: %w", adminUserID, model.ErrNotFound)
		}

		wrapped, err := AssignConsumerKeysToOrgMembers(*latestKey, ghost.PrivateKey, []OrgKeyReceiver{
			{UserID: adminUserID, OrgID: orgID, PublicKey: adminEncKey.PublicKey},
		})
		if err != nil {
			return err
		}

		if _, err := s.keyStore.Create(ctx, model.ConsumerKey{
			ID:           uuid.New(),
			OrgID:        orgID,
			ReceiverID:   adminUserID,
			SenderID:     &ghostID,
			EncryptedKey: wrapped[0].EncryptedKey,
			Nonce:        wrapped[0].Nonce,
		}); err != nil {
			return fmt.Errorf("failed to save admin consumer key: %w", err)
		}

		s.logger.Info("bootstrapped org consumer key", "org_id", orgID, "admin_user_id", adminUserID)

		return nil
	})
}

// GetLatestConsumerKey returns the actor's newest wrapped key for the
// organization, joined with the sender public key needed to open it. A nil
// result means access has not been provisioned yet; it is not an error.
func (s *ConsumerKey) GetLatestConsumerKey(ctx context.Context, actor model.Actor, orgID uuid.UUID) (*model.ConsumerKeyWithSender, error) {
	if err := s.permission.CheckOrgPermission(ctx, actor, orgID); err != nil {
		return nil, err
	}

	latestKey, err := s.keyStore.FindLatest(ctx, actor.ID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest consumer key: %w", err)
	}

	return latestKey, nil
}

// ShareConsumerKeyWithMembers re-seals the holder's consumer key for new
// members and persists one record per member, attributed to the holder.
func (s *ConsumerKey) ShareConsumerKeyWithMembers(ctx context.Context, actor model.Actor, orgID uuid.UUID, holderPrivateKey string, memberUserIDs []uuid.UUID) error {
	if err := s.permission.CheckOrgPermission(ctx, actor, orgID); err != nil {
		return err
	}

	holderKey, err := s.keyStore.FindLatest(ctx, actor.ID, orgID)
	if err != nil {
		return fmt.Errorf("failed to find holder consumer key: %w", err)
	}
	if holderKey == nil {
		return fmt.Errorf("consumer key for user %s: %w", actor.ID, model.ErrNotFound)
	}

	receivers := make([]OrgKeyReceiver, 0, len(memberUserIDs))
	for _, userID := range memberUserIDs {
		encKey, err := s.userStore.FindEncryptionKey(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to find public key of user %s: %w", userID, err)
		}
		if encKey == nil {
			return fmt.Errorf("public key of user %s: %w", userID, model.ErrNotFound)
		}
		receivers = append(receivers, OrgKeyReceiver{UserID: userID, OrgID: orgID, PublicKey: encKey.PublicKey})
	}

	wrapped, err := AssignConsumerKeysToOrgMembers(*holderKey, holderPrivateKey, receivers)
	if err != nil {
		return err
	}

	holderID := actor.ID
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, w := range wrapped {
			if _, err := s.keyStore.Create(ctx, model.ConsumerKey{
				ID:           uuid.New(),
				OrgID:        w.OrgID,
				ReceiverID:   w.UserID,
				SenderID:     &holderID,
				EncryptedKey: w.EncryptedKey,
				Nonce:        w.Nonce,
			}); err != nil {
				return fmt.Errorf("failed to save consumer key for user %s: %w", w.UserID, err)
			}
		}
		return nil
	})
}
