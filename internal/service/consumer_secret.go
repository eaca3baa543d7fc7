package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyfold/keyfold-server/internal/crypto"
	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

// ConsumerSecret stores personal per-field-encrypted secrets. The server
// never sees plaintext: it persists the opaque triples the client produced
// with its unwrapped consumer key.
type ConsumerSecret struct {
	secretStore model.ConsumerSecretStore
	permission  model.OrgPermissionChecker
	logger      *logger.Logger
}

func NewConsumerSecret(
	secretStore model.ConsumerSecretStore,
	permission model.OrgPermissionChecker,
	logger *logger.Logger,
) *ConsumerSecret {
	return &ConsumerSecret{
		secretStore: secretStore,
		permission:  permission,
		logger:      logger,
	}
}

// CreateConsumerSecretParams carries the already-encrypted payload of a new
// personal secret.
type CreateConsumerSecretParams struct {
	Actor                 model.Actor
	OrgID                 uuid.UUID
	Type                  model.ConsumerSecretType
	Fields                model.ConsumerSecretFields
	SkipMultilineEncoding bool
	Metadata              map[string]string
}

// requireUser rejects non-user actors before any write happens. Personal
// secrets are a user-centric feature, not seedable by automation identities.
func requireUser(actor model.Actor) error {
	if actor.Type != model.ActorTypeUser {
		return fmt.Errorf("%w: must be user to access personal secrets", model.ErrBadRequest)
	}
	return nil
}

func (s *ConsumerSecret) CreateConsumerSecret(ctx context.Context, params CreateConsumerSecretParams) (model.ConsumerSecret, error) {
	if err := s.permission.CheckOrgPermission(ctx, params.Actor, params.OrgID); err != nil {
		return model.ConsumerSecret{}, err
	}

	if err := requireUser(params.Actor); err != nil {
		return model.ConsumerSecret{}, err
	}

	if !params.Type.Valid() {
		return model.ConsumerSecret{}, fmt.Errorf("%w: unknown secret type %q", model.ErrBadRequest, params.Type)
	}

	secret, err := s.secretStore.Create(ctx, model.ConsumerSecret{
		ID:                    uuid.New(),
		Type:                  params.Type,
		UserID:                params.Actor.ID,
		OrgID:                 params.OrgID,
		Fields:                params.Fields,
		SkipMultilineEncoding: params.SkipMultilineEncoding,
		Algorithm:             crypto.AlgorithmAES256GCM,
		KeyEncoding:           crypto.KeyEncodingUTF8,
		Metadata:              params.Metadata,
	})
	if err != nil {
		return model.ConsumerSecret{}, fmt.Errorf("failed to create consumer secret: %w", err)
	}

	return secret, nil
}

// GetConsumerSecrets lists the actor's personal secrets in the organization.
// The scope is always (user, org); another user's secrets in the same org
// are structurally unreachable.
func (s *ConsumerSecret) GetConsumerSecrets(ctx context.Context, actor model.Actor, orgID uuid.UUID) ([]model.ConsumerSecret, error) {
	if err := s.permission.CheckOrgPermission(ctx, actor, orgID); err != nil {
		return nil, err
	}

	if err := requireUser(actor); err != nil {
		return nil, err
	}

	secrets, err := s.secretStore.FindByUserOrg(ctx, actor.ID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer secrets: %w", err)
	}

	return secrets, nil
}

// UpdateConsumerSecret replaces all field triples of one secret. Partial
// field patches are not supported: the symmetric key may have changed and
// each triple must stay internally consistent.
func (s *ConsumerSecret) UpdateConsumerSecret(ctx context.Context, actor model.Actor, orgID, secretID uuid.UUID, fields model.ConsumerSecretFields, skipMultilineEncoding bool) (model.ConsumerSecret, error) {
	if err := s.permission.CheckOrgPermission(ctx, actor, orgID); err != nil {
		return model.ConsumerSecret{}, err
	}

	if err := requireUser(actor); err != nil {
		return model.ConsumerSecret{}, err
	}

	secret, err := s.secretStore.Update(ctx, secretID, actor.ID, orgID, fields, skipMultilineEncoding)
	if err != nil {
		return model.ConsumerSecret{}, fmt.Errorf("failed to update consumer secret: %w", err)
	}

	return secret, nil
}

func (s *ConsumerSecret) DeleteConsumerSecret(ctx context.Context, actor model.Actor, orgID, secretID uuid.UUID) (model.ConsumerSecret, error) {
	if err := s.permission.CheckOrgPermission(ctx, actor, orgID); err != nil {
		return model.ConsumerSecret{}, err
	}

	if err := requireUser(actor); err != nil {
		return model.ConsumerSecret{}, err
	}

	secret, err := s.secretStore.Delete(ctx, secretID, actor.ID, orgID)
	if err != nil {
		return model.ConsumerSecret{}, fmt.Errorf("failed to delete consumer secret: %w", err)
	}

	return secret, nil
}
