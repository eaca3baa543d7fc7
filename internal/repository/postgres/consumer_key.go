package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.ConsumerKeyStore = (*ConsumerKeyRepository)(nil)

type ConsumerKeyRepository struct {
	db *Connection
}

func NewConsumerKeyRepository(db *Connection) *ConsumerKeyRepository {
	return &ConsumerKeyRepository{
		db: db,
	}
}

func (r *ConsumerKeyRepository) Create(ctx context.Context, key model.ConsumerKey) (model.ConsumerKey, error) {
	query := `INSERT INTO consumer_keys (id, encrypted_key, nonce, receiver_id, sender_id, org_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, encrypted_key, nonce, receiver_id, sender_id, org_id, created_at, updated_at`

	var savedKey model.ConsumerKey
	err := r.db.querier(ctx).QueryRow(ctx, query,
		key.ID, key.EncryptedKey, key.Nonce, key.ReceiverID, key.SenderID, key.OrgID,
	).Scan(
		&savedKey.ID, &savedKey.EncryptedKey, &savedKey.Nonce,
		&savedKey.ReceiverID, &savedKey.SenderID, &savedKey.OrgID,
		&savedKey.CreatedAt, &savedKey.UpdatedAt,
	)
	if err != nil {
		return model.ConsumerKey{}, fmt.Errorf("failed to create consumer key: %w", err)
	}

	return savedKey, nil
}

func (r *ConsumerKeyRepository) FindLatest(ctx context.Context, receiverID, orgID uuid.UUID) (*model.ConsumerKeyWithSender, error) {
	// newest record wins; superseded rows stay decryptable and are ignored
	query := `
		SELECT k.id, k.encrypted_key, k.nonce, k.receiver_id, k.sender_id, k.org_id,
		       k.created_at, k.updated_at, e.public_key
		FROM consumer_keys k
		JOIN users u ON u.id = k.sender_id
		JOIN user_encryption_keys e ON e.user_id = u.id
		WHERE k.receiver_id = $1 AND k.org_id = $2
		ORDER BY k.created_at DESC
		LIMIT 1`

	var key model.ConsumerKeyWithSender
	err := r.db.querier(ctx).QueryRow(ctx, query, receiverID, orgID).Scan(
		&key.ID, &key.EncryptedKey, &key.Nonce,
		&key.ReceiverID, &key.SenderID, &key.OrgID,
		&key.CreatedAt, &key.UpdatedAt, &key.SenderPublicKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest consumer key: %w", err)
	}

	return &key, nil
}
