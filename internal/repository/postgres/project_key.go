package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.ProjectKeyStore = (*ProjectKeyRepository)(nil)

type ProjectKeyRepository struct {
	db *Connection
}

func NewProjectKeyRepository(db *Connection) *ProjectKeyRepository {
	return &ProjectKeyRepository{
		db: db,
	}
}

func (r *ProjectKeyRepository) Create(ctx context.Context, key model.ProjectKey) (model.ProjectKey, error) {
	query := `INSERT INTO project_keys (id, encrypted_key, nonce, receiver_id, sender_id, project_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, encrypted_key, nonce, receiver_id, sender_id, project_id, created_at, updated_at`

	var savedKey model.ProjectKey
	err := r.db.querier(ctx).QueryRow(ctx, query,
		key.ID, key.EncryptedKey, key.Nonce, key.ReceiverID, key.SenderID, key.ProjectID,
	).Scan(
		&savedKey.ID, &savedKey.EncryptedKey, &savedKey.Nonce,
		&savedKey.ReceiverID, &savedKey.SenderID, &savedKey.ProjectID,
		&savedKey.CreatedAt, &savedKey.UpdatedAt,
	)
	if err != nil {
		return model.ProjectKey{}, fmt.Errorf("failed to create project key: %w", err)
	}

	return savedKey, nil
}

func (r *ProjectKeyRepository) FindLatest(ctx context.Context, receiverID, projectID uuid.UUID) (*model.ProjectKeyWithSender, error) {
	query := `
		SELECT k.id, k.encrypted_key, k.nonce, k.receiver_id, k.sender_id, k.project_id,
		       k.created_at, k.updated_at, e.public_key
		FROM project_keys k
		JOIN users u ON u.id = k.sender_id
		JOIN user_encryption_keys e ON e.user_id = u.id
		WHERE k.receiver_id = $1 AND k.project_id = $2
		ORDER BY k.created_at DESC
		LIMIT 1`

	var key model.ProjectKeyWithSender
	err := r.db.querier(ctx).QueryRow(ctx, query, receiverID, projectID).Scan(
		&key.ID, &key.EncryptedKey, &key.Nonce,
		&key.ReceiverID, &key.SenderID, &key.ProjectID,
		&key.CreatedAt, &key.UpdatedAt, &key.SenderPublicKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest project key: %w", err)
	}

	return &key, nil
}
