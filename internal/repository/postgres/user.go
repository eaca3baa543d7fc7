package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	query := `SELECT id, email, is_ghost, ghost_org_id, created_at, updated_at
			  FROM users WHERE id = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.IsGhost, &user.GhostOrgID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, is_ghost, ghost_org_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, email, is_ghost, ghost_org_id, created_at, updated_at`

	var savedUser model.User
	err := r.db.querier(ctx).QueryRow(ctx, query,
		user.ID, user.Email, user.IsGhost, user.GhostOrgID,
	).Scan(
		&savedUser.ID, &savedUser.Email, &savedUser.IsGhost, &savedUser.GhostOrgID,
		&savedUser.CreatedAt, &savedUser.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) FindEncryptionKey(ctx context.Context, userID uuid.UUID) (*model.UserEncryptionKey, error) {
	var key model.UserEncryptionKey
	query := `SELECT user_id, public_key, encrypted_private_key, private_key_iv, private_key_tag, created_at, updated_at
			  FROM user_encryption_keys WHERE user_id = $1`

	err := r.db.querier(ctx).QueryRow(ctx, query, userID).Scan(
		&key.UserID, &key.PublicKey, &key.EncryptedPrivateKey, &key.PrivateKeyIV, &key.PrivateKeyTag,
		&key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user encryption key: %w", err)
	}

	return &key, nil
}

func (r *UserRepository) CreateEncryptionKey(ctx context.Context, key model.UserEncryptionKey) (model.UserEncryptionKey, error) {
	query := `INSERT INTO user_encryption_keys (user_id, public_key, encrypted_private_key, private_key_iv, private_key_tag)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING user_id, public_key, encrypted_private_key, private_key_iv, private_key_tag, created_at, updated_at`

	var savedKey model.UserEncryptionKey
	err := r.db.querier(ctx).QueryRow(ctx, query,
		key.UserID, key.PublicKey, key.EncryptedPrivateKey, key.PrivateKeyIV, key.PrivateKeyTag,
	).Scan(
		&savedKey.UserID, &savedKey.PublicKey, &savedKey.EncryptedPrivateKey,
		&savedKey.PrivateKeyIV, &savedKey.PrivateKeyTag, &savedKey.CreatedAt, &savedKey.UpdatedAt,
	)
	if err != nil {
		return model.UserEncryptionKey{}, fmt.Errorf("failed to create user encryption key: %w", err)
	}

	return savedKey, nil
}

func (r *UserRepository) FindGhostUser(ctx context.Context, orgID uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT id, email, is_ghost, ghost_org_id, created_at, updated_at
			  FROM users WHERE ghost_org_id = $1 AND is_ghost`

	err := r.db.querier(ctx).QueryRow(ctx, query, orgID).Scan(
		&user.ID, &user.Email, &user.IsGhost, &user.GhostOrgID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ghost user: %w", err)
	}

	return &user, nil
}
