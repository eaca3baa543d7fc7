package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users and their encryption keys.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	// FindEncryptionKey returns nil when the user has no published keypair.
	FindEncryptionKey(ctx context.Context, userID uuid.UUID) (*UserEncryptionKey, error)
	CreateEncryptionKey(ctx context.Context, key UserEncryptionKey) (UserEncryptionKey, error)
	// FindGhostUser returns nil when the organization has no ghost user yet.
	FindGhostUser(ctx context.Context, orgID uuid.UUID) (*User, error)
}

// User represents a stored user. Ghost users are system-owned identities
// acting as the root key holder of one organization; GhostOrgID is set and
// uniquely constrained for them and nil for everyone else.
type User struct {
	ID         uuid.UUID
	Email      string
	IsGhost    bool
	GhostOrgID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserEncryptionKey holds a user's published public key. For ghost users the
// private key is stored alongside it as an AES-256-GCM triple sealed under
// the server root encryption key; for human users those columns stay empty
// because the private key never leaves the client.
type UserEncryptionKey struct {
	UserID              uuid.UUID
	PublicKey           string
	EncryptedPrivateKey string
	PrivateKeyIV        string
	PrivateKeyTag       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// GhostUser bundles a ghost user with its keypair. PrivateKey is plaintext
// and must only ever live transiently in memory during key distribution.
type GhostUser struct {
	User       User
	PublicKey  string
	PrivateKey string
}
