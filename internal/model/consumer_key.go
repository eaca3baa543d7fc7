package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConsumerKeyStore defines persistence operations for wrapped org-level keys.
// The table is append-mostly: re-shares insert new records and old ones stay
// decryptable, so "current" is always the newest row per (receiver, org).
type ConsumerKeyStore interface {
	Create(ctx context.Context, key ConsumerKey) (ConsumerKey, error)
	// FindLatest returns the newest wrapped key for the receiver in the
	// organization, joined with the sender's public key, or nil when the
	// receiver has not been provisioned yet.
	FindLatest(ctx context.Context, receiverID, orgID uuid.UUID) (*ConsumerKeyWithSender, error)
}

// ConsumerKey is a wrapped copy of an organization's symmetric key for one
// receiver, sealed with the sender's private key and the receiver's public
// key. SenderID is nil once the sender identity is deleted.
type ConsumerKey struct {
	ID           uuid.UUID
	OrgID        uuid.UUID
	ReceiverID   uuid.UUID
	SenderID     *uuid.UUID
	EncryptedKey string
	Nonce        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ConsumerKeyWithSender is a ConsumerKey joined with the sender's public key.
type ConsumerKeyWithSender struct {
	ConsumerKey
	SenderPublicKey string
}
