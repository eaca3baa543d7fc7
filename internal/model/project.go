package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProjectVersion tags the crypto scheme a project's key material was written
// with. Key operations must never mix versions.
type ProjectVersion int

const (
	ProjectVersionV1 ProjectVersion = 1
	ProjectVersionV2 ProjectVersion = 2
	ProjectVersionV3 ProjectVersion = 3
)

// ProjectStore defines persistence operations for projects.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Project, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Project, error)
	Create(ctx context.Context, project Project) (Project, error)
	IsMember(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, membership ProjectMembership) (ProjectMembership, error)
}

// Project is a workspace inside an organization holding shared secrets.
type Project struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Name      string
	Version   ProjectVersion
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMembership links a user to a project.
type ProjectMembership struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectKeyStore defines persistence operations for wrapped project keys.
type ProjectKeyStore interface {
	Create(ctx context.Context, key ProjectKey) (ProjectKey, error)
	// FindLatest returns the newest wrapped key for the receiver in the
	// project, joined with the sender's public key, or nil when none exists.
	FindLatest(ctx context.Context, receiverID, projectID uuid.UUID) (*ProjectKeyWithSender, error)
}

// ProjectKey is a wrapped copy of a project's symmetric key for one receiver.
// The record survives sender deletion with SenderID set to nil; decryption
// only needs the sender's public key, which is carried on reads.
type ProjectKey struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	ReceiverID   uuid.UUID
	SenderID     *uuid.UUID
	EncryptedKey string
	Nonce        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectKeyWithSender is a ProjectKey joined with the sender's public key,
// which the receiver needs to open the wrap.
type ProjectKeyWithSender struct {
	ProjectKey
	SenderPublicKey string
}
