package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConsumerSecretType enumerates the kinds of personal secrets.
type ConsumerSecretType string

const (
	ConsumerSecretTypeLogin      ConsumerSecretType = "login"
	ConsumerSecretTypeCreditCard ConsumerSecretType = "credit-card"
	ConsumerSecretTypeNote       ConsumerSecretType = "note"
)

// Valid reports whether t is a known secret type.
func (t ConsumerSecretType) Valid() bool {
	switch t {
	case ConsumerSecretTypeLogin, ConsumerSecretTypeCreditCard, ConsumerSecretTypeNote:
		return true
	}
	return false
}

// EncryptedField is one independently encrypted value: ciphertext, IV and
// auth tag form an atomic unit that must never be mixed with another field's.
type EncryptedField struct {
	Ciphertext string
	IV         string
	Tag        string
}

// ConsumerSecretFields are the encrypted columns of a consumer secret. The
// schema is fixed-width: types that use fewer than four fields still carry
// triples for the unused ones (encrypting the empty string).
type ConsumerSecretFields struct {
	SecretName EncryptedField
	FieldOne   EncryptedField
	FieldTwo   EncryptedField
	FieldThree EncryptedField
	FieldFour  EncryptedField
}

// ConsumerSecret is a personal secret owned by one user within one
// organization. The server treats all field content as opaque.
type ConsumerSecret struct {
	ID     uuid.UUID
	Type   ConsumerSecretType
	UserID uuid.UUID
	OrgID  uuid.UUID

	Fields ConsumerSecretFields

	// SkipMultilineEncoding flags that multi-line values bypass the
	// client-side line-escaping transform. Storage hint only.
	SkipMultilineEncoding bool
	// Algorithm and KeyEncoding are declared per record so future schemes
	// can migrate without a flag day.
	Algorithm   string
	KeyEncoding string
	Metadata    map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConsumerSecretStore defines persistence operations for consumer secrets.
// Every predicate includes both user id and org id; org id alone is never a
// sufficient scope.
type ConsumerSecretStore interface {
	Create(ctx context.Context, secret ConsumerSecret) (ConsumerSecret, error)
	FindByUserOrg(ctx context.Context, userID, orgID uuid.UUID) ([]ConsumerSecret, error)
	// Update replaces all field triples. Returns ErrNotFound when no row
	// matches (id, userID, orgID).
	Update(ctx context.Context, id, userID, orgID uuid.UUID, fields ConsumerSecretFields, skipMultilineEncoding bool) (ConsumerSecret, error)
	// Delete removes the secret scoped to (id, userID, orgID). Returns
	// ErrNotFound when no row matches.
	Delete(ctx context.Context, id, userID, orgID uuid.UUID) (ConsumerSecret, error)
}
