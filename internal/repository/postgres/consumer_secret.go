package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/keyfold/keyfold-server/internal/model"
)

var _ model.ConsumerSecretStore = (*ConsumerSecretRepository)(nil)

type ConsumerSecretRepository struct {
	db *Connection
}

func NewConsumerSecretRepository(db *Connection) *ConsumerSecretRepository {
	return &ConsumerSecretRepository{
		db: db,
	}
}

const consumerSecretColumns = `id, type,
	secret_name_ciphertext, secret_name_iv, secret_name_tag,
	secret_field_one_ciphertext, secret_field_one_iv, secret_field_one_tag,
	secret_field_two_ciphertext, secret_field_two_iv, secret_field_two_tag,
	secret_field_three_ciphertext, secret_field_three_iv, secret_field_three_tag,
	secret_field_four_ciphertext, secret_field_four_iv, secret_field_four_tag,
	skip_multiline_encoding, algorithm, key_encoding, metadata, user_id, org_id,
	created_at, updated_at`

func scanConsumerSecret(row pgx.Row) (model.ConsumerSecret, error) {
	var s model.ConsumerSecret
	err := row.Scan(
		&s.ID, &s.Type,
		&s.Fields.SecretName.Ciphertext, &s.Fields.SecretName.IV, &s.Fields.SecretName.Tag,
		&s.Fields.FieldOne.Ciphertext, &s.Fields.FieldOne.IV, &s.Fields.FieldOne.Tag,
		&s.Fields.FieldTwo.Ciphertext, &s.Fields.FieldTwo.IV, &s.Fields.FieldTwo.Tag,
		&s.Fields.FieldThree.Ciphertext, &s.Fields.FieldThree.IV, &s.Fields.FieldThree.Tag,
		&s.Fields.FieldFour.Ciphertext, &s.Fields.FieldFour.IV, &s.Fields.FieldFour.Tag,
		&s.SkipMultilineEncoding, &s.Algorithm, &s.KeyEncoding, &s.Metadata, &s.UserID, &s.OrgID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *ConsumerSecretRepository) Create(ctx context.Context, secret model.ConsumerSecret) (model.ConsumerSecret, error) {
	query := `INSERT INTO consumer_secrets (id, type,
			secret_name_ciphertext, secret_name_iv, secret_name_tag,
			secret_field_one_ciphertext, secret_field_one_iv, secret_field_one_tag,
			secret_field_two_ciphertext, secret_field_two_iv, secret_field_two_tag,
			secret_field_three_ciphertext, secret_field_three_iv, secret_field_three_tag,
			secret_field_four_ciphertext, secret_field_four_iv, secret_field_four_tag,
			skip_multiline_encoding, algorithm, key_encoding, metadata, user_id, org_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING ` + consumerSecretColumns

	f := secret.Fields
	row := r.db.querier(ctx).QueryRow(ctx, query,
		secret.ID, string(secret.Type),
		f.SecretName.Ciphertext, f.SecretName.IV, f.SecretName.Tag,
		f.FieldOne.Ciphertext, f.FieldOne.IV, f.FieldOne.Tag,
		f.FieldTwo.Ciphertext, f.FieldTwo.IV, f.FieldTwo.Tag,
		f.FieldThree.Ciphertext, f.FieldThree.IV, f.FieldThree.Tag,
		f.FieldFour.Ciphertext, f.FieldFour.IV, f.FieldFour.Tag,
		secret.SkipMultilineEncoding, secret.Algorithm, secret.KeyEncoding, secret.Metadata,
		secret.UserID, secret.OrgID,
	)

	savedSecret, err := scanConsumerSecret(row)
	if err != nil {
		return model.ConsumerSecret{}, fmt.Errorf("failed to create consumer secret: %w", err)
	}

	return savedSecret, nil
}

func (r *ConsumerSecretRepository) FindByUserOrg(ctx context.Context, userID, orgID uuid.UUID) ([]model.ConsumerSecret, error) {
	// predicate always carries both scopes, org id alone is never enough
	query := `SELECT ` + consumerSecretColumns + `
		FROM consumer_secrets
		WHERE user_id = $1 AND org_id = $2
		ORDER BY created_at DESC`

	rows, err := r.db.querier(ctx).Query(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to find consumer secrets: %w", err)
	}
	defer rows.Close()

	var secrets []model.ConsumerSecret
	for rows.Next() {
		secret, err := scanConsumerSecret(rows)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, secret)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return secrets, nil
}

func (r *ConsumerSecretRepository) Update(ctx context.Context, id, userID, orgID uuid.UUID, fields model.ConsumerSecretFields, skipMultilineEncoding bool) (model.ConsumerSecret, error) {
	query := `UPDATE consumer_secrets SET
			secret_name_ciphertext = $4, secret_name_iv = $5, secret_name_tag = $6,
			secret_field_one_ciphertext = $7, secret_field_one_iv = $8, secret_field_one_tag = $9,
			secret_field_two_ciphertext = $10, secret_field_two_iv = $11, secret_field_two_tag = $12,
			secret_field_three_ciphertext = $13, secret_field_three_iv = $14, secret_field_three_tag = $15,
			secret_field_four_ciphertext = $16, secret_field_four_iv = $17, secret_field_four_tag = $18,
			skip_multiline_encoding = $19, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND org_id = $3
		RETURNING ` + consumerSecretColumns

	row := r.db.querier(ctx).QueryRow(ctx, query,
		id, userID, orgID,
		fields.SecretName.Ciphertext, fields.SecretName.IV, fields.SecretName.Tag,
		fields.FieldOne.Ciphertext, fields.FieldOne.IV, fields.FieldOne.Tag,
		fields.FieldTwo.Ciphertext, fields.FieldTwo.IV, fields.FieldTwo.Tag,
		fields.FieldThree.Ciphertext, fields.FieldThree.IV, fields.FieldThree.Tag,
		fields.FieldFour.Ciphertext, fields.FieldFour.IV, fields.FieldFour.Tag,
		skipMultilineEncoding,
	)

	updatedSecret, err := scanConsumerSecret(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ConsumerSecret{}, model.ErrNotFound
		}
		return model.ConsumerSecret{}, fmt.Errorf("failed to update consumer secret: %w", err)
	}

	return updatedSecret, nil
}

func (r *ConsumerSecretRepository) Delete(ctx context.Context, id, userID, orgID uuid.UUID) (model.ConsumerSecret, error) {
	query := `DELETE FROM consumer_secrets
		WHERE id = $1 AND user_id = $2 AND org_id = $3
		RETURNING ` + consumerSecretColumns

	row := r.db.querier(ctx).QueryRow(ctx, query, id, userID, orgID)

	deletedSecret, err := scanConsumerSecret(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ConsumerSecret{}, model.ErrNotFound
		}
		return model.ConsumerSecret{}, fmt.Errorf("failed to delete consumer secret: %w", err)
	}

	return deletedSecret, nil
}
