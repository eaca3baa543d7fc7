package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	db := &Connection{}

	assert.Equal(t, db, NewUserRepository(db).db)
	assert.Equal(t, db, NewOrgRepository(db).db)
	assert.Equal(t, db, NewProjectRepository(db).db)
	assert.Equal(t, db, NewConsumerKeyRepository(db).db)
	assert.Equal(t, db, NewProjectKeyRepository(db).db)
	assert.Equal(t, db, NewConsumerSecretRepository(db).db)
}

func TestConnection_QuerierWithoutTransaction(t *testing.T) {
	db := &Connection{}

	// with no transaction on the context the pool itself answers
	assert.Equal(t, db.Pool, db.querier(t.Context()))
}
