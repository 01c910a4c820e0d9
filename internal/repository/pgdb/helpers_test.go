package pgdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateDetection(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: productsExternalIDIndex}
	wrapped := fmt.Errorf("insert: %w", dup)

	assert.True(t, postgresDuplicate(wrapped))
	assert.True(t, duplicateOn(wrapped, productsExternalIDIndex))
	assert.False(t, duplicateOn(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "products_slug_key"}, productsExternalIDIndex))
	assert.False(t, postgresDuplicate(&pgconn.PgError{Code: "23503"}))
	assert.False(t, postgresDuplicate(errors.New("boom")))
}
