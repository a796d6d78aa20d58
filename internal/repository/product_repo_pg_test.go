package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewProductRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewProductRepository(pool)
	assert.NotNil(t, repo)
}
