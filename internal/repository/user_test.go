package repository

import (
	"testing"

	"github.com/diewo77/go-orders/internal/db/dbtest"
	"github.com/diewo77/go-orders/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepository(db)

	u := models.User{Email: "ana@example.com", HashedPassword: "h", IsActive: true}
	require.NoError(t, repo.Create(t.Context(), &u))

	got, err := repo.FindByEmail(t.Context(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsSuperuser)

	got, err = repo.FindByID(t.Context(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = repo.FindByID(t.Context(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	dup := models.User{Email: "ana@example.com", HashedPassword: "h"}
	assert.ErrorIs(t, repo.Create(t.Context(), &dup), gorm.ErrDuplicatedKey)
}
