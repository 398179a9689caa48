package repositories

import (
	"context"
	"testing"

	"bulletin/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "hash"}
	user.BeforeCreate()
	update(t, store, func(tx Tx) error { return tx.Users().Create(user) })
	assert.Equal(t, 1, user.ID)

	t.Run("lookup", func(t *testing.T) {
		err := store.View(ctx, func(tx Tx) error {
			byID, err := tx.Users().GetByID(user.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", byID.Username)
			assert.Equal(t, models.RoleUser, byID.Role)

			byName, err := tx.Users().GetByUsername("alice")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byName.ID)

			_, err = tx.Users().GetByUsername("nobody")
			assert.ErrorIs(t, err, ErrNotFound)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := &models.User{Username: "alice", PasswordHash: "other"}
		dup.BeforeCreate()
		err := store.Update(ctx, func(tx Tx) error { return tx.Users().Create(dup) })
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("delete frees the username", func(t *testing.T) {
		update(t, store, func(tx Tx) error { return tx.Users().Delete(user.ID) })

		again := &models.User{Username: "alice", PasswordHash: "hash"}
		again.BeforeCreate()
		update(t, store, func(tx Tx) error { return tx.Users().Create(again) })
		assert.NotEqual(t, user.ID, again.ID)
	})
}
