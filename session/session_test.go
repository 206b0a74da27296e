// ABOUTME: Tests for the persisted current-user slot
// ABOUTME: Uses temporary directories so each test gets its own BadgerDB

package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/commtrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadClear(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	user, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, user, "fresh store has no user")

	admin := &models.User{ID: uuid.New(), Name: "Admin User", Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, store.Save(admin))

	user, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, admin, user)

	require.NoError(t, store.Clear())
	user, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	u := &models.User{ID: uuid.New(), Name: "Regular User", Email: "user@example.com", Role: models.RoleUser}
	require.NoError(t, store.Save(u))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestSaveRejectsUnknownRole(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	err = store.Save(&models.User{ID: uuid.New(), Role: "root"})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestSaveNilLogsOut(t *testing.T) {
	store, err := OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(&models.User{ID: uuid.New(), Role: models.RoleAdmin}))
	require.NoError(t, store.Save(nil))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}
