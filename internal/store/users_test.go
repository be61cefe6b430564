package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/mechatrack/internal/db"
	"github.com/erazemk/mechatrack/internal/errs"
)

func TestCreateAndLookupUser(t *testing.T) {
	users := &Users{DB: db.NewTestDB(t), Now: steppingClock(fixedNow)}
	ctx := context.Background()

	u, err := users.Create(ctx, "mech@example.com", "hash", "Mechanic")
	require.NoError(t, err)
	assert.Equal(t, "mech@example.com", u.Email)
	assert.Equal(t, "hash", u.PasswordHash)

	byEmail, err := users.GetByEmail(ctx, "mech@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := users.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = users.Get(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := &Users{DB: db.NewTestDB(t)}
	ctx := context.Background()

	_, err := users.Create(ctx, "mech@example.com", "hash", "First")
	require.NoError(t, err)

	_, err = users.Create(ctx, "mech@example.com", "other", "Second")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeConflict))
	assert.Equal(t, MsgEmailExists, errs.As(err).Message())

	n, err := users.CountByEmail(ctx, "mech@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
