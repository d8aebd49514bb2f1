package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifetimeDuration(t *testing.T) {
	cases := []struct {
		lifetime InvitationLifetime
		want     time.Duration
		finite   bool
	}{
		{LifetimeTenMinutes, 10 * time.Minute, true},
		{LifetimeOneHour, time.Hour, true},
		{LifetimeOneDay, 24 * time.Hour, true},
		{LifetimeUnlimited, 0, false},
	}

	for _, tc := range cases {
		got, finite := tc.lifetime.Duration()
		assert.Equal(t, tc.finite, finite, string(tc.lifetime))
		assert.Equal(t, tc.want, got, string(tc.lifetime))
	}
}

func TestLifetimeValid(t *testing.T) {
	require.True(t, LifetimeTenMinutes.Valid())
	require.True(t, LifetimeUnlimited.Valid())
	require.False(t, InvitationLifetime("2w").Valid())
	require.False(t, InvitationLifetime("").Valid())
}

func TestInvitationLastUse(t *testing.T) {
	assert.True(t, Invitation{MaxUses: sql.NullInt32{Int32: 1, Valid: true}}.LastUse())
	assert.True(t, Invitation{MaxUses: sql.NullInt32{Int32: 0, Valid: true}}.LastUse())
	assert.False(t, Invitation{MaxUses: sql.NullInt32{Int32: 2, Valid: true}}.LastUse())
	assert.False(t, Invitation{}.LastUse())
}

func TestInvitationExpired(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	inv := Invitation{Lifetime: LifetimeOneHour, CreatedAt: created}

	assert.False(t, inv.Expired(created.Add(59*time.Minute)))
	assert.False(t, inv.Expired(created.Add(time.Hour)))
	assert.True(t, inv.Expired(created.Add(time.Hour+time.Second)))

	unlimited := Invitation{Lifetime: LifetimeUnlimited, CreatedAt: created}
	assert.False(t, unlimited.Expired(created.Add(1000*time.Hour)))
}
