package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSuspensionState(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	var a Account
	require.False(t, a.SuspensionState().Suspended)
	require.False(t, a.SuspensionState().Expired(now))

	a.Suspended = true
	require.True(t, a.SuspensionState().Indefinite())
	require.False(t, a.SuspensionState().Expired(now))

	a.SuspendedUntil = &future
	require.False(t, a.SuspensionState().Indefinite())
	require.False(t, a.SuspensionState().Expired(now))

	a.SuspendedUntil = &past
	require.True(t, a.SuspensionState().Expired(now))

	// A stale until date without the flag means not suspended at all.
	a.Suspended = false
	require.False(t, a.SuspensionState().Suspended)
	require.Nil(t, a.SuspensionState().Until)
}

func TestSuspensionUnitDuration(t *testing.T) {
	require.Equal(t, 3*time.Hour, UnitHours.Duration(3))
	require.Equal(t, 48*time.Hour, UnitDays.Duration(2))
	require.Equal(t, 7*24*time.Hour, UnitWeeks.Duration(1))
	require.Equal(t, 60*24*time.Hour, UnitMonths.Duration(2))
	require.Equal(t, 365*24*time.Hour, UnitYears.Duration(1))

	require.False(t, SuspensionUnit("fortnights").Valid())
	require.Zero(t, SuspensionUnit("fortnights").Duration(1))
}

func TestRole(t *testing.T) {
	require.True(t, RoleAdmin.Valid())
	require.True(t, RoleSuperAdmin.Valid())
	require.False(t, RoleNone.Valid())
	require.False(t, Role("owner").Valid())

	require.True(t, RoleAdmin.IsAdmin())
	require.True(t, RoleSuperAdmin.IsAdmin())
	require.False(t, RoleNone.IsAdmin())
}
