package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "operator", "regulator"} {
		role, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), role)
	}

	_, err := ParseRole("superuser")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAuthContext_Valid(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, AuthContext{ExpiresAt: now.Add(time.Minute)}.Valid(now))
	assert.NoError(t, AuthContext{}.Valid(now))
	assert.ErrorIs(t, AuthContext{ExpiresAt: now}.Valid(now), ErrSessionExpired)
	assert.ErrorIs(t, AuthContext{ExpiresAt: now.Add(-time.Second)}.Valid(now), ErrSessionExpired)
}

func TestReport_Period(t *testing.T) {
	r := &Report{Month: 3, Year: 2024, Status: StatusPending}
	assert.Equal(t, "2024-03", r.Period())
	assert.True(t, r.IsPending())
	assert.True(t, r.Status.IsValid())
	assert.False(t, ReportStatus("archived").IsValid())
}
