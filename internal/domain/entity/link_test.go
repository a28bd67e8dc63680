package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLink_LifecycleHelpers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name    string
		link    Link
		revoked bool
		expired bool
		locked  bool
		active  bool
	}{
		{name: "fresh", link: Link{ExpiresAt: future}, active: true},
		{name: "revoked", link: Link{ExpiresAt: future, RevokedAt: &past}, revoked: true},
		{name: "expired", link: Link{ExpiresAt: past}, expired: true},
		{name: "locked", link: Link{ExpiresAt: future, LockedUntil: &future}, locked: true, active: true},
		{name: "lock lapsed", link: Link{ExpiresAt: future, LockedUntil: &past}, active: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.revoked, tt.link.IsRevoked())
			assert.Equal(t, tt.expired, tt.link.IsExpired(now))
			assert.Equal(t, tt.locked, tt.link.IsLocked(now))
			assert.Equal(t, tt.active, tt.link.IsActive(now))
		})
	}
}

func TestLink_RemainingAttempts(t *testing.T) {
	link := Link{AttemptCount: 7}
	assert.Equal(t, 3, link.RemainingAttempts(10))

	link.AttemptCount = 12
	assert.Equal(t, 0, link.RemainingAttempts(10))
}

func TestSubject_GeneratedWithin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subject := &Subject{}
	assert.False(t, subject.GeneratedWithin(now, time.Minute))

	recent := now.Add(-30 * time.Second)
	subject.LastGeneratedAt = &recent
	assert.True(t, subject.GeneratedWithin(now, time.Minute))

	old := now.Add(-2 * time.Minute)
	subject.LastGeneratedAt = &old
	assert.False(t, subject.GeneratedWithin(now, time.Minute))
}

func TestAccessStatus_IsTerminal(t *testing.T) {
	assert.True(t, AccessStatusNotFound.IsTerminal())
	assert.True(t, AccessStatusLocked.IsTerminal())
	assert.False(t, AccessStatusWrongPasscode.IsTerminal())
	assert.False(t, AccessStatusSuccess.IsTerminal())
}

func TestNewID_IsTimeOrdered(t *testing.T) {
	first := NewID()
	second := NewID()

	assert.Equal(t, uuid.Version(7), first.Version())
	assert.Less(t, first.String(), second.String())
}
