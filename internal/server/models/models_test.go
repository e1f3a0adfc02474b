package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicOmitsCredential(t *testing.T) {
	last := "2024-01-02T03:04:05Z"
	u := &User{
		ID:           7,
		Username:     "alice",
		PasswordHash: "deadbeef.cafe",
		FullName:     "Alice A",
		Email:        "alice@example.com",
		Mobile:       "9999999999",
		IsActive:     true,
		LastLogin:    &last,
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "alice", got["username"])
	assert.EqualValues(t, 7, got["id"])
	assert.Equal(t, last, got["lastLogin"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "passwordHash")
	assert.NotContains(t, string(b), "deadbeef")
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}
