package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessEvent(t *testing.T) {
	event := NewAccessEvent("/admin-dashboard", "redirect_to_login", "unauthenticated")

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "/admin-dashboard", event.Path)
	assert.Equal(t, "redirect_to_login", event.Verdict)
	assert.Equal(t, "unauthenticated", event.Reason)
	assert.False(t, event.OccurredAt.IsZero())
	assert.False(t, event.Authenticated)
}

func TestAccessEvent_Builders(t *testing.T) {
	event := NewAccessEvent("/messages", "redirect_to_dashboard", "role_mismatch").
		WithSession("user-1", "tenant", true).
		WithRequest("req-1", "landlord").
		WithRedirect("/tenant-dashboard", false)

	assert.Equal(t, "user-1", event.Subject)
	assert.Equal(t, "tenant", event.Role)
	assert.True(t, event.Authenticated)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "landlord", event.RequiredRole)
	assert.Equal(t, "/tenant-dashboard", event.RedirectTarget)
}

func TestAccessEvent_JSON(t *testing.T) {
	event := NewAccessEvent("/profile", "redirect_to_login", "unauthenticated").WithRedirect("/login", false)

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "/login", raw["redirect_target"])
	assert.NotContains(t, raw, "subject")
	assert.NotContains(t, raw, "required_role")
}

func TestAccessEvent_TableName(t *testing.T) {
	assert.Equal(t, "access_events", AccessEvent{}.TableName())
}
