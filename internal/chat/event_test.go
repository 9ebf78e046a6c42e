package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKindNames(t *testing.T) {
	for kind, name := range map[EventKind]string{
		EventQRIssued:      "qr_issued",
		EventAuthenticated: "authenticated",
		EventReady:         "ready",
		EventAuthFailed:    "auth_failed",
		EventDisconnected:  "disconnected",
	} {
		assert.Equal(t, name, kind.String())

		parsed, err := ParseEventKind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	assert.Equal(t, "event(42)", EventKind(42).String())
	_, err := ParseEventKind("exploded")
	assert.Error(t, err)
}

func TestMilestones(t *testing.T) {
	assert.True(t, EventAuthenticated.IsMilestone())
	assert.True(t, EventReady.IsMilestone())

	assert.False(t, EventQRIssued.IsMilestone())
	assert.False(t, EventAuthFailed.IsMilestone())
	assert.False(t, EventDisconnected.IsMilestone())
}

func TestEventKindMarshalText(t *testing.T) {
	text, err := EventReady.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ready", string(text))
}

func TestEventJSON(t *testing.T) {
	raw, err := json.Marshal(NewEvent(EventQRIssued, "2@abc"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"kind":"qr_issued"`)

	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, EventQRIssued, back.Kind)
	assert.Equal(t, "2@abc", back.Detail)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"exploded"}`), &back))
}

func TestChangesSession(t *testing.T) {
	assert.True(t, NewEvent(EventAuthenticated, "").ChangesSession())
	assert.True(t, NewEvent(EventReady, "").ChangesSession())
	assert.True(t, NewResetEvent("logged out").ChangesSession())

	assert.False(t, NewEvent(EventAuthFailed, "connect failure").ChangesSession())
	assert.False(t, NewEvent(EventQRIssued, "2@abc").ChangesSession())
	assert.False(t, NewEvent(EventDisconnected, "").ChangesSession())
}

func TestRedactedDropsQRChallenge(t *testing.T) {
	qr := NewEvent(EventQRIssued, "2@secret")
	assert.Empty(t, qr.Redacted().Detail)
	assert.Equal(t, "2@secret", qr.Detail, "original untouched")

	failed := NewEvent(EventAuthFailed, "logged out")
	assert.Equal(t, failed, failed.Redacted())
}
