package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/types"
)

func TestParseRecipient(t *testing.T) {
	tests := []struct {
		in     string
		user   string
		server string
	}{
		{"15551234567", "15551234567", types.DefaultUserServer},
		{"+15551234567", "15551234567", types.DefaultUserServer},
		{"15551234567@c.us", "15551234567", types.DefaultUserServer},
		{"15551234567@s.whatsapp.net", "15551234567", types.DefaultUserServer},
		{"120363025246125486@g.us", "120363025246125486", types.GroupServer},
		{"  15551234567@c.us ", "15551234567", types.DefaultUserServer},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			jid, err := ParseRecipient(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.user, jid.User)
			assert.Equal(t, tt.server, jid.Server)
		})
	}
}

func TestParseRecipientRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-number", "@c.us", "123@", "123@example.com"} {
		_, err := ParseRecipient(in)
		assert.ErrorIs(t, err, ErrInvalidRecipient, in)
	}
}
