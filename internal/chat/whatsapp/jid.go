package whatsapp

import (
	"errors"
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// ErrInvalidRecipient is returned for destinations that are not a phone
// number or a chat JID.
var ErrInvalidRecipient = errors.New("invalid whatsapp recipient")

// legacyUserServer is the user suffix used by browser-based clients.
const legacyUserServer = "c.us"

// ParseRecipient accepts a bare phone number, a user JID in either the
// "c.us" or "s.whatsapp.net" form, or a group JID.
func ParseRecipient(s string) (types.JID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.EmptyJID, fmt.Errorf("%w: empty", ErrInvalidRecipient)
	}

	if !strings.Contains(s, "@") {
		phone := strings.TrimPrefix(s, "+")
		if !isDigits(phone) {
			return types.EmptyJID, fmt.Errorf("%w: %q", ErrInvalidRecipient, s)
		}
		return types.NewJID(phone, types.DefaultUserServer), nil
	}

	user, server, _ := strings.Cut(s, "@")
	if user == "" || server == "" {
		return types.EmptyJID, fmt.Errorf("%w: %q", ErrInvalidRecipient, s)
	}
	if server == legacyUserServer {
		server = types.DefaultUserServer
	}

	switch server {
	case types.DefaultUserServer, types.GroupServer, types.NewsletterServer:
	default:
		return types.EmptyJID, fmt.Errorf("%w: unsupported server %q", ErrInvalidRecipient, server)
	}

	jid, err := types.ParseJID(user + "@" + server)
	if err != nil {
		return types.EmptyJID, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	return jid, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
