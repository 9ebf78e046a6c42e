package whatsapp

import (
	"fmt"

	"go.mau.fi/whatsmeow/types/events"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
)

// translate maps a client library event onto the lifecycle enumeration.
// Connected yields both milestones: a restored session authenticates
// silently, so it is the only signal that login state is in use.
func translate(evt interface{}) []chat.Event {
	switch e := evt.(type) {
	case *events.PairSuccess:
		return []chat.Event{chat.NewEvent(chat.EventAuthenticated, e.ID.String())}
	case *events.Connected:
		return []chat.Event{
			chat.NewEvent(chat.EventAuthenticated, ""),
			chat.NewEvent(chat.EventReady, ""),
		}
	case *events.LoggedOut:
		return []chat.Event{chat.NewEvent(chat.EventAuthFailed, fmt.Sprintf("logged out: %s", e.Reason.String()))}
	case *events.ConnectFailure:
		return []chat.Event{chat.NewEvent(chat.EventAuthFailed, fmt.Sprintf("connect failure: %s %s", e.Reason.String(), e.Message))}
	case *events.ClientOutdated:
		return []chat.Event{chat.NewEvent(chat.EventAuthFailed, "client outdated")}
	case *events.TemporaryBan:
		return []chat.Event{chat.NewEvent(chat.EventAuthFailed, e.String())}
	case *events.Disconnected:
		return []chat.Event{chat.NewEvent(chat.EventDisconnected, "connection closed")}
	case *events.StreamReplaced:
		return []chat.Event{chat.NewEvent(chat.EventDisconnected, "stream replaced by another client")}
	default:
		return nil
	}
}
