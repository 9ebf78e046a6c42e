package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
)

func kinds(evts []chat.Event) []chat.EventKind {
	out := make([]chat.EventKind, len(evts))
	for i, e := range evts {
		out[i] = e.Kind
	}
	return out
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		evt  interface{}
		want []chat.EventKind
	}{
		{"pair success", &events.PairSuccess{}, []chat.EventKind{chat.EventAuthenticated}},
		{"connected", &events.Connected{}, []chat.EventKind{chat.EventAuthenticated, chat.EventReady}},
		{"logged out", &events.LoggedOut{}, []chat.EventKind{chat.EventAuthFailed}},
		{"connect failure", &events.ConnectFailure{}, []chat.EventKind{chat.EventAuthFailed}},
		{"outdated", &events.ClientOutdated{}, []chat.EventKind{chat.EventAuthFailed}},
		{"temp ban", &events.TemporaryBan{}, []chat.EventKind{chat.EventAuthFailed}},
		{"disconnected", &events.Disconnected{}, []chat.EventKind{chat.EventDisconnected}},
		{"stream replaced", &events.StreamReplaced{}, []chat.EventKind{chat.EventDisconnected}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(translate(tt.evt)))
		})
	}
}

func TestTranslateIgnoresTraffic(t *testing.T) {
	assert.Empty(t, translate(&events.Message{}))
	assert.Empty(t, translate(&events.Receipt{}))
	assert.Empty(t, translate("noise"))
}

func TestTranslateCarriesDetail(t *testing.T) {
	evts := translate(&events.ConnectFailure{Message: "banned"})
	require.Len(t, evts, 1)
	assert.Contains(t, evts[0].Detail, "banned")
	assert.False(t, evts[0].At.IsZero())
}
