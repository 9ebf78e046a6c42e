package paths

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewLocation(t *testing.T) {
	loc, err := NewLocation("session", "forwarder", "/whatsapp/forwarder.db")
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}
	if got, want := loc.LocalPath, filepath.Join("session", "forwarder", "session.db"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := loc.Dir(), filepath.Join("session", "forwarder"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := loc.RemoteKey, "/whatsapp/forwarder.db"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewLocationIsDeterministic(t *testing.T) {
	a, _ := NewLocation("/data/./session/", "forwarder", "k")
	b, _ := NewLocation("/data/session", "forwarder", "k")
	if a != b {
		t.Errorf("got %+v and %+v for the same identity", a, b)
	}
}

func TestNewLocationDefaultsRoot(t *testing.T) {
	loc, err := NewLocation("", "forwarder", "k")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := loc.Root, DefaultRoot; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidateClientID(t *testing.T) {
	for _, tc := range []struct {
		id   string
		want error
	}{
		{"forwarder", nil},
		{"shop-2", nil},
		{"", ErrEmptyClientID},
		{"  ", ErrEmptyClientID},
		{".", ErrInvalidClientID},
		{"..", ErrInvalidClientID},
		{"a/b", ErrInvalidClientID},
		{`a\b`, ErrInvalidClientID},
	} {
		err := ValidateClientID(tc.id)
		if !errors.Is(err, tc.want) {
			t.Errorf("ValidateClientID(%q): got %v, want %v", tc.id, err, tc.want)
		}
	}
}

func TestNewLocationRejectsEmptyRemoteKey(t *testing.T) {
	if _, err := NewLocation("session", "forwarder", " "); !errors.Is(err, ErrEmptyRemoteKey) {
		t.Errorf("got %v, want %v", err, ErrEmptyRemoteKey)
	}
}
