package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultRoot is the session root used when none is configured.
	DefaultRoot = "session"

	// ArtifactName is the file the WhatsApp device store is kept in.
	ArtifactName = "session.db"
)

var (
	ErrEmptyClientID   = errors.New("client id is empty")
	ErrInvalidClientID = errors.New("client id must be a single path segment")
	ErrEmptyRemoteKey  = errors.New("remote key is empty")
)

// Location pairs the local session artifact path with its slot in the
// remote store. The same client identity always yields the same pair.
type Location struct {
	Root      string
	ClientID  string
	LocalPath string
	RemoteKey string
}

// NewLocation resolves the location for one client identity.
func NewLocation(root, clientID, remoteKey string) (Location, error) {
	if err := ValidateClientID(clientID); err != nil {
		return Location{}, err
	}
	if strings.TrimSpace(remoteKey) == "" {
		return Location{}, ErrEmptyRemoteKey
	}
	if root == "" {
		root = DefaultRoot
	}
	root = filepath.Clean(root)
	return Location{
		Root:      root,
		ClientID:  clientID,
		LocalPath: filepath.Join(root, clientID, ArtifactName),
		RemoteKey: remoteKey,
	}, nil
}

// Dir returns the client's directory under the session root.
func (l Location) Dir() string {
	return filepath.Dir(l.LocalPath)
}

// String returns a short form for logs.
func (l Location) String() string {
	return fmt.Sprintf("%s -> %s", l.LocalPath, l.RemoteKey)
}

// ValidateClientID checks that id names exactly one directory under the root.
func ValidateClientID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyClientID
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) || filepath.Base(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidClientID, id)
	}
	return nil
}
