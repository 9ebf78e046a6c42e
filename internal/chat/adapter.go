// Package chat defines the contract between the bridge and the destination
// chat client: one lifecycle event stream plus text and media sends.
package chat

import (
	"context"
	"errors"
)

// ErrClosed is returned by sends after Close.
var ErrClosed = errors.New("chat client closed")

// MediaKind selects how an attachment is presented to the recipient.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaSticker  MediaKind = "sticker"
)

// Media is an attachment ready to upload.
type Media struct {
	Kind     MediaKind
	Data     []byte
	MimeType string
	FileName string
	// Voice marks audio as a push-to-talk note.
	Voice bool
}

// Sender is the sending half of a chat client.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendMedia(ctx context.Context, to string, media Media, caption string) error
	Ready() bool
}

// Adapter is a chat client whose session state lives in a local file.
//
// Initialize must only be called once the session artifact has been
// restored. Events delivers every lifecycle event on one channel, which is
// closed by Close.
type Adapter interface {
	Sender
	Initialize(ctx context.Context) error
	Events() <-chan Event
	Close() error
}

// SessionSnapshotter is implemented by adapters that can copy their
// session artifact consistently while they hold it open.
type SessionSnapshotter interface {
	SnapshotSession(ctx context.Context) ([]byte, error)
}
