package bridge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tgwa-bridge/internal/media"
	"github.com/GriffinCanCode/tgwa-bridge/internal/shared/id"
)

// ErrNotReady is returned when a post arrives before the destination
// client is ready.
var ErrNotReady = errors.New("destination client not ready")

// FileResolver turns a source file ID into a download URL.
type FileResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

// Downloader fetches attachment bytes.
type Downloader interface {
	Fetch(ctx context.Context, url string) (*media.Download, error)
}

// Forwarder relays posts to one destination chat, one send per post.
type Forwarder struct {
	sender     chat.Sender
	resolver   FileResolver
	downloader Downloader
	to         string
	maxBytes   int64
	log        *zap.Logger
	metrics    *monitoring.Metrics
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Forwarder) { f.log = log }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(f *Forwarder) { f.metrics = m }
}

// WithMaxBytes rejects attachments the source reports as larger than n
// before downloading them.
func WithMaxBytes(n int64) Option {
	return func(f *Forwarder) { f.maxBytes = n }
}

// NewForwarder creates a forwarder sending to the chat identified by to.
func NewForwarder(sender chat.Sender, resolver FileResolver, downloader Downloader, to string, opts ...Option) *Forwarder {
	f := &Forwarder{
		sender:     sender,
		resolver:   resolver,
		downloader: downloader,
		to:         to,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forward sends post once. Unsupported posts are skipped and return nil.
func (f *Forwarder) Forward(ctx context.Context, post Post) error {
	fwd := id.NewForwardID()
	log := f.log.With(
		zap.String("forward_id", fwd.String()),
		zap.Int("post_id", post.ID),
		zap.Int64("chat_id", post.ChatID),
		zap.String("kind", string(post.Kind)),
	)

	if post.Kind == KindUnsupported {
		log.Debug("Skipping post with no forwardable content")
		f.metrics.RecordForward(string(post.Kind), "skipped")
		return nil
	}

	err := f.forward(ctx, post)
	if err != nil {
		log.Error("Failed to forward post", zap.Error(err))
		f.metrics.RecordForward(string(post.Kind), "failed")
		return err
	}

	log.Info("Forwarded post")
	f.metrics.RecordForward(string(post.Kind), "ok")
	return nil
}

func (f *Forwarder) forward(ctx context.Context, post Post) error {
	if !f.sender.Ready() {
		return ErrNotReady
	}
	if post.Kind == KindText {
		return f.sender.SendText(ctx, f.to, post.Text)
	}
	if !post.Kind.HasMedia() {
		return fmt.Errorf("unknown post kind %q", post.Kind)
	}

	if f.maxBytes > 0 && post.FileSize > f.maxBytes {
		return fmt.Errorf("%w: %d bytes", media.ErrTooLarge, post.FileSize)
	}
	url, err := f.resolver.FileURL(ctx, post.FileID)
	if err != nil {
		return fmt.Errorf("failed to resolve file: %w", err)
	}
	dl, err := f.downloader.Fetch(ctx, url)
	if err != nil {
		return err
	}

	attachment := attachmentFor(post, dl)
	caption := ""
	if post.Kind.CarriesCaption() {
		caption = post.Caption
	}
	return f.sender.SendMedia(ctx, f.to, attachment, caption)
}

// attachmentFor picks how the recipient sees the file. Stickers go out as
// native stickers when they are WebP, as images for other image types and
// as documents otherwise (animated and video stickers).
func attachmentFor(post Post, dl *media.Download) chat.Media {
	mime := media.Pick(post.MimeType, dl.MimeType)
	m := chat.Media{
		Data:     dl.Data,
		MimeType: mime,
		FileName: post.FileName,
	}

	switch post.Kind {
	case KindImage:
		m.Kind = chat.MediaImage
	case KindVideo:
		m.Kind = chat.MediaVideo
	case KindAudio:
		m.Kind = chat.MediaAudio
	case KindVoice:
		m.Kind = chat.MediaAudio
		m.Voice = true
	case KindSticker:
		switch {
		case mime == "image/webp":
			m.Kind = chat.MediaSticker
		case media.IsImage(mime):
			m.Kind = chat.MediaImage
		default:
			m.Kind = chat.MediaDocument
		}
	default:
		m.Kind = chat.MediaDocument
	}

	if m.Kind == chat.MediaDocument && m.FileName == "" {
		m.FileName = "file" + dl.Extension
	}
	return m
}
