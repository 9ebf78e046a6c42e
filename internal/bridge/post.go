package bridge

// Kind is the single classification of an inbound post.
type Kind string

const (
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindDocument    Kind = "document"
	KindVideo       Kind = "video"
	KindAudio       Kind = "audio"
	KindVoice       Kind = "voice"
	KindSticker     Kind = "sticker"
	KindUnsupported Kind = "unsupported"
)

// HasMedia reports whether the kind carries a downloadable file.
func (k Kind) HasMedia() bool {
	switch k {
	case KindImage, KindDocument, KindVideo, KindAudio, KindVoice, KindSticker:
		return true
	default:
		return false
	}
}

// CarriesCaption reports whether the caption travels with the attachment.
func (k Kind) CarriesCaption() bool {
	return k == KindImage || k == KindDocument || k == KindVideo
}

// Post is one channel post from the source platform, reduced to what the
// destination needs.
type Post struct {
	ID     int
	ChatID int64
	Kind   Kind
	// Text is set for KindText.
	Text    string
	Caption string

	// File fields are set for media kinds.
	FileID   string
	FileName string
	MimeType string
	FileSize int64
}
