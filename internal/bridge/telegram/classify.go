package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/GriffinCanCode/tgwa-bridge/internal/bridge"
)

// toPost classifies msg by precedence: text, photo, document, video, audio,
// voice, sticker. Exactly one kind wins even if several fields are set.
func toPost(msg *tgbotapi.Message) bridge.Post {
	post := bridge.Post{
		ID:      msg.MessageID,
		Caption: msg.Caption,
		Kind:    bridge.KindUnsupported,
	}
	if msg.Chat != nil {
		post.ChatID = msg.Chat.ID
	}

	switch {
	case msg.Text != "":
		post.Kind = bridge.KindText
		post.Text = msg.Text
	case len(msg.Photo) > 0:
		photo := largestPhoto(msg.Photo)
		post.Kind = bridge.KindImage
		post.FileID = photo.FileID
		post.FileSize = int64(photo.FileSize)
	case msg.Document != nil:
		post.Kind = bridge.KindDocument
		post.FileID = msg.Document.FileID
		post.FileName = msg.Document.FileName
		post.MimeType = msg.Document.MimeType
		post.FileSize = int64(msg.Document.FileSize)
	case msg.Video != nil:
		post.Kind = bridge.KindVideo
		post.FileID = msg.Video.FileID
		post.MimeType = msg.Video.MimeType
		post.FileSize = int64(msg.Video.FileSize)
	case msg.Audio != nil:
		post.Kind = bridge.KindAudio
		post.FileID = msg.Audio.FileID
		post.MimeType = msg.Audio.MimeType
		post.FileSize = int64(msg.Audio.FileSize)
	case msg.Voice != nil:
		post.Kind = bridge.KindVoice
		post.FileID = msg.Voice.FileID
		post.MimeType = msg.Voice.MimeType
		post.FileSize = int64(msg.Voice.FileSize)
	case msg.Sticker != nil:
		post.Kind = bridge.KindSticker
		post.FileID = msg.Sticker.FileID
		post.FileSize = int64(msg.Sticker.FileSize)
	}
	return post
}

// largestPhoto picks the highest resolution rendition.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[len(sizes)-1]
	for _, s := range sizes {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
