package whatsapp

import (
	"fmt"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
)

// mediaType selects the upload encryption domain for an attachment.
func mediaType(kind chat.MediaKind) (whatsmeow.MediaType, error) {
	switch kind {
	case chat.MediaImage, chat.MediaSticker:
		return whatsmeow.MediaImage, nil
	case chat.MediaDocument:
		return whatsmeow.MediaDocument, nil
	case chat.MediaVideo:
		return whatsmeow.MediaVideo, nil
	case chat.MediaAudio:
		return whatsmeow.MediaAudio, nil
	default:
		return "", fmt.Errorf("unsupported media kind %q", kind)
	}
}

func textMessage(text string) *waE2E.Message {
	return &waE2E.Message{Conversation: proto.String(text)}
}

// mediaMessage wraps an uploaded attachment. Captions are dropped for kinds
// the recipient app cannot display them on.
func mediaMessage(media chat.Media, up whatsmeow.UploadResponse, caption string) (*waE2E.Message, error) {
	var captionPtr *string
	if caption != "" {
		captionPtr = proto.String(caption)
	}

	switch media.Kind {
	case chat.MediaImage:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			Mimetype:      proto.String(media.MimeType),
			Caption:       captionPtr,
		}}, nil
	case chat.MediaDocument:
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			Mimetype:      proto.String(media.MimeType),
			FileName:      proto.String(media.FileName),
			Title:         proto.String(media.FileName),
			Caption:       captionPtr,
		}}, nil
	case chat.MediaVideo:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			Mimetype:      proto.String(media.MimeType),
			Caption:       captionPtr,
		}}, nil
	case chat.MediaAudio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			Mimetype:      proto.String(media.MimeType),
			PTT:           proto.Bool(media.Voice),
		}}, nil
	case chat.MediaSticker:
		return &waE2E.Message{StickerMessage: &waE2E.StickerMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			Mimetype:      proto.String(media.MimeType),
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported media kind %q", media.Kind)
	}
}
