package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
)

var upload = whatsmeow.UploadResponse{
	URL:           "https://mmg.whatsapp.net/x",
	DirectPath:    "/v/x",
	MediaKey:      []byte{1},
	FileEncSHA256: []byte{2},
	FileSHA256:    []byte{3},
	FileLength:    42,
}

func TestMediaType(t *testing.T) {
	for kind, want := range map[chat.MediaKind]whatsmeow.MediaType{
		chat.MediaImage:    whatsmeow.MediaImage,
		chat.MediaSticker:  whatsmeow.MediaImage,
		chat.MediaDocument: whatsmeow.MediaDocument,
		chat.MediaVideo:    whatsmeow.MediaVideo,
		chat.MediaAudio:    whatsmeow.MediaAudio,
	} {
		got, err := mediaType(kind)
		require.NoError(t, err)
		assert.Equal(t, want, got, kind)
	}

	_, err := mediaType("hologram")
	assert.Error(t, err)
}

func TestTextMessage(t *testing.T) {
	assert.Equal(t, "hello", textMessage("hello").GetConversation())
}

func TestImageMessageCarriesCaption(t *testing.T) {
	msg, err := mediaMessage(chat.Media{Kind: chat.MediaImage, MimeType: "image/jpeg"}, upload, "look")
	require.NoError(t, err)

	img := msg.GetImageMessage()
	require.NotNil(t, img)
	assert.Equal(t, "look", img.GetCaption())
	assert.Equal(t, "image/jpeg", img.GetMimetype())
	assert.Equal(t, uint64(42), img.GetFileLength())
	assert.Equal(t, "/v/x", img.GetDirectPath())
}

func TestDocumentMessage(t *testing.T) {
	msg, err := mediaMessage(chat.Media{Kind: chat.MediaDocument, MimeType: "application/pdf", FileName: "report.pdf"}, upload, "")
	require.NoError(t, err)

	doc := msg.GetDocumentMessage()
	require.NotNil(t, doc)
	assert.Equal(t, "report.pdf", doc.GetFileName())
	assert.Nil(t, doc.Caption)
}

func TestAudioMessageVoiceFlag(t *testing.T) {
	msg, err := mediaMessage(chat.Media{Kind: chat.MediaAudio, MimeType: "audio/ogg", Voice: true}, upload, "ignored")
	require.NoError(t, err)
	assert.True(t, msg.GetAudioMessage().GetPTT())
}

func TestStickerMessage(t *testing.T) {
	msg, err := mediaMessage(chat.Media{Kind: chat.MediaSticker, MimeType: "image/webp"}, upload, "")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", msg.GetStickerMessage().GetMimetype())
}
