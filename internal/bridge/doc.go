// Package bridge forwards channel posts from Telegram to one WhatsApp chat.
//
// Each post is classified into exactly one Kind and sent once. Attachments
// are resolved through the source, downloaded with a size cap and handed to
// the chat client; photo, document and video posts keep their caption.
// Nothing is retried: a failed post is logged and counted.
package bridge
