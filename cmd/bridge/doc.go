// Package main is the entry point for the Telegram to WhatsApp bridge.
//
// The bridge forwards every post of a Telegram channel to one WhatsApp chat.
// WhatsApp login state is backed up to a remote store, so the process can
// run on hosts whose disk is wiped on every deploy:
//
//	Telegram channel ─▶ bridge ─▶ WhatsApp chat
//	                      │
//	                      └─ session.db ◀─▶ remote store (Dropbox, Redis, Bolt)
//
// Configuration comes from the environment, optionally seeded from a .env
// file. TG_BOT_TOKEN and WA_CHAT_ID are required; see the config package
// for the rest.
//
// Usage:
//
//	./bridge
//	./bridge -env-file /etc/bridge.env
//
// On first start without a saved session a QR code is printed; scan it from
// WhatsApp > Linked devices. It is also published on the /events stream.
//
// Signals:
//   - SIGINT, SIGTERM: stop listening, close the WhatsApp client, exit
package main
