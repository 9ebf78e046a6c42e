// Package whatsapp adapts the whatsmeow multi-device client to chat.Adapter.
//
// The device keys and login live in a single SQLite file, which is the
// session artifact the session package backs up. Library callbacks are
// translated into chat.Event values and delivered on one buffered channel.
//
// Pairing never gives up on its own. A revoked login clears the device,
// reports a reset AUTH_FAILED and pairs a fresh device; a spent QR channel
// is reopened. Only Close or an outdated client ends the cycle.
package whatsapp
