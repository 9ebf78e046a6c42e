// Package ws streams chat client lifecycle events over websockets.
//
// Frames are JSON:
//
//	{"type":"lifecycle","event":{"kind":"qr_issued","detail":"2@...","at":"..."}}
//
// New connections first receive recent events with type "replay".
package ws
