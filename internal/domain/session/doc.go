// Package session makes the WhatsApp login survive process restarts.
//
// The chat client keeps its login in one local file. On ephemeral hosts that
// file is lost on every restart, so Manager mirrors it to a remote store:
//
//	start ──Restore()──> client.Initialize() ──authenticated/ready──> Save()
//
// Restore runs once before the client exists and copies the remote artifact
// over the local path. Save runs after each milestone and uploads the local
// file, overwriting the remote copy. Neither returns an error: failures are
// logged and reported as an Outcome, and the bridge keeps running. A missing
// remote artifact just means the client will show a QR code. A revoked
// login is saved too, so the dead device is not restored on the next start.
//
// Durability state, per client identity:
//
//	ABSENT ──local file appears──> LOCAL_ONLY ──Save ok──> SYNCED ──Save ok──> SYNCED
//	ABSENT ──Restore ok──> SYNCED
//
// There is no locking across processes; one process owns one identity and
// concurrent writers get last-write-wins.
package session
