// Package app assembles and runs the bridge.
//
// Startup order is fixed: the session artifact is restored, then the chat
// client is constructed and initialized, and the post source starts only
// once the client first reports ready. Lifecycle events are pumped in order
// through the session manager's milestone policy, the metrics and the
// event stream. On shutdown the source stops, the client is closed and the
// status server drains.
package app
