// Package http serves the bridge's JSON status endpoints.
package http
