// Package middleware holds the status server's gin middleware.
package middleware
