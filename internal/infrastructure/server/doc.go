// Package server wires the status endpoints into a gin router and runs it.
package server
