// Package paths resolves where the WhatsApp session artifact lives.
//
// Layout:
//
//	<root>/<client id>/session.db   local artifact, written by the client library
//	<remote key>                    slot in the remote session store
//
// The client id is a single path segment, so two identities can never share
// a directory and the same identity always resolves to the same pair.
package paths
