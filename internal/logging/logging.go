// Package logging provides debug logging utilities for the HOBBS BBS
// core runtime (session worker, telnet codec, screen handlers).
package logging

import "log"

// DebugEnabled gates Debug() output. The host binary flips it on in
// response to whatever verbosity flag or environment variable it wires
// up; the package itself has no opinion on how that's done.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}
