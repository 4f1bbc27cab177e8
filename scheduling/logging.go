package scheduling

import "log"

// Warnf and Infof are the module's one logging shim: every warn-and-drop or
// informational log site in the core goes through one of these instead of
// calling the standard log package directly, so the output format stays in
// one place. Backed by the standard log package with an "[interplay]"
// prefix, mirroring the teacher's plain fmt.Printf/fmt.Fprintf style
// elevated to log.Printf so output carries timestamps, the way the
// reference midiplayer package's own log.Printf("[MIDIPLAYER] ...") calls
// do. Not a third-party structured logger: nothing in the corpus's
// MIDI-adjacent code pulls one in for a component this size.
func Warnf(format string, args ...any) {
	log.Printf("[interplay] WARN "+format, args...)
}

func Infof(format string, args ...any) {
	log.Printf("[interplay] INFO "+format, args...)
}
