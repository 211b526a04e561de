package scheduler

import "fmt"

// assert panics on a violated structural invariant. Scheduler failures
// are programmer errors, not runtime errors (spec.md §7): interrupt
// discipline, priority bounds, and the to_be_destroyed slot protocol are
// all enforced this way rather than via returned errors.
func assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("scheduler: assertion failed: "+format, args...))
	}
}
