package scheduler

import (
	"fmt"
	"io"
)

// Logger writes the exact human-readable transition lines spec.md §6
// requires, one per scheduler state change. It wraps a plain io.Writer
// rather than the standard log package so the line shapes are under our
// control byte-for-byte, the way the teacher's services package writes
// directly to its report io.Writer instead of going through log.Logger.
type Logger struct {
	w io.Writer
}

// NewLogger wraps w. A nil w is valid and silently drops all lines,
// useful for tests that don't care about the trace.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

func (l *Logger) Inserted(tick, id, level int, est float64, pri int) {
	l.printf("Tick %d: Thread %d is inserted into queue L%d (EST: %g, PRI: %d)\n", tick, id, level, est, pri)
}

func (l *Logger) Removed(tick, id, level int, est float64, pri int) {
	l.printf("Tick %d: Thread %d is removed from queue L%d (EST: %g, PRI: %d)\n", tick, id, level, est, pri)
}

func (l *Logger) PriorityChanged(tick, id, oldPri, newPri int) {
	l.printf("Tick %d: Thread %d changes its priority from %d to %d\n", tick, id, oldPri, newPri)
}

func (l *Logger) printf(format string, args ...any) {
	if l == nil || l.w == nil {
		return
	}
	fmt.Fprintf(l.w, format, args...)
}
