// Package kernel binds the file system and scheduler into the single
// process-wide record every syscall and interrupt handler is threaded
// through, instead of reaching for ambient globals (spec.md §9's
// "global state... pass them through a kernel context record" design
// note).
//
// Grounded on the teacher's pkg/app.Context: an embedded context.Context
// plus request-scoped state, constructed once and passed explicitly.
package kernel

import (
	"context"
	"fmt"
	"io"

	"github.com/go-nachos/kernel/internal/device"
	"github.com/go-nachos/kernel/internal/fs"
	"github.com/go-nachos/kernel/internal/scheduler"
)

// Context is the kernel's process-wide record: the open file system,
// the scheduler, the backing block device, the virtual tick counter,
// and the current interrupt level. Every syscall takes a *Context
// instead of touching package-level state.
type Context struct {
	context.Context

	FS        *fs.FileSystem
	Scheduler *scheduler.Scheduler
	Device    device.BlockDevice
	Out       io.Writer

	ticks    int
	intLevel scheduler.IntLevel
	halted   bool
}

// New builds a Context over an already-formatted device and mounted
// file system, with a fresh scheduler wired to this context's own tick
// and interrupt-level state.
func New(dev device.BlockDevice, fsys *fs.FileSystem, logOut io.Writer, out io.Writer) *Context {
	c := &Context{
		Context:  context.Background(),
		FS:       fsys,
		Device:   dev,
		Out:      out,
		intLevel: scheduler.IntOn,
	}
	c.Scheduler = scheduler.New(c.Ticks, c.InterruptLevel, scheduler.NewLogger(logOut))
	return c
}

// Ticks reports the current virtual tick count. It is handed to the
// scheduler as its clock collaborator.
func (c *Context) Ticks() int { return c.ticks }

// Tick advances the virtual clock by one and runs the periodic timer
// handler: Demote and Aging on every tick (Aging only changes threads
// that have waited AgingTicks or more).
// It is the external "timer interrupt" spec.md §2 describes as driving
// the scheduler.
func (c *Context) Tick() {
	restore := c.InterruptsOff()
	c.ticks++
	c.Scheduler.Demote()
	c.Scheduler.Aging()
	yield := c.Scheduler.YieldRequested()
	restore()

	if yield {
		c.Yield()
	}
}

// InterruptLevel reports the machine's current interrupt-enable state.
// It is handed to the scheduler as its interrupt-level collaborator.
func (c *Context) InterruptLevel() scheduler.IntLevel { return c.intLevel }

// InterruptsOff disables interrupts and returns a closure that restores
// the previous level. Callers bracket every scheduler or file-system
// mutation with it: `defer c.InterruptsOff()()`.
func (c *Context) InterruptsOff() func() {
	old := c.intLevel
	c.intLevel = scheduler.IntOff
	return func() { c.intLevel = old }
}

// Halt reports the machine as stopped. Subsequent syscalls on a halted
// Context are the caller's error to avoid, matching Nachos' Halt, which
// never returns.
func (c *Context) Halt() {
	c.halted = true
	fmt.Fprintln(c.Out, "Machine halting!")
}

// Halted reports whether Halt has been called.
func (c *Context) Halted() bool { return c.halted }
