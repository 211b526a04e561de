package kernel

import "fmt"

// The methods below, together with Halt in context.go, are the
// kernel-facing syscall surface spec.md §6 names: Halt, Create, Open,
// Read, Write, Close, PrintInt, Yield. Return
// conventions match spec.md §4.5/§7 — Create returns a bool, Open
// returns a descriptor id or 0 (NONE), Read/Write/Close return -1 on
// failure — grounded on userprog/ksyscall.h's thin dispatch-to-FileSystem
// shape.

// Create makes a new file of size bytes at name, returning whether it
// succeeded.
func (c *Context) Create(name string, size int) bool {
	restore := c.InterruptsOff()
	defer restore()

	return c.FS.Create(name, size, false) == nil
}

// Open resolves name to a descriptor id, or 0 if it could not be opened.
func (c *Context) Open(name string) int {
	restore := c.InterruptsOff()
	defer restore()

	id, err := c.FS.Put(name)
	if err != nil {
		return 0
	}
	return id
}

// Read reads at most n bytes from descriptor fd into buf, returning the
// count read or -1 on a bad descriptor.
func (c *Context) Read(buf []byte, n int, fd int) int {
	restore := c.InterruptsOff()
	defer restore()

	got, err := c.FS.Read(fd, buf, n)
	if err != nil {
		return -1
	}
	return got
}

// Write writes at most n bytes from buf to descriptor fd, returning the
// count written or -1 on a bad descriptor.
func (c *Context) Write(buf []byte, n int, fd int) int {
	restore := c.InterruptsOff()
	defer restore()

	put, err := c.FS.Write(fd, buf, n)
	if err != nil {
		return -1
	}
	return put
}

// Close releases descriptor fd, returning 1 on success or -1 if it was
// never open.
func (c *Context) Close(fd int) int {
	restore := c.InterruptsOff()
	defer restore()

	if err := c.FS.Close(fd); err != nil {
		return -1
	}
	return 1
}

// PrintInt writes n as a line of decimal text to the console.
func (c *Context) PrintInt(n int) {
	fmt.Fprintf(c.Out, "%d\n", n)
}

// Yield gives up the CPU: the current thread goes back onto its ready
// queue and the next-highest thread is dispatched. A no-op if no other
// thread is runnable.
func (c *Context) Yield() {
	restore := c.InterruptsOff()
	defer restore()

	cur := c.Scheduler.Current()
	next := c.Scheduler.FindNextToRun()
	if next == nil {
		return
	}
	if cur != nil {
		c.Scheduler.UpdateEstimate(cur, c.Ticks()-cur.LastCPUTick)
		c.Scheduler.ReadyToRun(cur)
	}
	c.Scheduler.Run(next, false)
}
