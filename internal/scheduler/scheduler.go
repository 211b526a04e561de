package scheduler

import (
	"fmt"
	"strings"

	"github.com/go-nachos/kernel/internal/types"
)

// IntLevel mirrors the machine's interrupt-enable state. The scheduler
// never flips it itself: every entry point asserts it is already Off,
// the mutual-exclusion discipline spec.md §5 describes for a
// uniprocessor kernel.
type IntLevel int

const (
	IntOn IntLevel = iota
	IntOff
)

// burstAlpha is the exponential-averaging weight applied to a freshly
// measured CPU burst against the prior estimate (spec.md §9's resolved
// open question): est' = burstAlpha*burst + (1-burstAlpha)*est.
const burstAlpha = 0.5

// Scheduler holds the three ready queues and the single to-be-destroyed
// slot described in spec.md §3/§4.6. It never touches interrupts or the
// clock directly; both are passed in as collaborators, per the "kernel
// context record, not ambient globals" design note in spec.md §9.
type Scheduler struct {
	rr       rrQueue
	priority priorityQueue
	sjf      sjfQueue

	current       *ThreadDescriptor
	toBeDestroyed *ThreadDescriptor
	yieldOnReturn bool

	now      func() int
	intLevel func() IntLevel
	logger   *Logger

	// dispatch is the machine-dependent context switch hook (Nachos'
	// SWITCH). It may be nil in tests that only exercise queue
	// bookkeeping, never a real dispatch.
	dispatch func(old, next *ThreadDescriptor)
	onDestroy func(*ThreadDescriptor)
}

// New builds a Scheduler. now reports the current virtual tick count;
// intLevel reports the machine's current interrupt state.
func New(now func() int, intLevel func() IntLevel, logger *Logger) *Scheduler {
	return &Scheduler{now: now, intLevel: intLevel, logger: logger}
}

// SetDispatch installs the machine-dependent context switch hook
// invoked from Run. SetOnDestroy installs a callback run when a
// finishing thread's carcass is finally reclaimed.
func (s *Scheduler) SetDispatch(fn func(old, next *ThreadDescriptor)) { s.dispatch = fn }
func (s *Scheduler) SetOnDestroy(fn func(*ThreadDescriptor))         { s.onDestroy = fn }

// Current returns the thread presently charged with the CPU, or nil
// before the first Run.
func (s *Scheduler) Current() *ThreadDescriptor { return s.current }

// YieldRequested reports and clears the yield-on-return latch an
// interrupt handler should consult on its exit path (spec.md §5).
func (s *Scheduler) YieldRequested() bool {
	v := s.yieldOnReturn
	s.yieldOnReturn = false
	return v
}

func (s *Scheduler) assertInterruptsOff(where string) {
	assert(s.intLevel() == IntOff, "%s called with interrupts on", where)
}

// ReadyToRun admits thread onto the queue matching its current tier and
// requests a yield if it should preempt the running thread
// (spec.md §4.6).
func (s *Scheduler) ReadyToRun(thread *ThreadDescriptor) {
	s.assertInterruptsOff("ReadyToRun")
	assert(thread.Priority >= 0 && thread.Priority < 150, "thread %d priority %d out of range", thread.ID, thread.Priority)

	thread.LastCPUTick = s.now()
	tier := thread.Tier()
	switch tier {
	case tierRR:
		s.rr.append(thread)
	case tierPriority:
		s.priority.insert(thread)
	case tierSJF:
		s.sjf.insert(thread)
	default:
		assert(false, "thread %d resolved to impossible tier %d", thread.ID, tier)
	}

	s.logger.Inserted(s.now(), thread.ID, levelLabel(tier), thread.GuessCPUBurst, thread.Priority)
	thread.Status = StatusReady

	if s.current != nil && s.current != thread && s.isPreempted(s.current, thread) {
		s.yieldOnReturn = true
	}
}

// isPreempted reports whether cand should preempt cur: SJF ordering when
// both live at tier L1 (priority >= 2*LevelGap), priority ordering
// otherwise, both tie-broken by smaller id (spec.md §4.6).
func (s *Scheduler) isPreempted(cur, cand *ThreadDescriptor) bool {
	l1Lower := levelGap * 2
	if cur.Priority >= l1Lower && cand.Priority >= l1Lower {
		return sjfLess(cand, cur)
	}
	return priorityLess(cand, cur)
}

// FindNextToRun removes and returns the head of the highest non-empty
// queue (sjf, then priority, then rr), or nil if every queue is empty.
func (s *Scheduler) FindNextToRun() *ThreadDescriptor {
	s.assertInterruptsOff("FindNextToRun")

	var next *ThreadDescriptor
	var label int
	switch {
	case !s.sjf.empty():
		next, label = s.sjf.removeFront(), 1
	case !s.priority.empty():
		next, label = s.priority.removeFront(), 2
	case !s.rr.empty():
		next, label = s.rr.removeFront(), 3
	default:
		return nil
	}

	s.logger.Removed(s.now(), next.ID, label, next.GuessCPUBurst, next.Priority)
	return next
}

// Run dispatches the CPU to next, saving and later restoring the
// outgoing thread's user state around the machine-dependent context
// switch (spec.md §4.6).
func (s *Scheduler) Run(next *ThreadDescriptor, finishing bool) {
	s.assertInterruptsOff("Run")
	old := s.current

	if finishing {
		assert(s.toBeDestroyed == nil, "to_be_destroyed slot already occupied")
		s.toBeDestroyed = old
	}

	if old != nil {
		if old.Space != nil {
			old.Space.SaveUserState()
			old.Space.SaveState()
		}
		old.checkOverflow()
	}

	s.current = next
	next.Status = StatusRunning
	next.LastCPUTick = s.now()

	if s.dispatch != nil {
		s.dispatch(old, next)
	}

	// Control returns here on the revived old thread's stack, exactly as
	// described in spec.md §4.6 step 6.
	s.assertInterruptsOff("Run (post-switch)")
	s.reclaim()

	if old != nil && old.Space != nil {
		old.Space.RestoreUserState()
		old.Space.RestoreState()
	}
}

func (s *Scheduler) reclaim() {
	if s.toBeDestroyed == nil {
		return
	}
	dead := s.toBeDestroyed
	s.toBeDestroyed = nil
	dead.Status = StatusZombie
	if s.onDestroy != nil {
		s.onDestroy(dead)
	}
}

// UpdateEstimate applies the canonical exponential-average burst
// estimation at a yield or end-of-run point (spec.md §9): est' =
// burstAlpha*measuredBurst + (1-burstAlpha)*est.
func (s *Scheduler) UpdateEstimate(thread *ThreadDescriptor, measuredBurst int) {
	thread.GuessCPUBurst = burstAlpha*float64(measuredBurst) + (1-burstAlpha)*thread.GuessCPUBurst
}

// Aging bumps the priority of every queued thread that has gone
// AgingTicks without the CPU. It snapshots each queue before iterating
// so that re-insertion during the pass (which mutates the live queues)
// can never corrupt the iteration itself — the two-pass strategy
// spec.md §9 allows as an alternative to an advance-before-remove
// iterator (spec.md §4.6).
func (s *Scheduler) Aging() {
	s.assertInterruptsOff("Aging")
	now := s.now()

	snapshots := []struct {
		tier  int
		items []*ThreadDescriptor
	}{
		{tierRR, append([]*ThreadDescriptor(nil), s.rr.items...)},
		{tierPriority, append([]*ThreadDescriptor(nil), s.priority.items...)},
		{tierSJF, append([]*ThreadDescriptor(nil), s.sjf.items...)},
	}

	for _, snap := range snapshots {
		for _, t := range snap.items {
			if now-t.LastCPUTick < types.AgingTicks {
				continue
			}
			old := t.Priority
			newPri := old + 10
			if newPri > 149 {
				newPri = 149
			}
			t.Priority = newPri
			s.logger.PriorityChanged(now, t.ID, old, newPri)

			if newPri >= levelGap {
				s.removeFromTier(snap.tier, t)
				s.ReadyToRun(t)
			} else {
				t.LastCPUTick = now
			}
		}
	}
}

func (s *Scheduler) removeFromTier(tier int, t *ThreadDescriptor) {
	switch tier {
	case tierRR:
		s.rr.remove(t)
	case tierPriority:
		s.priority.remove(t)
	case tierSJF:
		s.sjf.remove(t)
	default:
		assert(false, "impossible tier %d", tier)
	}
}

// Demote drops the running thread's priority to the top of the
// next-lower tier once its uninterrupted burst reaches
// DemoteLimitTicks, requesting a yield (spec.md §4.6).
func (s *Scheduler) Demote() {
	s.assertInterruptsOff("Demote")
	if s.current == nil {
		return
	}
	now := s.now()
	burst := now - s.current.LastCPUTick
	if burst < types.DemoteLimitTicks {
		return
	}

	s.current.LastCPUTick = now
	s.current.AccumulatedBurst += burst

	tier := s.current.Tier()
	if tier > 0 {
		old := s.current.Priority
		s.current.Priority = tier*levelGap - 1
		s.yieldOnReturn = true
		s.logger.PriorityChanged(now, s.current.ID, old, s.current.Priority)
	}
}

// Print renders the rr queue's contents, the debugging view
// spec.md §4.6 names.
func (s *Scheduler) Print() string {
	var b strings.Builder
	b.WriteString("Ready list contents:\n")
	for _, t := range s.rr.items {
		fmt.Fprintf(&b, "Thread %d\n", t.ID)
	}
	return b.String()
}
