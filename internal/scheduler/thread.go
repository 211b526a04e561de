package scheduler

import "github.com/google/uuid"

// Status is a thread's coarse execution state.
type Status int

const (
	StatusNew Status = iota
	StatusReady
	StatusRunning
	StatusBlocked
	StatusZombie
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusBlocked:
		return "BLOCKED"
	case StatusZombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// AddressSpace is the owning handle a user thread holds on its page
// table and user register file. It is an interface, not a concrete
// type, so scheduler does not need to know anything about memory
// layout — only that outgoing/incoming threads get a save/restore hook
// (spec.md §4.6, Run steps 2 and 6).
type AddressSpace interface {
	SaveState()
	RestoreState()
	SaveUserState()
	RestoreUserState()
}

// stackCanary is written at thread creation and checked on every
// context switch out. A mismatch means the thread's stack overflowed
// into its descriptor — a programmer error, not a runtime error, so it
// trips an assertion rather than returning an error (spec.md §7).
const stackCanary = 0x5a5a5a5a

// ThreadDescriptor carries everything the scheduler needs to order,
// preempt, and account for one thread. Per the design note in
// spec.md §9, the thread owns its AddressSpace; the AddressSpace must
// never hold an owning pointer back to the thread, only a weak
// (lookup-only) one, if it needs one at all — this type simply never
// gives it one.
type ThreadDescriptor struct {
	ID       int
	Priority int // [0, 149]
	Status   Status

	LastCPUTick      int
	AccumulatedBurst int
	GuessCPUBurst    float64 // exponential average, canonical α = 0.5

	Space   AddressSpace // nil for kernel threads
	SpaceID uuid.UUID    // zero value until AttachAddressSpace is called

	canary int32
}

// NewThreadDescriptor returns a thread ready for admission at priority
// pri, with no CPU-burst history yet (GuessCPUBurst starts at 0, the
// Nachos default for a thread that has never run).
func NewThreadDescriptor(id, pri int) *ThreadDescriptor {
	return &ThreadDescriptor{
		ID:       id,
		Priority: pri,
		Status:   StatusNew,
		canary:   stackCanary,
	}
}

// AttachAddressSpace gives a user thread ownership of space, stamping
// it with a fresh identifier in place of the original's raw C pointer
// identity (spec.md §9).
func (t *ThreadDescriptor) AttachAddressSpace(space AddressSpace) {
	t.Space = space
	t.SpaceID = uuid.New()
}

// Tier returns the scheduler queue class this thread currently belongs
// in: 0 = rr, 1 = priority, 2 = sjf.
func (t *ThreadDescriptor) Tier() int { return t.Priority / levelGap }

// checkOverflow trips an assertion if the thread's stack canary has
// been clobbered (spec.md §4.6 Run step 3).
func (t *ThreadDescriptor) checkOverflow() {
	assert(t.canary == stackCanary, "thread %d stack canary corrupted", t.ID)
}
