package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-nachos/kernel/internal/scheduler"
)

type fakeAddressSpace struct {
	saved, restored, savedUser, restoredUser int
}

func (f *fakeAddressSpace) SaveState()       { f.saved++ }
func (f *fakeAddressSpace) RestoreState()    { f.restored++ }
func (f *fakeAddressSpace) SaveUserState()    { f.savedUser++ }
func (f *fakeAddressSpace) RestoreUserState() { f.restoredUser++ }

func TestAttachAddressSpaceStampsUniqueID(t *testing.T) {
	t1 := scheduler.NewThreadDescriptor(1, 10)
	t2 := scheduler.NewThreadDescriptor(2, 10)

	assert.Equal(t, t1.SpaceID, t2.SpaceID, "unattached threads share the zero-value id")

	space1 := &fakeAddressSpace{}
	space2 := &fakeAddressSpace{}
	t1.AttachAddressSpace(space1)
	t2.AttachAddressSpace(space2)

	assert.NotEqual(t, t1.SpaceID, t2.SpaceID, "each attached address space gets its own identifier")
	assert.Same(t, space1, t1.Space)
}

func TestRunSavesAndRestoresOutgoingAddressSpace(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	space := &fakeAddressSpace{}
	outgoing := scheduler.NewThreadDescriptor(1, 10)
	outgoing.AttachAddressSpace(space)
	sched.ReadyToRun(outgoing)
	sched.Run(sched.FindNextToRun(), false)

	incoming := scheduler.NewThreadDescriptor(2, 10)
	sched.ReadyToRun(incoming)
	sched.Run(sched.FindNextToRun(), false)

	assert.Equal(t, 1, space.saved)
	assert.Equal(t, 1, space.savedUser)
	assert.Equal(t, 1, space.restored)
	assert.Equal(t, 1, space.restoredUser)
}
