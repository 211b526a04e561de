package scheduler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-nachos/kernel/internal/scheduler"
)

func newTestScheduler(tick *int) (*scheduler.Scheduler, *bytes.Buffer) {
	var buf bytes.Buffer
	now := func() int { return *tick }
	level := func() scheduler.IntLevel { return scheduler.IntOff }
	return scheduler.New(now, level, scheduler.NewLogger(&buf)), &buf
}

// Scenario 5, spec.md §8: SJF preemption at L1.
func TestL1PreemptionBySJF(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	t1 := scheduler.NewThreadDescriptor(1, 120)
	t1.GuessCPUBurst = 100
	sched.ReadyToRun(t1)
	running := sched.FindNextToRun()
	require.Equal(t, t1, running)
	sched.Run(running, false)

	t2 := scheduler.NewThreadDescriptor(2, 120)
	t2.GuessCPUBurst = 10
	sched.ReadyToRun(t2)

	assert.True(t, sched.YieldRequested(), "lower-estimate thread at L1 should request preemption")

	sched.ReadyToRun(sched.Current())
	next := sched.FindNextToRun()
	assert.Equal(t, t2, next)
}

// Scenario 6, spec.md §8: aging promotes a thread across a tier boundary.
func TestAgingPromotesAcrossTier(t *testing.T) {
	tick := 0
	sched, buf := newTestScheduler(&tick)

	tc := scheduler.NewThreadDescriptor(3, 45)
	tc.LastCPUTick = 0
	sched.ReadyToRun(tc)

	tick = 1600
	sched.Aging()

	assert.Equal(t, 55, tc.Priority)
	assert.Contains(t, buf.String(), "Thread 3 changes its priority from 45 to 55")
}

func TestAgingCapsAtMaxPriority(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	t1 := scheduler.NewThreadDescriptor(1, 145)
	t1.LastCPUTick = 0
	sched.ReadyToRun(t1)

	tick = 1500
	sched.Aging()

	assert.Equal(t, 149, t1.Priority)
}

func TestDemoteDropsToTopOfLowerTier(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	t1 := scheduler.NewThreadDescriptor(1, 130)
	sched.ReadyToRun(t1)
	sched.Run(sched.FindNextToRun(), false)

	tick = 100
	sched.Demote()

	assert.Equal(t, 99, t1.Priority)
	assert.True(t, sched.YieldRequested())
}

func TestFindNextToRunPrefersSJFOverPriorityOverRR(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	rr := scheduler.NewThreadDescriptor(1, 10)
	pri := scheduler.NewThreadDescriptor(2, 60)
	sjf := scheduler.NewThreadDescriptor(3, 110)
	sjf.GuessCPUBurst = 5

	sched.ReadyToRun(rr)
	sched.ReadyToRun(pri)
	sched.ReadyToRun(sjf)

	assert.Equal(t, sjf, sched.FindNextToRun())
	assert.Equal(t, pri, sched.FindNextToRun())
	assert.Equal(t, rr, sched.FindNextToRun())
	assert.Nil(t, sched.FindNextToRun())
}

func TestUpdateEstimateAppliesExponentialAverage(t *testing.T) {
	tick := 0
	sched, _ := newTestScheduler(&tick)

	th := scheduler.NewThreadDescriptor(1, 100)
	th.GuessCPUBurst = 20

	sched.UpdateEstimate(th, 10)

	assert.Equal(t, 15.0, th.GuessCPUBurst)
}
