package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-nachos/kernel/internal/scheduler"
)

var schedCmd = &cobra.Command{
	Use:   "sched",
	Short: "Run a scripted scheduler trace and print its log",
	RunE: func(cmd *cobra.Command, args []string) error {
		runSchedDemo(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schedCmd)
}

// runSchedDemo walks through the L1-preemption and aging-promotion
// scenarios from spec.md §8 against a manually driven virtual clock,
// printing every scheduler log line to out.
func runSchedDemo(out *os.File) {
	tick := 0
	now := func() int { return tick }
	level := scheduler.IntOff
	intLevel := func() scheduler.IntLevel { return level }

	logger := scheduler.NewLogger(out)
	sched := scheduler.New(now, intLevel, logger)

	t1 := scheduler.NewThreadDescriptor(1, 120)
	t1.GuessCPUBurst = 100
	sched.ReadyToRun(t1)
	running := sched.FindNextToRun()
	sched.Run(running, false)

	fmt.Fprintln(out, "--- T2 (lower estimated burst) becomes ready ---")
	t2 := scheduler.NewThreadDescriptor(2, 120)
	t2.GuessCPUBurst = 10
	sched.ReadyToRun(t2)
	if sched.YieldRequested() {
		fmt.Fprintln(out, "preemption requested: T2 should run next")
		sched.ReadyToRun(sched.Current())
		sched.Run(sched.FindNextToRun(), false)
	}

	fmt.Fprintln(out, "--- advancing clock past the aging window for an rr-tier thread ---")
	tc := scheduler.NewThreadDescriptor(3, 45)
	tc.LastCPUTick = 0
	sched.ReadyToRun(tc)
	tick = 1600
	sched.Aging()
}
