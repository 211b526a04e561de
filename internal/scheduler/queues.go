package scheduler

import (
	"sort"

	"github.com/go-nachos/kernel/internal/types"
)

const levelGap = types.LevelGap

const (
	tierRR = iota
	tierPriority
	tierSJF
)

// levelLabel converts an internal tier number to the L1/L2/L3 label
// spec.md §6's log lines use: tier 2 (sjf) is L1, tier 0 (rr) is L3.
func levelLabel(tier int) int { return 3 - tier }

// rrQueue is a plain FIFO: append to the tail, remove from the head.
type rrQueue struct {
	items []*ThreadDescriptor
}

func (q *rrQueue) empty() bool { return len(q.items) == 0 }

func (q *rrQueue) append(t *ThreadDescriptor) { q.items = append(q.items, t) }

func (q *rrQueue) removeFront() *ThreadDescriptor {
	if q.empty() {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

func (q *rrQueue) remove(t *ThreadDescriptor) bool {
	for i, cur := range q.items {
		if cur == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// priorityQueue keeps threads sorted by (priority DESC, id ASC), the
// ordering a static-priority tier needs so the front element is always
// next to run.
type priorityQueue struct {
	items []*ThreadDescriptor
}

func priorityLess(a, b *ThreadDescriptor) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

func (q *priorityQueue) empty() bool { return len(q.items) == 0 }

func (q *priorityQueue) insert(t *ThreadDescriptor) {
	i := sort.Search(len(q.items), func(i int) bool { return priorityLess(t, q.items[i]) || t == q.items[i] })
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = t
}

func (q *priorityQueue) removeFront() *ThreadDescriptor {
	if q.empty() {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

func (q *priorityQueue) remove(t *ThreadDescriptor) bool {
	for i, cur := range q.items {
		if cur == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// sjfQueue keeps threads sorted by (estimated burst ASC, id ASC).
type sjfQueue struct {
	items []*ThreadDescriptor
}

func sjfLess(a, b *ThreadDescriptor) bool {
	if a.GuessCPUBurst != b.GuessCPUBurst {
		return a.GuessCPUBurst < b.GuessCPUBurst
	}
	return a.ID < b.ID
}

func (q *sjfQueue) empty() bool { return len(q.items) == 0 }

func (q *sjfQueue) insert(t *ThreadDescriptor) {
	i := sort.Search(len(q.items), func(i int) bool { return sjfLess(t, q.items[i]) || t == q.items[i] })
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = t
}

func (q *sjfQueue) removeFront() *ThreadDescriptor {
	if q.empty() {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

func (q *sjfQueue) remove(t *ThreadDescriptor) bool {
	for i, cur := range q.items {
		if cur == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
