package orders

import (
	"container/heap"
	"time"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

// pendingAction is a deferred state-machine call: the receipt of a
// confirmed purchase order or the delivery of a confirmed sales order,
// due after its lead time elapses.
type pendingAction struct {
	due    time.Time
	model  string
	method string
	id     int64
	origin string
	kind   entities.MovementKind
}

// actionQueue is a min-heap of pending actions ordered by due date, with
// origin as the tiebreaker so draining order is deterministic.
type actionQueue []pendingAction

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	if !q[i].due.Equal(q[j].due) {
		return q[i].due.Before(q[j].due)
	}
	return q[i].origin < q[j].origin
}

func (q actionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *actionQueue) Push(x any) { *q = append(*q, x.(pendingAction)) }

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *actionQueue) add(a pendingAction) {
	heap.Push(q, a)
}

// dueBy pops every action due on or before the given day; a zero day
// drains the whole queue.
func (q *actionQueue) dueBy(day time.Time) []pendingAction {
	var due []pendingAction
	for q.Len() > 0 {
		next := (*q)[0]
		if !day.IsZero() && next.due.After(day) {
			break
		}
		due = append(due, heap.Pop(q).(pendingAction))
	}
	return due
}
