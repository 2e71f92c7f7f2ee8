package relay

// Queue keeps the FIFO admission order of users waiting for a session.
// It has no locking of its own: the Coordinator is its single writer and
// serializes every access.
type Queue struct {
	entries []int64
	max     int
}

// NewQueue creates an empty queue bounded to max entries.
func NewQueue(max int) *Queue {
	if max < 1 {
		max = 1
	}
	return &Queue{max: max}
}

// Push appends user to the tail. It reports false without mutation when the
// user is already queued or the queue is at capacity.
func (q *Queue) Push(user int64) bool {
	if q.Contains(user) {
		return false
	}
	if len(q.entries) >= q.max {
		return false
	}
	q.entries = append(q.entries, user)
	return true
}

// Contains reports whether user is queued.
func (q *Queue) Contains(user int64) bool {
	return q.Position(user) > 0
}

// Position returns the 1-indexed distance from head, or 0 when absent.
func (q *Queue) Position(user int64) int {
	for i, id := range q.entries {
		if id == user {
			return i + 1
		}
	}
	return 0
}

// Len returns the number of queued users.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Cap returns the configured maximum queue size.
func (q *Queue) Cap() int {
	return q.max
}

// Head returns the next user without removing it.
func (q *Queue) Head() (int64, bool) {
	if len(q.entries) == 0 {
		return 0, false
	}
	return q.entries[0], true
}

// PopHead removes and returns the head of the queue.
func (q *Queue) PopHead() (int64, bool) {
	if len(q.entries) == 0 {
		return 0, false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// Remove deletes user from any position. Removing an absent user is a no-op.
func (q *Queue) Remove(user int64) {
	for i, id := range q.entries {
		if id == user {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}
