package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/pnjanonbot/PNJHelper/core/logger"

	"log/slog"
)

var (
	// ErrAdminBusy is returned by StartSession while the admin already has a partner.
	ErrAdminBusy = errors.New("relay: admin already in a session")
	// ErrAlreadyInSession is returned by StartSession for a user that already has a partner.
	ErrAlreadyInSession = errors.New("relay: user already in a session")
	// ErrIsAdmin is returned by StartSession when the admin is passed as the user side.
	ErrIsAdmin = errors.New("relay: admin is not a queueable user")
)

// AdmissionStatus enumerates the outcomes of a queue admission request.
type AdmissionStatus int

const (
	// StatusQueued means the user was appended to the queue.
	StatusQueued AdmissionStatus = iota
	// StatusAlreadyQueued means the user was in the queue before the request.
	StatusAlreadyQueued
	// StatusAlreadyInSession means the user currently has an active session.
	StatusAlreadyInSession
	// StatusQueueFull means the queue is at capacity.
	StatusQueueFull
	// StatusIsAdmin means the admin identity was asked to queue.
	StatusIsAdmin
)

// Admission is the result of RequestAdmission. Position and Total are set for
// StatusQueued and StatusAlreadyQueued.
type Admission struct {
	Status   AdmissionStatus
	Position int
	Total    int
	// StartNow reports that the user became queue head while the admin is
	// free; the caller must follow up with StartSession.
	StartNow bool
}

// EndReason says why a session ended.
type EndReason int

const (
	// ReasonStopped marks an explicit stop by either participant.
	ReasonStopped EndReason = iota
	// ReasonTimeout marks expiry of the inactivity window.
	ReasonTimeout
)

// Events receives session lifecycle notifications. Callbacks run after the
// coordinator has released its lock and may be invoked from timer goroutines.
type Events interface {
	SessionStarted(user int64)
	SessionEnded(user int64, reason EndReason)
}

// Options configures a Coordinator.
type Options struct {
	AdminID      int64
	MaxQueueSize int
	Timeout      time.Duration
	Events       Events
}

const defaultTimeout = 300 * time.Second

// Coordinator owns the waiting queue, the active-chat map, and one inactivity
// timer per active session. Every operation takes the single mutex, so queue
// admission, session start, and session end are atomic with respect to each
// other.
type Coordinator struct {
	mu        sync.Mutex
	queue     *Queue
	active    map[int64]int64
	startedAt map[int64]time.Time
	timers    map[int64]*time.Timer
	// timerSeq invalidates fires that lost a race against a cancel or
	// re-arm; entries are never deleted so stale callbacks can never
	// collide with a recycled generation.
	timerSeq map[int64]uint64

	adminID int64
	timeout time.Duration
	events  Events
}

// NewCoordinator builds a Coordinator for a single fixed admin identity.
func NewCoordinator(opts Options) *Coordinator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	max := opts.MaxQueueSize
	if max < 1 {
		max = 10
	}
	return &Coordinator{
		queue:     NewQueue(max),
		active:    make(map[int64]int64),
		startedAt: make(map[int64]time.Time),
		timers:    make(map[int64]*time.Timer),
		timerSeq:  make(map[int64]uint64),
		adminID:   opts.AdminID,
		timeout:   timeout,
		events:    opts.Events,
	}
}

// Admin returns the configured admin identity.
func (c *Coordinator) Admin() int64 {
	return c.adminID
}

// RequestAdmission applies the Idle -> Queued transition for user. Rejections
// are reported as a status, not an error; no state changes on rejection.
func (c *Coordinator) RequestAdmission(user int64) Admission {
	c.mu.Lock()
	defer c.mu.Unlock()

	if user == c.adminID {
		return Admission{Status: StatusIsAdmin}
	}
	if _, ok := c.active[user]; ok {
		return Admission{Status: StatusAlreadyInSession}
	}
	if pos := c.queue.Position(user); pos > 0 {
		return Admission{Status: StatusAlreadyQueued, Position: pos, Total: c.queue.Len()}
	}
	if !c.queue.Push(user) {
		return Admission{Status: StatusQueueFull, Total: c.queue.Len()}
	}

	pos := c.queue.Len()
	_, adminBusy := c.active[c.adminID]
	res := Admission{
		Status:   StatusQueued,
		Position: pos,
		Total:    pos,
		StartNow: pos == 1 && !adminBusy,
	}
	logger.Info(logger.Background(), "relay.queue", "queue.admitted",
		slog.Int64("user_id", user),
		slog.Int("position", res.Position),
		slog.Int("queue_len", res.Total),
	)
	return res
}

// LeaveQueue removes a waiting user from the queue. It reports whether the
// user was actually waiting.
func (c *Coordinator) LeaveQueue(user int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue.Position(user) == 0 {
		return false
	}
	c.queue.Remove(user)
	logger.Info(logger.Background(), "relay.queue", "queue.left",
		slog.Int64("user_id", user),
		slog.Int("queue_len", c.queue.Len()),
	)
	return true
}

// Position returns the user's 1-indexed queue position and the queue total.
func (c *Coordinator) Position(user int64) (pos, total int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos = c.queue.Position(user)
	if pos == 0 {
		return 0, 0, false
	}
	return pos, c.queue.Len(), true
}

// QueueLen returns the number of waiting users.
func (c *Coordinator) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// Head returns the next waiting user without removing it.
func (c *Coordinator) Head() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Head()
}

// InSession reports whether user currently has an active partner.
func (c *Coordinator) InSession(user int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[user]
	return ok
}

// Partner returns the active partner of user, if any.
func (c *Coordinator) Partner(user int64) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	partner, ok := c.active[user]
	return partner, ok
}

// SessionDuration returns the elapsed time of the user's current session.
func (c *Coordinator) SessionDuration(user int64) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start, ok := c.startedAt[user]
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// StartSession applies the Queued -> InSession transition for user. Calling it
// while the admin already has a partner is a caller error and is rejected
// rather than overwriting the existing session.
func (c *Coordinator) StartSession(user int64) error {
	c.mu.Lock()
	if user == c.adminID {
		c.mu.Unlock()
		return ErrIsAdmin
	}
	if _, busy := c.active[c.adminID]; busy {
		c.mu.Unlock()
		return ErrAdminBusy
	}
	if _, ok := c.active[user]; ok {
		c.mu.Unlock()
		return ErrAlreadyInSession
	}
	c.startLocked(user)
	c.mu.Unlock()

	c.emitStarted(user)
	return nil
}

// EndSession tears down the session between a and b. It succeeds when the pair
// is currently mapped to each other (in either order) and is a no-op
// otherwise. A waiting head, if any, is promoted into a fresh session within
// the same serialized step, before any later admission can observe the free
// slot.
func (c *Coordinator) EndSession(a, b int64) bool {
	c.mu.Lock()
	user, ok := c.sessionUserLocked(a, b)
	if !ok {
		c.mu.Unlock()
		return false
	}
	next, promoted := c.endLocked(user)
	c.mu.Unlock()

	c.emitEnded(user, ReasonStopped)
	if promoted {
		c.emitStarted(next)
	}
	return true
}

// RelayActivity resolves the sender's active partner and re-arms the session's
// inactivity timer. It returns false when the sender has no active session;
// callers deliver the content themselves and must only call this after a
// successful delivery, so a failed forward never counts as activity.
func (c *Coordinator) RelayActivity(sender int64) (int64, bool) {
	c.mu.Lock()
	partner, ok := c.active[sender]
	if !ok {
		c.mu.Unlock()
		return 0, false
	}
	sessionUser := sender
	if sender == c.adminID {
		sessionUser = partner
	}
	c.armTimerLocked(sessionUser)
	c.mu.Unlock()
	return partner, true
}

// CancelTimer stops the inactivity timer for user. Cancelling an absent timer
// is a no-op, so the call is idempotent.
func (c *Coordinator) CancelTimer(user int64) {
	c.mu.Lock()
	c.cancelTimerLocked(user)
	c.mu.Unlock()
}

// Stop cancels all timers. Used on shutdown.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	for user := range c.timers {
		c.cancelTimerLocked(user)
	}
	c.mu.Unlock()
}

// startLocked installs the session state for user. Preconditions are checked
// by the callers.
func (c *Coordinator) startLocked(user int64) {
	c.queue.Remove(user)
	c.active[user] = c.adminID
	c.active[c.adminID] = user
	c.startedAt[user] = time.Now()
	c.armTimerLocked(user)
}

// endLocked removes the session of user and promotes the waiting head, if
// any, into a fresh session. It returns the promoted user.
func (c *Coordinator) endLocked(user int64) (int64, bool) {
	delete(c.active, user)
	delete(c.active, c.adminID)
	delete(c.startedAt, user)
	c.cancelTimerLocked(user)

	next, ok := c.queue.Head()
	if !ok {
		return 0, false
	}
	c.startLocked(next)
	return next, true
}

// sessionUserLocked returns the non-admin participant iff a and b form the
// currently active pair.
func (c *Coordinator) sessionUserLocked(a, b int64) (int64, bool) {
	if c.active[a] != b || c.active[b] != a {
		return 0, false
	}
	switch c.adminID {
	case a:
		return b, true
	case b:
		return a, true
	}
	return 0, false
}

func (c *Coordinator) armTimerLocked(user int64) {
	// one live timer per user: arming replaces any previous one
	c.cancelTimerLocked(user)
	seq := c.timerSeq[user]
	c.timers[user] = time.AfterFunc(c.timeout, func() {
		c.onTimeoutFired(user, seq)
	})
}

func (c *Coordinator) cancelTimerLocked(user int64) {
	c.timerSeq[user]++
	if t, ok := c.timers[user]; ok {
		t.Stop()
		delete(c.timers, user)
	}
}

// onTimeoutFired runs on the timer goroutine after the inactivity window
// elapsed without a reset. Both the generation and the mapping are re-checked
// under the lock: a fire racing an explicit stop or a re-arm finds one of the
// checks failing and backs off.
func (c *Coordinator) onTimeoutFired(user int64, seq uint64) {
	c.mu.Lock()
	if c.timerSeq[user] != seq || c.active[user] != c.adminID {
		c.mu.Unlock()
		return
	}
	next, promoted := c.endLocked(user)
	c.mu.Unlock()

	logger.Info(logger.Background(), "relay", "session.timeout",
		slog.Int64("user_id", user),
	)
	c.emitEnded(user, ReasonTimeout)
	if promoted {
		c.emitStarted(next)
	}
}

func (c *Coordinator) emitStarted(user int64) {
	logger.Info(logger.Background(), "relay", "session.start",
		slog.Int64("user_id", user),
		slog.Int64("partner_id", c.adminID),
	)
	if c.events != nil {
		c.events.SessionStarted(user)
	}
}

func (c *Coordinator) emitEnded(user int64, reason EndReason) {
	logger.Info(logger.Background(), "relay", "session.end",
		slog.Int64("user_id", user),
		slog.String("reason", reason.String()),
	)
	if c.events != nil {
		c.events.SessionEnded(user, reason)
	}
}

// String renders the reason for logs.
func (r EndReason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	default:
		return "stopped"
	}
}
