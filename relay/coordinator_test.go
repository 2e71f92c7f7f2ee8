package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdmin int64 = 9000

type endedEvent struct {
	user   int64
	reason EndReason
}

// eventRec records lifecycle callbacks; channels are buffered so timer
// goroutines never block on an unread event.
type eventRec struct {
	started chan int64
	ended   chan endedEvent
}

func newEventRec() *eventRec {
	return &eventRec{
		started: make(chan int64, 16),
		ended:   make(chan endedEvent, 16),
	}
}

func (r *eventRec) SessionStarted(user int64) {
	r.started <- user
}

func (r *eventRec) SessionEnded(user int64, reason EndReason) {
	r.ended <- endedEvent{user, reason}
}

func (r *eventRec) waitStarted(t *testing.T) int64 {
	t.Helper()
	select {
	case u := <-r.started:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no session start observed")
		return 0
	}
}

func (r *eventRec) waitEnded(t *testing.T) endedEvent {
	t.Helper()
	select {
	case e := <-r.ended:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no session end observed")
		return endedEvent{}
	}
}

func (r *eventRec) assertNoEnd(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case e := <-r.ended:
		t.Fatalf("unexpected session end: user=%d reason=%s", e.user, e.reason)
	case <-time.After(within):
	}
}

func newTestCoordinator(t *testing.T, opts Options) (*Coordinator, *eventRec) {
	t.Helper()
	rec := newEventRec()
	if opts.AdminID == 0 {
		opts.AdminID = testAdmin
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Hour
	}
	opts.Events = rec
	co := NewCoordinator(opts)
	t.Cleanup(co.Stop)
	return co, rec
}

func TestRequestAdmissionAdminRejected(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	adm := co.RequestAdmission(testAdmin)
	assert.Equal(t, StatusIsAdmin, adm.Status)
	assert.Equal(t, 0, co.QueueLen())
}

func TestRequestAdmissionFirstUserStartsNow(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{})

	adm := co.RequestAdmission(1)
	require.Equal(t, StatusQueued, adm.Status)
	assert.Equal(t, 1, adm.Position)
	assert.Equal(t, 1, adm.Total)
	assert.True(t, adm.StartNow)

	require.NoError(t, co.StartSession(1))
	assert.Equal(t, int64(1), rec.waitStarted(t))

	assert.True(t, co.InSession(1))
	assert.True(t, co.InSession(testAdmin))
	assert.Equal(t, 0, co.QueueLen())

	partner, ok := co.Partner(1)
	require.True(t, ok)
	assert.Equal(t, testAdmin, partner)
	partner, ok = co.Partner(testAdmin)
	require.True(t, ok)
	assert.Equal(t, int64(1), partner)
}

func TestRequestAdmissionWhileAdminBusy(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))

	adm := co.RequestAdmission(2)
	require.Equal(t, StatusQueued, adm.Status)
	assert.Equal(t, 1, adm.Position)
	assert.False(t, adm.StartNow)

	adm = co.RequestAdmission(2)
	assert.Equal(t, StatusAlreadyQueued, adm.Status)
	assert.Equal(t, 1, adm.Position)

	adm = co.RequestAdmission(1)
	assert.Equal(t, StatusAlreadyInSession, adm.Status)
}

func TestRequestAdmissionQueueFull(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{MaxQueueSize: 2})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))

	require.Equal(t, StatusQueued, co.RequestAdmission(2).Status)
	require.Equal(t, StatusQueued, co.RequestAdmission(3).Status)

	adm := co.RequestAdmission(4)
	assert.Equal(t, StatusQueueFull, adm.Status)
	assert.Equal(t, 2, co.QueueLen())

	// rejection leaves no trace
	_, _, ok := co.Position(4)
	assert.False(t, ok)
}

func TestStartSessionRejections(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	assert.ErrorIs(t, co.StartSession(testAdmin), ErrIsAdmin)

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))

	assert.ErrorIs(t, co.StartSession(1), ErrAlreadyInSession)
	assert.ErrorIs(t, co.StartSession(2), ErrAdminBusy)
}

func TestEndSessionPromotesHeadInOrder(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)
	co.RequestAdmission(2)
	co.RequestAdmission(3)

	require.True(t, co.EndSession(1, testAdmin))
	assert.Equal(t, int64(1), rec.waitEnded(t).user)
	assert.Equal(t, int64(2), rec.waitStarted(t))

	// promotion happened atomically with the teardown
	assert.True(t, co.InSession(2))
	pos, total, ok := co.Position(3)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, total)

	require.True(t, co.EndSession(testAdmin, 2))
	assert.Equal(t, int64(2), rec.waitEnded(t).user)
	assert.Equal(t, int64(3), rec.waitStarted(t))

	require.True(t, co.EndSession(3, testAdmin))
	e := rec.waitEnded(t)
	assert.Equal(t, int64(3), e.user)
	assert.Equal(t, ReasonStopped, e.reason)
	assert.False(t, co.InSession(testAdmin))
}

func TestEndSessionRequiresActivePair(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	assert.False(t, co.EndSession(1, testAdmin))

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))

	assert.False(t, co.EndSession(2, testAdmin))
	assert.False(t, co.EndSession(1, 2))
	assert.True(t, co.InSession(1))
}

func TestLeaveQueue(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	co.RequestAdmission(2)
	co.RequestAdmission(3)

	assert.True(t, co.LeaveQueue(2))
	assert.False(t, co.LeaveQueue(2))
	assert.False(t, co.LeaveQueue(1))

	pos, _, ok := co.Position(3)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
}

func TestSessionDuration(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	_, ok := co.SessionDuration(1)
	assert.False(t, ok)

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))

	dur, ok := co.SessionDuration(1)
	require.True(t, ok)
	assert.GreaterOrEqual(t, dur, time.Duration(0))
}

func TestInactivityTimeoutEndsSession(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 50 * time.Millisecond})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)

	e := rec.waitEnded(t)
	assert.Equal(t, int64(1), e.user)
	assert.Equal(t, ReasonTimeout, e.reason)
	assert.False(t, co.InSession(1))
	assert.False(t, co.InSession(testAdmin))
}

func TestInactivityTimeoutPromotesNext(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 50 * time.Millisecond})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)
	co.RequestAdmission(2)

	e := rec.waitEnded(t)
	assert.Equal(t, int64(1), e.user)
	assert.Equal(t, ReasonTimeout, e.reason)
	assert.Equal(t, int64(2), rec.waitStarted(t))
	assert.True(t, co.InSession(2))
}

func TestRelayActivityExtendsSession(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 300 * time.Millisecond})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)

	// keep the session alive past the original deadline
	for i := 0; i < 3; i++ {
		time.Sleep(150 * time.Millisecond)
		partner, ok := co.RelayActivity(1)
		require.True(t, ok)
		assert.Equal(t, testAdmin, partner)
	}
	rec.assertNoEnd(t, 100*time.Millisecond)

	// admin activity resets the same timer
	partner, ok := co.RelayActivity(testAdmin)
	require.True(t, ok)
	assert.Equal(t, int64(1), partner)

	e := rec.waitEnded(t)
	assert.Equal(t, ReasonTimeout, e.reason)
}

func TestRelayActivityWithoutSession(t *testing.T) {
	co, _ := newTestCoordinator(t, Options{})

	_, ok := co.RelayActivity(1)
	assert.False(t, ok)
	_, ok = co.RelayActivity(testAdmin)
	assert.False(t, ok)
}

func TestExplicitStopBeatsTimer(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 60 * time.Millisecond})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)

	require.True(t, co.EndSession(1, testAdmin))
	e := rec.waitEnded(t)
	assert.Equal(t, ReasonStopped, e.reason)

	// the armed timer must not produce a second end
	rec.assertNoEnd(t, 150*time.Millisecond)
}

func TestCancelTimerIsIdempotent(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 60 * time.Millisecond})

	co.CancelTimer(1)
	co.CancelTimer(1)

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)

	co.CancelTimer(1)
	co.CancelTimer(1)
	rec.assertNoEnd(t, 150*time.Millisecond)
	assert.True(t, co.InSession(1))
}

func TestStopCancelsAllTimers(t *testing.T) {
	co, rec := newTestCoordinator(t, Options{Timeout: 60 * time.Millisecond})

	co.RequestAdmission(1)
	require.NoError(t, co.StartSession(1))
	rec.waitStarted(t)

	co.Stop()
	rec.assertNoEnd(t, 150*time.Millisecond)
}
