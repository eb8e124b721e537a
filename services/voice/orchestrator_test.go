package voice

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"superbryn/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T, idle time.Duration) (*Session, *fakeTransport, *fakeSessionStore, chan struct{}) {
	t.Helper()
	transport := newFakeTransport()
	store := &fakeSessionStore{}
	s := NewSession(transport, newTestDispatcher(), store, idle)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	return s, transport, store, done
}

func waitClosed(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("session did not close in time")
	}
}

func resultFrames(frames []interface{}) []*ToolResultFrame {
	var out []*ToolResultFrame
	for _, f := range frames {
		if r, ok := f.(*ToolResultFrame); ok {
			out = append(out, r)
		}
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	s, transport, store, done := startSession(t, time.Minute)

	transport.in <- &InboundFrame{
		Type: FrameSessionConnect, RoomName: "room-1", ContactNumber: "+15551234567",
	}
	transport.in <- &InboundFrame{
		Type: FrameTranscriptAppend, Role: "user", Text: "hi, I'd like to book",
	}
	transport.in <- &InboundFrame{
		Type: FrameUsageReport, Service: "stt", Units: 0.5, UnitKind: models.UnitMinutes,
	}
	transport.in <- &InboundFrame{Type: FrameSessionEnd, Summary: "booked nothing"}

	waitClosed(t, done)
	assert.Equal(t, StateClosed, s.State())

	// Start record persisted with the identified caller.
	store.mu.Lock()
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "+15551234567", store.inserted[0].ContactNumber)
	assert.Equal(t, models.SessionActive, store.inserted[0].Status)
	store.mu.Unlock()

	// Final record: completed, summary, duration, cost, transcript.
	finished := store.finishedSessions()
	require.Len(t, finished, 1)
	final := finished[0]
	assert.Equal(t, models.SessionCompleted, final.Status)
	assert.Equal(t, "booked nothing", final.Summary)
	assert.False(t, final.EndedAt.IsZero())
	assert.InDelta(t, 0.5*0.0043, final.Cost.TotalUSD, 1e-9)
	require.Len(t, final.Transcript, 1)
	assert.Equal(t, "hi, I'd like to book", final.Transcript[0].Text)

	// Wire order: ready first, summary last.
	frames := transport.frames()
	require.NotEmpty(t, frames)
	ready, ok := frames[0].(*ReadyFrame)
	require.True(t, ok)
	assert.Equal(t, s.ID, ready.SessionID)
	require.NotNil(t, ready.CallerContext)
	assert.True(t, ready.CallerContext.Returning)
	summary, ok := frames[len(frames)-1].(*SummaryFrame)
	require.True(t, ok)
	assert.Equal(t, models.SessionCompleted, summary.Status)
}

func TestToolResultsEmittedInSubmissionOrder(t *testing.T) {
	transport := newFakeTransport()
	store := &fakeSessionStore{}

	// The first-submitted tool blocks until released; the second completes
	// immediately. Results must still come out first, second.
	release := make(chan struct{})
	d := newTestDispatcher()
	d.Ledger = &fakeLedger{
		listOpenSlotsFn: func(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error) {
			<-release
			return []models.OpenSlot{{Start: 540, Label: "09:00"}}, nil
		},
	}
	s := NewSession(transport, d, store, time.Minute)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	transport.in <- &InboundFrame{
		Type: FrameToolCall, CallID: "call-slow", Tool: "fetch_slots",
		Args: json.RawMessage(`{"mentorId":"m1","date":"2024-06-01"}`),
	}
	transport.in <- &InboundFrame{Type: FrameToolCall, CallID: "call-fast", Tool: "list_mentors"}

	// Give the fast call time to finish while the slow one is still held.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, resultFrames(transport.frames()))

	close(release)
	transport.in <- &InboundFrame{Type: FrameSessionEnd}
	waitClosed(t, done)

	results := resultFrames(transport.frames())
	require.Len(t, results, 2)
	assert.Equal(t, "call-slow", results[0].CallID)
	assert.Equal(t, "call-fast", results[1].CallID)
	assert.True(t, results[0].OK)
	assert.True(t, results[1].OK)
}

func TestIdentifyToolBindsSession(t *testing.T) {
	s, transport, _, done := startSession(t, time.Minute)

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	transport.in <- &InboundFrame{
		Type: FrameToolCall, CallID: "c1", Tool: "identify_caller",
		Args: json.RawMessage(`{"contactNumber":"5551234567"}`),
	}
	transport.in <- &InboundFrame{
		Type: FrameToolCall, CallID: "c2", Tool: "list_appointments",
	}
	transport.in <- &InboundFrame{Type: FrameSessionEnd}
	waitClosed(t, done)

	assert.Equal(t, "+15551234567", s.ContactNumber())
}

func TestEndSessionToolFinalizesCompleted(t *testing.T) {
	s, transport, store, done := startSession(t, time.Minute)

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	transport.in <- &InboundFrame{
		Type: FrameToolCall, CallID: "c-end", Tool: "end_session",
		Args: json.RawMessage(`{"summary":"booked a friday slot"}`),
	}
	waitClosed(t, done)

	assert.Equal(t, StateClosed, s.State())
	finished := store.finishedSessions()
	require.Len(t, finished, 1)
	assert.Equal(t, models.SessionCompleted, finished[0].Status)
	assert.Equal(t, "booked a friday slot", finished[0].Summary)

	// The end_session call itself is acked as an ordered tool result.
	results := resultFrames(transport.frames())
	require.Len(t, results, 1)
	assert.Equal(t, "c-end", results[0].CallID)
	assert.True(t, results[0].OK)
}

func TestDisconnectFinalizesAbandoned(t *testing.T) {
	s, transport, store, done := startSession(t, time.Minute)

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	// Wait for the connect to land before dropping.
	require.Eventually(t, func() bool { return s.State() == StateActive },
		time.Second, 5*time.Millisecond)
	transport.disconnect()

	waitClosed(t, done)
	assert.Equal(t, StateClosed, s.State())
	finished := store.finishedSessions()
	require.Len(t, finished, 1)
	assert.Equal(t, models.SessionAbandoned, finished[0].Status)
}

func TestIdleTimeoutFinalizesAbandoned(t *testing.T) {
	s, transport, store, done := startSession(t, 60*time.Millisecond)

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	waitClosed(t, done)

	assert.Equal(t, StateClosed, s.State())
	finished := store.finishedSessions()
	require.Len(t, finished, 1)
	assert.Equal(t, models.SessionAbandoned, finished[0].Status)
}

func TestToolCallBeforeConnectRejected(t *testing.T) {
	_, transport, store, done := startSession(t, time.Minute)

	transport.in <- &InboundFrame{Type: FrameToolCall, CallID: "c1", Tool: "list_mentors"}
	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	transport.in <- &InboundFrame{Type: FrameSessionEnd}
	waitClosed(t, done)

	var sawBadState bool
	for _, f := range transport.frames() {
		if ef, ok := f.(*ErrorFrame); ok && ef.Code == "badState" {
			sawBadState = true
		}
	}
	assert.True(t, sawBadState)
	assert.Empty(t, resultFrames(transport.frames()))

	// A pre-connect session that ends never got a start record, but the
	// lifecycle still resolves.
	store.mu.Lock()
	assert.Len(t, store.inserted, 1)
	store.mu.Unlock()
}

func TestFinalizeAbsorbsPersistenceFailure(t *testing.T) {
	transport := newFakeTransport()
	store := &fakeSessionStore{finishErr: assert.AnError}
	s := NewSession(transport, newTestDispatcher(), store, time.Minute)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	transport.in <- &InboundFrame{Type: FrameSessionConnect, RoomName: "room-1"}
	transport.in <- &InboundFrame{Type: FrameSessionEnd}
	waitClosed(t, done)

	// The state machine reaches closed even when the final write fails.
	assert.Equal(t, StateClosed, s.State())
}

func TestRegistryCapacityBound(t *testing.T) {
	r := NewRegistry(2)
	a := NewSession(newFakeTransport(), newTestDispatcher(), &fakeSessionStore{}, time.Minute)
	b := NewSession(newFakeTransport(), newTestDispatcher(), &fakeSessionStore{}, time.Minute)
	c := NewSession(newFakeTransport(), newTestDispatcher(), &fakeSessionStore{}, time.Minute)

	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))
	assert.ErrorIs(t, r.Add(c), ErrCapacity)
	assert.Equal(t, 2, r.Count())

	r.Remove(a.ID)
	assert.NoError(t, r.Add(c))

	snap := r.Snapshot()
	assert.Len(t, snap, 2)
}
