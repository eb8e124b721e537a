package voice

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"superbryn/models"
	"superbryn/services/scheduling"
	"superbryn/utils"
)

func init() {
	utils.InitializeLogger()
}

// fakeTransport is an in-memory frame pipe standing in for the websocket.
type fakeTransport struct {
	in        chan *InboundFrame
	mu        sync.Mutex
	out       []interface{}
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan *InboundFrame, 32),
		closed: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadFrame() (*InboundFrame, error) {
	select {
	case f, ok := <-t.in:
		if !ok {
			return nil, io.EOF
		}
		return f, nil
	case <-t.closed:
		return nil, io.EOF
	}
}

func (t *fakeTransport) WriteJSON(v interface{}) error {
	select {
	case <-t.closed:
		return errors.New("transport closed")
	default:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = append(t.out, v)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) frames() []interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]interface{}, len(t.out))
	copy(out, t.out)
	return out
}

// disconnect simulates the peer dropping without a close frame.
func (t *fakeTransport) disconnect() {
	close(t.in)
}

// fakeSessionStore records persistence calls; error injection per method.
type fakeSessionStore struct {
	mu          sync.Mutex
	inserted    []*models.VoiceSession
	finished    []*models.VoiceSession
	costEntries []*models.CostEntry
	insertErr   error
	finishErr   error
	costErr     error
}

func (f *fakeSessionStore) InsertSession(ctx context.Context, s *models.VoiceSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *s
	f.inserted = append(f.inserted, &cp)
	return nil
}

func (f *fakeSessionStore) FinishSession(ctx context.Context, s *models.VoiceSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishErr != nil {
		return f.finishErr
	}
	cp := *s
	f.finished = append(f.finished, &cp)
	return nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, id string) (*models.VoiceSession, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSessionStore) ListSessions(ctx context.Context, status string, skip, limit int64) ([]models.VoiceSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) ListByContact(ctx context.Context, contactNumber string, limit int64) ([]models.VoiceSession, error) {
	return nil, nil
}

func (f *fakeSessionStore) InsertCostEntry(ctx context.Context, entry *models.CostEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.costErr != nil {
		return f.costErr
	}
	cp := *entry
	f.costEntries = append(f.costEntries, &cp)
	return nil
}

func (f *fakeSessionStore) CostEntries(ctx context.Context, sessionID string) ([]models.CostEntry, error) {
	return nil, nil
}

func (f *fakeSessionStore) TotalCost(ctx context.Context) (float64, error) { return 0, nil }

func (f *fakeSessionStore) CountSessions(ctx context.Context) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeSessionStore) finishedSessions() []*models.VoiceSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.VoiceSession, len(f.finished))
	copy(out, f.finished)
	return out
}

// fakeLedger implements scheduling.Ledger with programmable hooks.
type fakeLedger struct {
	listOpenSlotsFn func(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error)
	bookFn          func(ctx context.Context, req scheduling.BookRequest) (*models.Appointment, error)
}

func (f *fakeLedger) ListOpenSlots(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error) {
	if f.listOpenSlotsFn != nil {
		return f.listOpenSlotsFn(ctx, mentorID, date)
	}
	return nil, nil
}

func (f *fakeLedger) Book(ctx context.Context, req scheduling.BookRequest) (*models.Appointment, error) {
	if f.bookFn != nil {
		return f.bookFn(ctx, req)
	}
	return &models.Appointment{
		ID: "appt-1", MentorID: req.MentorID, Date: req.Date, Time: req.Time,
		ContactNumber: req.ContactNumber, Status: models.StatusBooked,
	}, nil
}

func (f *fakeLedger) Cancel(ctx context.Context, appointmentID, actor string) (*models.Appointment, error) {
	return &models.Appointment{ID: appointmentID, Status: models.StatusCancelled}, nil
}

func (f *fakeLedger) Reschedule(ctx context.Context, appointmentID, newDate string, newTime int) (*models.Appointment, error) {
	return &models.Appointment{ID: appointmentID, Date: newDate, Time: newTime, Status: models.StatusBooked}, nil
}

func (f *fakeLedger) ListByCaller(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeLedger) ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeLedger) MarkNoShow(ctx context.Context, appointmentID, mentorNotes string) (*models.Appointment, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLedger) SweepCompleted(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// fakeIdentity resolves every number to a fixed caller.
type fakeIdentity struct {
	identifyErr error
}

func (f *fakeIdentity) Identify(ctx context.Context, rawContact, name string) (*models.Caller, error) {
	if f.identifyErr != nil {
		return nil, f.identifyErr
	}
	return &models.Caller{
		ID: "caller-1", ContactNumber: "+15551234567", Name: name, Active: true,
	}, nil
}

func (f *fakeIdentity) Context(ctx context.Context, contactNumber string) (*models.CallerContext, error) {
	return &models.CallerContext{
		Caller:    models.Caller{ID: "caller-1", ContactNumber: contactNumber},
		Returning: true,
	}, nil
}

func (f *fakeIdentity) InvalidateContext(ctx context.Context, contactNumber string) {}

// fakeMentorRepo serves a static mentor list.
type fakeMentorRepo struct {
	mentors []models.Mentor
}

func (f *fakeMentorRepo) Create(ctx context.Context, m *models.Mentor) error { return nil }

func (f *fakeMentorRepo) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	for i := range f.mentors {
		if f.mentors[i].ID == id {
			return &f.mentors[i], nil
		}
	}
	return nil, errors.New("mentor not found")
}

func (f *fakeMentorRepo) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMentorRepo) List(ctx context.Context, activeOnly bool) ([]models.Mentor, error) {
	return f.mentors, nil
}

func (f *fakeMentorRepo) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Mentor, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMentorRepo) Deactivate(ctx context.Context, id string) error { return nil }

func (f *fakeMentorRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.mentors)), nil
}

func newTestDispatcher() *Dispatcher {
	return &Dispatcher{
		Ledger:   &fakeLedger{},
		Identity: &fakeIdentity{},
		Mentors:  &fakeMentorRepo{mentors: []models.Mentor{{ID: "m1", Name: "Ada", Active: true}}},
	}
}
