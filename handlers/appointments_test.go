package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	callerRepo "superbryn/database/repository/caller"
	"superbryn/models"
	"superbryn/services/scheduling"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitializeLogger()
}

// stubLedger serves canned scheduling results to the HTTP layer.
type stubLedger struct {
	slots   []models.OpenSlot
	bookErr error
}

func (s *stubLedger) ListOpenSlots(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error) {
	return s.slots, nil
}

func (s *stubLedger) Book(ctx context.Context, req scheduling.BookRequest) (*models.Appointment, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &models.Appointment{
		ID: "appt-1", CallerID: req.CallerID, ContactNumber: req.ContactNumber,
		MentorID: req.MentorID, Date: req.Date, Time: req.Time,
		Status: models.StatusBooked,
	}, nil
}

func (s *stubLedger) Cancel(ctx context.Context, appointmentID, actor string) (*models.Appointment, error) {
	return &models.Appointment{ID: appointmentID, Status: models.StatusCancelled}, nil
}

func (s *stubLedger) Reschedule(ctx context.Context, appointmentID, newDate string, newTime int) (*models.Appointment, error) {
	return &models.Appointment{ID: appointmentID, Date: newDate, Time: newTime}, nil
}

func (s *stubLedger) ListByCaller(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error) {
	return nil, nil
}

func (s *stubLedger) ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error) {
	return nil, nil
}

func (s *stubLedger) MarkNoShow(ctx context.Context, appointmentID, mentorNotes string) (*models.Appointment, error) {
	return &models.Appointment{ID: appointmentID, Status: models.StatusNoShow, MentorNotes: mentorNotes}, nil
}

func (s *stubLedger) SweepCompleted(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubCallerRepo struct {
	caller *models.Caller
}

func (s *stubCallerRepo) GetOrCreate(ctx context.Context, contactNumber, name string) (*models.Caller, error) {
	return s.caller, nil
}

func (s *stubCallerRepo) GetByID(ctx context.Context, id string) (*models.Caller, error) {
	if s.caller != nil && s.caller.ID == id {
		return s.caller, nil
	}
	return nil, callerRepo.ErrNotFound
}

func (s *stubCallerRepo) GetByContact(ctx context.Context, contactNumber string) (*models.Caller, error) {
	return s.caller, nil
}

func (s *stubCallerRepo) List(ctx context.Context, skip, limit int64) ([]models.Caller, error) {
	return nil, nil
}

func (s *stubCallerRepo) Count(ctx context.Context) (int64, error) { return 1, nil }

type stubIdentity struct{}

func (stubIdentity) Identify(ctx context.Context, rawContact, name string) (*models.Caller, error) {
	return &models.Caller{ID: "caller-1", ContactNumber: "+15551234567"}, nil
}

func (stubIdentity) Context(ctx context.Context, contactNumber string) (*models.CallerContext, error) {
	return &models.CallerContext{}, nil
}

func (stubIdentity) InvalidateContext(ctx context.Context, contactNumber string) {}

func setupBookingTest(ledger *stubLedger) *gin.Engine {
	Ledger = ledger
	Callers = &stubCallerRepo{caller: &models.Caller{ID: "caller-1", ContactNumber: "+15551234567"}}
	IdentityService = stubIdentity{}

	r := gin.New()
	r.POST("/api/appointments", func(c *gin.Context) {
		c.Set("subject", "caller-1")
		c.Set("role", "user")
		BookAppointment(c)
	})
	r.GET("/api/mentors/:id/slots", GetOpenSlots)
	return r
}

func TestBookAppointmentEndpoint(t *testing.T) {
	r := setupBookingTest(&stubLedger{})

	body, _ := json.Marshal(gin.H{"mentorId": "m1", "date": "2024-06-01", "time": "09:00"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appt))
	assert.Equal(t, 540, appt.Time)
	assert.Equal(t, "+15551234567", appt.ContactNumber)
}

func TestBookAppointmentSlotTakenIs409(t *testing.T) {
	r := setupBookingTest(&stubLedger{bookErr: scheduling.NewSlotTakenError("already booked")})

	body, _ := json.Marshal(gin.H{"mentorId": "m1", "date": "2024-06-01", "time": "09:00"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookAppointmentBadClock(t *testing.T) {
	r := setupBookingTest(&stubLedger{})

	body, _ := json.Marshal(gin.H{"mentorId": "m1", "date": "2024-06-01", "time": "nine"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOpenSlotsEndpoint(t *testing.T) {
	r := setupBookingTest(&stubLedger{slots: []models.OpenSlot{
		{Start: 540, End: 600, Label: "09:00", Duration: 60},
		{Start: 600, End: 660, Label: "10:00", Duration: 60, Taken: true},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/mentors/m1/slots?date=2024-06-01", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		MentorID string            `json:"mentorId"`
		Slots    []models.OpenSlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m1", resp.MentorID)
	require.Len(t, resp.Slots, 2)
	assert.True(t, resp.Slots[1].Taken)

	// Missing date is a 400.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/mentors/m1/slots", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
