package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "superbryn/database/repository/appointment"
	availabilityRepo "superbryn/database/repository/availability"
	"superbryn/models"
	"superbryn/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLedger implements Ledger on top of the appointment and availability
// repositories. The double-booking race is closed by the backing store's
// uniqueness constraint, not by in-process locking.
type DefaultLedger struct {
	Appointments appointmentRepo.AppointmentRepository
	Availability availabilityRepo.AvailabilityRepository
}

// ListOpenSlots joins the slot calculator output with the currently
// non-terminal appointments for (mentor, date). Reads may be momentarily
// stale; Book re-validates at the store.
func (l *DefaultLedger) ListOpenSlots(ctx context.Context, mentorID, date string) ([]models.OpenSlot, error) {
	window, err := l.Availability.GetWindow(ctx, mentorID, date)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load availability window: %w", err)
	}

	times, err := SlotTimes(window.Start, window.End, window.SlotDuration)
	if err != nil {
		return nil, err
	}

	booked, err := l.Appointments.ListNonTerminal(ctx, mentorID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}
	taken := make(map[int]bool, len(booked))
	for _, appt := range booked {
		taken[appt.Time] = true
	}

	slots := make([]models.OpenSlot, 0, len(times))
	for _, t := range times {
		slots = append(slots, models.OpenSlot{
			Start:    t,
			End:      t + window.SlotDuration,
			Label:    utils.FormatClock(t),
			Duration: window.SlotDuration,
			Taken:    taken[t],
		})
	}
	return slots, nil
}

// Book atomically reserves a slot. Status goes straight to booked; there is
// no separate confirmation phase.
func (l *DefaultLedger) Book(ctx context.Context, req BookRequest) (*models.Appointment, error) {
	logger := utils.GetLogger()

	// 1. Validate the slot against the mentor's window.
	_, duration, err := l.validateSlot(ctx, req.MentorID, req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	// 2. Build the appointment record.
	now := time.Now().UTC()
	appt := &models.Appointment{
		ID:            uuid.New().String(),
		CallerID:      req.CallerID,
		ContactNumber: req.ContactNumber,
		MentorID:      req.MentorID,
		Date:          req.Date,
		Time:          req.Time,
		Duration:      duration,
		Status:        models.StatusBooked,
		CallerNotes:   req.Notes,
		EndAt:         slotEnd(req.Date, req.Time, duration),
		CreatedAt:     now,
	}

	// 3. Insert; the store's uniqueness check is the atomic claim.
	if err := l.Appointments.Insert(ctx, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotConflict) {
			return nil, NewSlotTakenError("%s at %s with mentor %s is already booked",
				req.Date, utils.FormatClock(req.Time), req.MentorID)
		}
		return nil, fmt.Errorf("failed to book slot: %w", err)
	}

	logger.Info("appointment booked",
		zap.String("appointmentID", appt.ID),
		zap.String("mentorID", req.MentorID),
		zap.String("date", req.Date),
		zap.String("time", utils.FormatClock(req.Time)))
	return appt, nil
}

// Cancel transitions a non-terminal appointment to cancelled.
func (l *DefaultLedger) Cancel(ctx context.Context, appointmentID, actor string) (*models.Appointment, error) {
	appt, err := l.Appointments.Transition(ctx, appointmentID, models.StatusCancelled)
	if err != nil {
		return nil, translateRepoErr(err, appointmentID)
	}

	utils.GetLogger().Info("appointment cancelled",
		zap.String("appointmentID", appointmentID),
		zap.String("actor", actor))
	return appt, nil
}

// Reschedule atomically moves an appointment to a new slot. A lost race
// leaves the original appointment untouched.
func (l *DefaultLedger) Reschedule(ctx context.Context, appointmentID, newDate string, newTime int) (*models.Appointment, error) {
	// 1. The target must be a valid slot in the mentor's new-date window.
	current, err := l.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, translateRepoErr(err, appointmentID)
	}
	if models.IsTerminalStatus(current.Status) {
		return nil, NewAlreadyTerminalError("appointment %s is already %s", appointmentID, current.Status)
	}

	_, duration, err := l.validateSlot(ctx, current.MentorID, newDate, newTime)
	if err != nil {
		return nil, err
	}

	// 2. Single atomic move; the uniqueness constraint rejects occupied targets.
	moved, err := l.Appointments.Move(ctx, appointmentID, newDate, newTime, slotEnd(newDate, newTime, duration))
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotConflict) {
			return nil, NewSlotTakenError("%s at %s with mentor %s is already booked",
				newDate, utils.FormatClock(newTime), current.MentorID)
		}
		return nil, translateRepoErr(err, appointmentID)
	}

	utils.GetLogger().Info("appointment rescheduled",
		zap.String("appointmentID", appointmentID),
		zap.String("newDate", newDate),
		zap.String("newTime", utils.FormatClock(newTime)))
	return moved, nil
}

// ListByCaller returns a caller's appointments, optionally filtered by status.
func (l *DefaultLedger) ListByCaller(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error) {
	return l.Appointments.ListByContact(ctx, contactNumber, statuses)
}

// ListByMentor returns a mentor's appointments within a date range.
func (l *DefaultLedger) ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error) {
	return l.Appointments.ListByMentor(ctx, mentorID, fromDate, toDate)
}

// MarkNoShow is the out-of-band mentor annotation on a missed appointment.
func (l *DefaultLedger) MarkNoShow(ctx context.Context, appointmentID, mentorNotes string) (*models.Appointment, error) {
	appt, err := l.Appointments.Transition(ctx, appointmentID, models.StatusNoShow)
	if err != nil {
		return nil, translateRepoErr(err, appointmentID)
	}
	if mentorNotes != "" {
		if err := l.Appointments.SetMentorNotes(ctx, appointmentID, mentorNotes); err != nil {
			utils.GetLogger().Warn("failed to record no-show notes",
				zap.String("appointmentID", appointmentID), zap.Error(err))
		}
	}
	return appt, nil
}

// SweepCompleted transitions elapsed booked appointments to completed.
// Idempotent and safe to run concurrently.
func (l *DefaultLedger) SweepCompleted(ctx context.Context, now time.Time) (int64, error) {
	n, err := l.Appointments.SweepCompleted(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("completion sweep failed: %w", err)
	}
	if n > 0 {
		utils.GetLogger().Info("completion sweep finished", zap.Int64("transitioned", n))
	}
	return n, nil
}

// validateSlot checks that (date, time) is one of the candidate slots in the
// mentor's window and returns the window plus slot duration.
func (l *DefaultLedger) validateSlot(ctx context.Context, mentorID, date string, timeMin int) (*models.AvailabilityWindow, int, error) {
	window, err := l.Availability.GetWindow(ctx, mentorID, date)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return nil, 0, NewNotFoundError("mentor %s has no availability on %s", mentorID, date)
		}
		return nil, 0, fmt.Errorf("failed to load availability window: %w", err)
	}

	times, err := SlotTimes(window.Start, window.End, window.SlotDuration)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range times {
		if t == timeMin {
			return window, window.SlotDuration, nil
		}
	}
	return nil, 0, NewNotFoundError("no %s slot at %s for mentor %s",
		date, utils.FormatClock(timeMin), mentorID)
}

// slotEnd computes the absolute UTC end instant of a slot. Dates are naive
// calendar dates; the sweep treats them as UTC.
func slotEnd(date string, timeMin, duration int) time.Time {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(timeMin+duration) * time.Minute)
}

func translateRepoErr(err error, id string) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return NewNotFoundError("appointment %s not found", id)
	case errors.Is(err, appointmentRepo.ErrTerminal):
		return NewAlreadyTerminalError("appointment %s is already terminal", id)
	default:
		return err
	}
}
