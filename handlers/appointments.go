package handlers

import (
	"errors"
	"net/http"

	callerRepo "superbryn/database/repository/caller"
	"superbryn/models"
	"superbryn/services/scheduling"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
)

// BookAppointment books a slot for the authenticated caller.
func BookAppointment(c *gin.Context) {
	var input struct {
		MentorID string `json:"mentorId" binding:"required"`
		Date     string `json:"date" binding:"required"`
		Time     string `json:"time" binding:"required"` // "HH:MM"
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	timeMin, err := utils.ParseClock(input.Time)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	callerID := c.GetString("subject")
	caller, err := callerByID(c, callerID)
	if err != nil {
		return
	}

	appt, err := Ledger.Book(c.Request.Context(), scheduling.BookRequest{
		CallerID:      callerID,
		ContactNumber: caller.ContactNumber,
		MentorID:      input.MentorID,
		Date:          input.Date,
		Time:          timeMin,
		Notes:         input.Notes,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	IdentityService.InvalidateContext(c.Request.Context(), caller.ContactNumber)
	c.JSON(http.StatusCreated, appt)
}

// ListMyAppointments returns the authenticated caller's appointments.
// ?status=booked,pending narrows the list; default is non-terminal only.
func ListMyAppointments(c *gin.Context) {
	caller, err := callerByID(c, c.GetString("subject"))
	if err != nil {
		return
	}

	statuses := models.NonTerminalStatuses
	if c.Query("status") == "all" {
		statuses = nil
	}
	appts, err := Ledger.ListByCaller(c.Request.Context(), caller.ContactNumber, statuses)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// CancelAppointment cancels one of the caller's appointments.
func CancelAppointment(c *gin.Context) {
	caller, err := callerByID(c, c.GetString("subject"))
	if err != nil {
		return
	}
	if !ownsAppointment(c, caller.ContactNumber) {
		return
	}

	appt, err := Ledger.Cancel(c.Request.Context(), c.Param("id"), "caller")
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	IdentityService.InvalidateContext(c.Request.Context(), caller.ContactNumber)
	c.JSON(http.StatusOK, appt)
}

// RescheduleAppointment moves one of the caller's appointments to a new slot.
func RescheduleAppointment(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	timeMin, err := utils.ParseClock(input.Time)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	caller, err := callerByID(c, c.GetString("subject"))
	if err != nil {
		return
	}
	if !ownsAppointment(c, caller.ContactNumber) {
		return
	}

	appt, err := Ledger.Reschedule(c.Request.Context(), c.Param("id"), input.Date, timeMin)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	IdentityService.InvalidateContext(c.Request.Context(), caller.ContactNumber)
	c.JSON(http.StatusOK, appt)
}

// MentorCalendar returns the authenticated mentor's appointments for a date range.
func MentorCalendar(c *gin.Context) {
	mentorID := c.GetString("subject")
	if c.GetString("role") == "admin" {
		mentorID = c.Query("mentorId")
	}

	appts, err := Ledger.ListByMentor(c.Request.Context(), mentorID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// MarkNoShow lets a mentor flag a missed appointment.
func MarkNoShow(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&input)

	appt, err := Ledger.MarkNoShow(c.Request.Context(), c.Param("id"), input.Notes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// callerByID resolves the token subject to a caller record, writing the
// error response itself on failure.
func callerByID(c *gin.Context, callerID string) (*models.Caller, error) {
	caller, err := Callers.GetByID(c.Request.Context(), callerID)
	if err != nil {
		if errors.Is(err, callerRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "unknown caller", "token subject no longer exists")
		} else {
			utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to resolve caller")
		}
		return nil, err
	}
	return caller, nil
}

// ownsAppointment verifies the appointment belongs to the caller's contact.
func ownsAppointment(c *gin.Context, contactNumber string) bool {
	appt, err := Appointments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "not found", "no such appointment")
		return false
	}
	if appt.ContactNumber != contactNumber {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "appointment belongs to another caller")
		return false
	}
	return true
}
