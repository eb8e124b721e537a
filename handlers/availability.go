package handlers

import (
	"net/http"

	"superbryn/models"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
)

// SetAvailability upserts the authenticated mentor's window for one date.
func SetAvailability(c *gin.Context) {
	var input struct {
		Date         string `json:"date" binding:"required"`
		Start        string `json:"start" binding:"required"` // "HH:MM"
		End          string `json:"end" binding:"required"`   // "HH:MM"
		SlotDuration int    `json:"slotDuration"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	mentorID := c.GetString("subject")
	window, err := MentorService.SetAvailability(c.Request.Context(),
		mentorID, input.Date, input.Start, input.End, input.SlotDuration)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, window)
}

// ListAvailability returns the authenticated mentor's windows in a date range.
func ListAvailability(c *gin.Context) {
	mentorID := c.GetString("subject")
	if c.GetString("role") == "admin" {
		mentorID = c.Query("mentorId")
	}
	windows, err := MentorService.ListAvailability(c.Request.Context(),
		mentorID, c.Query("from"), c.Query("to"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to list windows")
		return
	}
	c.JSON(http.StatusOK, windows)
}

// RemoveAvailability deletes one window by id.
func RemoveAvailability(c *gin.Context) {
	if err := MentorService.RemoveAvailability(c.Request.Context(), c.Param("windowId")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to remove window")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// GetOpenSlots is the public slot listing for one mentor and date.
func GetOpenSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "date query parameter is required")
		return
	}

	slots, err := Ledger.ListOpenSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	if slots == nil {
		slots = []models.OpenSlot{}
	}
	c.JSON(http.StatusOK, gin.H{"mentorId": c.Param("id"), "date": date, "slots": slots})
}
