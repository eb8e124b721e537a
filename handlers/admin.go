package handlers

import (
	"net/http"
	"strconv"

	appointmentRepo "superbryn/database/repository/appointment"
	"superbryn/models"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListAllAppointments is the admin-wide appointment listing.
// ?status, ?mentorId, ?from and ?to narrow the result.
func ListAllAppointments(c *gin.Context) {
	appts, err := Appointments.ListAll(c.Request.Context(), appointmentRepo.ListFilter{
		Status:   c.Query("status"),
		MentorID: c.Query("mentorId"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	})
	if err != nil {
		utils.GetLogger().Error("admin appointment listing failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to list appointments")
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

// ListCallers pages through the caller directory (admin only).
func ListCallers(c *gin.Context) {
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	callers, err := Callers.List(c.Request.Context(), skip, limit)
	if err != nil {
		utils.GetLogger().Error("caller listing failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to list callers")
		return
	}
	if callers == nil {
		callers = []models.Caller{}
	}
	c.JSON(http.StatusOK, callers)
}

// AdminStats aggregates the operational dashboard numbers: appointment counts
// by status, session counts, caller and mentor totals, and all-time AI spend.
func AdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	logger := utils.GetLogger()

	byStatus, err := Appointments.CountByStatus(ctx)
	if err != nil {
		logger.Error("appointment stats query failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	totalSessions, activeSessions, err := Sessions.CountSessions(ctx)
	if err != nil {
		logger.Error("session stats query failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	totalCost, err := Sessions.TotalCost(ctx)
	if err != nil {
		logger.Error("cost stats query failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	callerCount, err := Callers.Count(ctx)
	if err != nil {
		logger.Error("caller count failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	mentorCount, err := Mentors.Count(ctx)
	if err != nil {
		logger.Error("mentor count failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointmentsByStatus": byStatus,
		"sessions": gin.H{
			"total":  totalSessions,
			"active": activeSessions,
			"live":   Registry.Count(),
		},
		"totalCostUsd": totalCost,
		"callers":      callerCount,
		"mentors":      mentorCount,
	})
}
