package handlers

import (
	"errors"
	"net/http"
	"strconv"

	sessionRepo "superbryn/database/repository/session"
	"superbryn/models"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
)

// ListSessions pages through persisted voice sessions (admin only).
func ListSessions(c *gin.Context) {
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	sessions, err := Sessions.ListSessions(c.Request.Context(), c.Query("status"), skip, limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []models.VoiceSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session record, transcript and cost breakdown included.
func GetSession(c *gin.Context) {
	session, err := Sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sessionRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", "no such session")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to load session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionCosts returns the raw usage log of one session.
func GetSessionCosts(c *gin.Context) {
	entries, err := Sessions.CostEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to load cost log")
		return
	}
	if entries == nil {
		entries = []models.CostEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// ListLiveSessions snapshots the in-memory registry.
func ListLiveSessions(c *gin.Context) {
	c.JSON(http.StatusOK, Registry.Snapshot())
}
