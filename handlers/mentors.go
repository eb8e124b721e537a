package handlers

import (
	"errors"
	"net/http"

	mentorRepo "superbryn/database/repository/mentor"
	"superbryn/services/mentor"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
)

// CreateMentor onboards a new mentor (admin only).
func CreateMentor(c *gin.Context) {
	var req mentor.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	m, err := MentorService.Create(c.Request.Context(), req)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to create mentor")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListMentors returns the active mentor directory. Admins see inactive
// mentors too via ?all=true.
func ListMentors(c *gin.Context) {
	activeOnly := c.Query("all") != "true" || c.GetString("role") != "admin"
	mentors, err := MentorService.List(c.Request.Context(), activeOnly)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to list mentors")
		return
	}
	c.JSON(http.StatusOK, mentors)
}

// GetMentor returns one mentor profile.
func GetMentor(c *gin.Context) {
	m, err := MentorService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mentorRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", "no such mentor")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to load mentor")
		return
	}
	m.PasswordHash = ""
	c.JSON(http.StatusOK, m)
}

// UpdateMentor applies profile changes. Mentors may edit themselves; admins
// may edit anyone.
func UpdateMentor(c *gin.Context) {
	id := c.Param("id")
	if c.GetString("role") == "mentor" && c.GetString("subject") != id {
		utils.JSONError(c, http.StatusForbidden, "forbidden", "mentors may only edit their own profile")
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	// Credentials never change through this path.
	delete(fields, "password_hash")
	delete(fields, "email")
	delete(fields, "id")

	m, err := MentorService.Update(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, mentorRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", "no such mentor")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to update mentor")
		return
	}
	m.PasswordHash = ""
	c.JSON(http.StatusOK, m)
}

// DeactivateMentor soft-deletes a mentor (admin only).
func DeactivateMentor(c *gin.Context) {
	if err := MentorService.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, mentorRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "not found", "no such mentor")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to deactivate mentor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
