package handlers

import (
	"errors"
	"net/http"
	"time"

	"superbryn/config"
	"superbryn/services/identity"
	"superbryn/services/mentor"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const callerTokenTTL = 24 * time.Hour

// CallerToken issues a caller-scoped token from a phone number. Voice callers
// never hit this; it serves app and web clients reusing the same ledger.
func CallerToken(c *gin.Context) {
	var input struct {
		ContactNumber string `json:"contactNumber" binding:"required"`
		Name          string `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	caller, err := IdentityService.Identify(c.Request.Context(), input.ContactNumber, input.Name)
	if err != nil {
		if _, normErr := identity.NormalizePhone(input.ContactNumber); normErr != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid contact number", normErr.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to resolve caller")
		return
	}

	token, err := utils.GenerateToken(caller.ID, "user", callerTokenTTL)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to mint token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "caller": caller})
}

// MentorLogin authenticates a mentor and returns a bearer token.
func MentorLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	token, m, err := MentorService.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, mentor.ErrInvalidCredentials) {
			utils.JSONError(c, http.StatusUnauthorized, "authentication failed", "invalid email or password")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "login failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "mentor": m})
}

// AdminLogin authenticates against the configured admin credentials.
func AdminLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	cfg := config.AppConfig
	if cfg.AdminPasswordHash == "" || input.Email != cfg.AdminEmail ||
		bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(input.Password)) != nil {
		utils.JSONError(c, http.StatusUnauthorized, "authentication failed", "invalid email or password")
		return
	}

	token, err := utils.GenerateToken("admin", "admin", 12*time.Hour)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "failed to mint token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
