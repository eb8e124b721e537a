package handlers

import (
	"net/http"

	appointmentRepo "superbryn/database/repository/appointment"
	availabilityRepo "superbryn/database/repository/availability"
	callerRepo "superbryn/database/repository/caller"
	mentorRepo "superbryn/database/repository/mentor"
	sessionRepo "superbryn/database/repository/session"
	"superbryn/services/identity"
	"superbryn/services/mentor"
	"superbryn/services/scheduling"
	"superbryn/services/voice"
	"superbryn/utils"

	"github.com/gin-gonic/gin"
)

// Shared service instances, wired by InitServices after the database and
// cache connections are up.
var (
	Appointments appointmentRepo.AppointmentRepository
	Callers      callerRepo.CallerRepository
	Mentors      mentorRepo.MentorRepository
	Sessions     sessionRepo.SessionRepository

	Ledger          scheduling.Ledger
	IdentityService identity.Service
	MentorService   mentor.Service
	Registry        *voice.Registry
	ToolDispatcher  *voice.Dispatcher
)

// InitServices wires the handler-level services. Call once at startup, after
// database.InitDB and the Redis clients.
func InitServices(registry *voice.Registry) {
	Appointments = appointmentRepo.NewMongoAppointmentRepo()
	Callers = callerRepo.NewMongoCallerRepo()
	Mentors = mentorRepo.NewMongoMentorRepo()
	Sessions = sessionRepo.NewMongoSessionRepo()
	availability := availabilityRepo.NewMongoAvailabilityRepo()

	Ledger = &scheduling.DefaultLedger{
		Appointments: Appointments,
		Availability: availability,
	}
	IdentityService = &identity.DefaultIdentityService{
		Callers:  Callers,
		Sessions: Sessions,
		Ledger:   Ledger,
		Cache:    utils.GetContextCacheClient(),
	}
	MentorService = &mentor.DefaultMentorService{
		Mentors:      Mentors,
		Availability: availability,
	}
	ToolDispatcher = &voice.Dispatcher{
		Ledger:   Ledger,
		Identity: IdentityService,
		Mentors:  Mentors,
	}
	Registry = registry
}

// respondSchedulingError maps the scheduling taxonomy onto HTTP statuses.
// Non-taxonomy errors become opaque 500s.
func respondSchedulingError(c *gin.Context, err error) {
	switch scheduling.CodeOf(err) {
	case scheduling.CodeInvalidWindow:
		utils.JSONError(c, http.StatusBadRequest, "invalid window", err.Error())
	case scheduling.CodeSlotTaken:
		utils.JSONError(c, http.StatusConflict, "slot taken", err.Error())
	case scheduling.CodeNotFound:
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case scheduling.CodeAlreadyTerminal:
		utils.JSONError(c, http.StatusConflict, "already terminal", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "operation failed")
	}
}
