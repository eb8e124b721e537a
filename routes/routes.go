package routes

import (
	"net/http"
	"time"

	"superbryn/handlers"
	"superbryn/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the three login surfaces.
func RegisterAuthRoutes(r *gin.Engine) {
	api := r.Group("/api/auth")
	{
		api.POST("/caller", handlers.CallerToken)
		api.POST("/mentor/login", handlers.MentorLogin)
		api.POST("/admin/login", handlers.AdminLogin)
	}
}

// RegisterMentorRoutes registers the mentor directory and profile endpoints.
func RegisterMentorRoutes(r *gin.Engine) {
	api := r.Group("/api/mentors")
	{
		// Public directory and slot listing.
		api.GET("", handlers.ListMentors)
		api.GET("/:id", handlers.GetMentor)
		api.GET("/:id/slots", handlers.GetOpenSlots)

		// Profile edits require a mentor or admin token.
		api.PATCH("/:id", middleware.RequireRole("mentor", "admin"), handlers.UpdateMentor)
		api.POST("", middleware.RequireRole("admin"), handlers.CreateMentor)
		api.DELETE("/:id", middleware.RequireRole("admin"), handlers.DeactivateMentor)
	}
}

// RegisterAvailabilityRoutes registers mentor open-window management.
func RegisterAvailabilityRoutes(r *gin.Engine) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.RequireRole("mentor", "admin"))
		api.PUT("", handlers.SetAvailability)
		api.GET("", handlers.ListAvailability)
		api.DELETE("/:windowId", handlers.RemoveAvailability)
	}
}

// RegisterAppointmentRoutes registers caller-facing booking endpoints and the
// mentor calendar.
func RegisterAppointmentRoutes(r *gin.Engine) {
	api := r.Group("/api/appointments")
	{
		caller := api.Group("")
		caller.Use(middleware.RequireRole("user"))
		caller.POST("", handlers.BookAppointment)
		caller.GET("", handlers.ListMyAppointments)
		caller.DELETE("/:id", handlers.CancelAppointment)
		caller.PUT("/:id", handlers.RescheduleAppointment)

		mentorSide := api.Group("")
		mentorSide.Use(middleware.RequireRole("mentor", "admin"))
		mentorSide.GET("/calendar", handlers.MentorCalendar)
		mentorSide.POST("/:id/no-show", handlers.MarkNoShow)
	}
}

// RegisterSessionRoutes registers the voice session surfaces: the live
// websocket for the agent and the admin-facing history.
func RegisterSessionRoutes(r *gin.Engine) {
	r.GET("/ws/session", handlers.LiveSession)

	api := r.Group("/api/sessions")
	{
		api.Use(middleware.RequireRole("admin"))
		api.GET("", handlers.ListSessions)
		api.GET("/live", handlers.ListLiveSessions)
		api.GET("/:id", handlers.GetSession)
		api.GET("/:id/costs", handlers.GetSessionCosts)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.RequireRole("admin"))
		api.GET("/stats", handlers.AdminStats)
		api.GET("/appointments", handlers.ListAllAppointments)
		api.GET("/callers", handlers.ListCallers)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Superbryn"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r)
	RegisterMentorRoutes(r)
	RegisterAvailabilityRoutes(r)
	RegisterAppointmentRoutes(r)
	RegisterSessionRoutes(r)
	RegisterAdminRoutes(r)
}
