package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
)

type Deps struct {
	Availability    *handlers.AvailabilityHandler
	Booking         *handlers.BookingHandler
	Candidate       *handlers.CandidateHandler
	Interview       *handlers.InterviewHandler
	Billing         *handlers.BillingHandler
	Engagement      *handlers.EngagementHandler
	NotificationLog *handlers.NotificationLogHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Confirmation links are emailed to interviewers; the token is the
	// credential, so no JWT here.
	r.GET("/confirmation/:token", d.Booking.Confirm)
	r.POST("/confirmation/:token", d.Booking.Confirm)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	// Interviewer self-service.
	interviewer := auth.Group("/")
	interviewer.Use(middleware.RequireRole("interviewer", "admin"))
	interviewer.POST("/availability", d.Availability.Create)
	interviewer.GET("/availability", d.Availability.ListMine)
	interviewer.GET("/interviews/:id/feedback", d.Interview.GetFeedback)
	interviewer.PUT("/interviews/:id/feedback", d.Interview.SaveFeedbackDraft)
	interviewer.POST("/interviews/:id/feedback/submit", d.Interview.SubmitFeedback)

	// Client operators.
	client := auth.Group("/")
	client.Use(middleware.RequireRole("client", "admin"))
	client.POST("/candidates", d.Candidate.Create)
	client.GET("/candidates/:id", d.Candidate.Get)
	client.POST("/candidates/:id/archive", d.Candidate.Archive)
	client.POST("/bookings", d.Booking.Dispatch)
	client.GET("/interviewers/:interviewer_id/availability", d.Availability.ListForInterviewer)
	client.GET("/interviews/:id", d.Interview.Get)
	client.GET("/interviews/:id/history", d.Interview.History)
	client.POST("/engagements", d.Engagement.Create)
	client.POST("/engagements/:id/operations", d.Engagement.ScheduleOperations)
	client.GET("/engagements/:id/operations", d.Engagement.ListOperations)
	client.POST("/operations/:id/reschedule", d.Engagement.RescheduleOperation)
	client.POST("/operations/:id/cancel", d.Engagement.CancelOperation)

	// Internal operations.
	admin := auth.Group("/")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/interviews/:id/reschedule", d.Interview.Reschedule)
	admin.GET("/billing", d.Billing.List)
	admin.GET("/notifications", d.NotificationLog.List)
}
