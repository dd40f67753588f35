package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/caps-platform/scheduling-backend/internal/handlers"
	"github.com/caps-platform/scheduling-backend/internal/middleware"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

// SetupRoutes mounts the scheduling API. internalKey gates the session-minting
// routes used by the identity collaborator.
func SetupRoutes(r *chi.Mux, internalKey string) {
	// Session minting (identity collaborator only, X-Internal-Key)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireInternalKey(internalKey))
		r.Post("/api/internal/sessions", handlers.CreateSession)
		r.Post("/api/internal/sessions/revoke", handlers.DeleteSession)
	})

	// Everything else requires a resolved actor
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)

		// Availability and matching
		r.Post("/api/availability", handlers.MarkAvailability)
		r.Post("/api/slots/student/request", handlers.RequestAppointment)

		// Slot reads and state changes (role checks live in the handlers,
		// ownership depends on the slot being acted on)
		r.Get("/api/slots", handlers.ListSlots)
		r.Get("/api/slots/{id}", handlers.GetSlot)
		r.Post("/api/slots/{id}/cancel", handlers.CancelSlot)
		r.Post("/api/slots/{id}/complete", handlers.CompleteSlot)
		r.Post("/api/slots/{id}/assign", handlers.AssignSlot)

		// Cancellation requests (ownership checked in the handler)
		r.Post("/api/scheduling/cancellations", handlers.CreateCancellation)

		// Student request listings (own or admin, checked in the handler)
		r.Get("/api/scheduling/student-requests/student/{studentID}", handlers.ListStudentRequestsByStudent)

		// Admin-only scheduling operations
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(scheduling.RoleAdmin))
			r.Post("/api/scheduling/process-pending-requests", handlers.ProcessPendingRequests)
			r.Get("/api/scheduling/weekly-schedule", handlers.GetWeeklySchedule)
			r.Get("/api/scheduling/therapist-submissions", handlers.ListTherapistSubmissions)
			r.Get("/api/scheduling/therapist-submissions/{id}", handlers.GetTherapistSubmission)
			r.Post("/api/scheduling/therapist-submissions/{id}/process", handlers.ProcessTherapistSubmission)
			r.Get("/api/scheduling/cancellations", handlers.ListCancellations)
			r.Post("/api/scheduling/cancellations/{id}/process", handlers.ProcessCancellation)
			r.Get("/api/scheduling/student-requests", handlers.ListStudentRequests)
			r.Get("/api/admin/audit", handlers.GetAuditLog)
		})
	})
}
