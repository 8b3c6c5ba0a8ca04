package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/metrics"
	"member-tracker-go/internal/transport/httpserver/handler"
	authmw "member-tracker-go/internal/transport/httpserver/middleware"
	"member-tracker-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, members authmw.MemberResolver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.AllowedOrigins))

	r.Handle("/metrics", metrics.Handler())

	limits := authmw.NewRateLimiters(cfg.RateLimit, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewJWTAuth(cfg.Auth, members, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/members/me", handlers.GetMemberMe)
			r.Patch("/members/me", handlers.UpdateMemberMe)
			r.Get("/members/lookup", handlers.LookupMember)

			r.Get("/semesters", handlers.ListSemesters)
			r.Get("/semesters/current", handlers.CurrentSemester)
			r.Post("/semesters", handlers.CreateSemester)

			r.Get("/organizations", handlers.ListOrganizations)
			r.Post("/organizations", handlers.CreateOrganization)

			r.Route("/organizations/{org_id}", func(r chi.Router) {
				r.Get("/", handlers.GetOrganization)
				r.Patch("/", handlers.UpdateOrganization)

				r.Get("/requirements", handlers.ListRequirements)
				r.Post("/requirements", handlers.CreateRequirement)
				r.Put("/requirements/{requirement_id}", handlers.UpdateRequirement)
				r.Delete("/requirements/{requirement_id}", handlers.DeleteRequirement)

				r.Get("/email-settings", handlers.GetEmailSettings)
				r.Post("/email-settings", handlers.CreateEmailSettings)
				r.Put("/email-settings", handlers.UpdateEmailSettings)
				r.Get("/dispatches", handlers.ListDispatches)

				r.Post("/join", handlers.JoinOrganization)
				r.Get("/me/memberships", handlers.ListMyMemberships)
				r.Get("/memberships", handlers.ListMemberships)
				r.Post("/memberships", handlers.AddMembership)
				r.Get("/memberships/{membership_id}", handlers.GetMembership)
				r.Delete("/memberships/{membership_id}", handlers.DeleteMembership)
				r.Patch("/memberships/{membership_id}/role", handlers.UpdateMembershipRole)
				r.Patch("/memberships/{membership_id}/points", handlers.AdjustMembershipPoints)
				r.Get("/memberships/{membership_id}/status", handlers.MembershipStatus)
				r.Post("/memberships/{membership_id}/recompute", handlers.RecomputeMembership)

				r.Get("/events", handlers.ListEvents)
				r.Post("/events", handlers.CreateEvent)
				r.Get("/events/counts", handlers.EventCounts)
				r.Get("/events/{event_id}", handlers.GetEvent)
				r.Put("/events/{event_id}", handlers.UpdateEvent)
				r.Delete("/events/{event_id}", handlers.DeleteEvent)

				r.Get("/events/{event_id}/attendance", handlers.ListAttendance)
				r.Post("/events/{event_id}/attendance", handlers.RecordAttendance)
				r.Post("/events/{event_id}/check-in", handlers.CheckIn)
				r.With(limits.Imports).Post("/events/{event_id}/import", handlers.ImportAttendance)

				r.Group(func(r chi.Router) {
					r.Use(limits.Reports)
					r.Get("/reports/semester", handlers.SemesterReport)
					r.Get("/reports/annual", handlers.AnnualReport)
					r.Get("/reports/members/{member_id}", handlers.MemberReport)
				})
			})
		})
	})

	return r
}
