package httpserver

import (
	"net/http"
	"time"

	"colors-app-go/internal/config"
	"colors-app-go/internal/metrics"
	"colors-app-go/internal/transport/httpserver/handler"
	authmw "colors-app-go/internal/transport/httpserver/middleware"
	"colors-app-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Middlewares are built by the app so that background cleanup can be attached
// to the same instances the router uses.
type Middlewares struct {
	Auth           func(http.Handler) http.Handler
	SupportLimiter *authmw.RateLimiter
}

func NewRouter(cfg config.Config, handlers *handler.Handlers, mws Middlewares, m *metrics.Metrics, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORSOrigins))
	if m != nil {
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	supportLimiter := mws.SupportLimiter
	if supportLimiter == nil {
		supportLimiter = authmw.NewRateLimiter(cfg.RateLimit.SupportPerMinute, cfg.RateLimit.SupportBurst, log)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Route("/functions", func(r chi.Router) {
			r.Use(authmw.RequireFunctionsKey(cfg.Nudge.FunctionsKey))
			r.Post("/assign-nudges", handlers.Nudges.AssignNudges)
			r.Post("/send-nudges", handlers.Nudges.SendNudges)
		})

		r.Group(func(r chi.Router) {
			r.Use(mws.Auth)

			r.Get("/auth/me", handlers.Common.AuthMe)

			r.Get("/profile", handlers.Common.GetProfile)
			r.Patch("/profile", handlers.Common.UpdateProfile)
			r.Post("/profile/avatar", handlers.Common.CreateAvatarUpload)

			r.Get("/colors", handlers.Feelings.ListColors)
			r.Get("/support/templates", handlers.Groups.ListSupportTemplates)

			r.Get("/groups", handlers.Groups.ListGroups)
			r.Post("/groups", handlers.Groups.CreateGroup)
			r.Get("/groups/{id}", handlers.Groups.GetGroup)
			r.Patch("/groups/{id}", handlers.Groups.UpdateGroup)
			r.Delete("/groups/{id}", handlers.Groups.DeleteGroup)
			r.Post("/groups/{id}/leave", handlers.Groups.LeaveGroup)
			r.Get("/groups/{id}/members", handlers.Groups.ListMembers)
			r.Delete("/groups/{id}/members/{user_id}", handlers.Groups.RemoveMember)
			r.Get("/groups/{id}/members/{user_id}/feelings", handlers.Feelings.History)
			r.With(supportLimiter.Handler).Post("/groups/{id}/members/{user_id}/support", handlers.Groups.ComposeSupport)

			r.Get("/groups/{id}/invites", handlers.Groups.ListInvites)
			r.Post("/groups/{id}/invites", handlers.Groups.CreateInvite)
			r.Get("/invites/{code}", handlers.Groups.PreviewInvite)
			r.Post("/invites/accept", handlers.Groups.AcceptInvite)

			r.Post("/groups/{id}/feelings", handlers.Feelings.LogFeeling)
			r.Get("/groups/{id}/feelings/today", handlers.Feelings.ListToday)
			r.Post("/feelings", handlers.Feelings.LogToGroups)
			r.Patch("/feelings/{feeling_id}", handlers.Feelings.UpdateFeeling)

			r.Get("/groups/{id}/ring", handlers.Groups.GetRing)
			r.Get("/groups/{id}/ring.svg", handlers.Groups.GetRingSVG)

			r.Get("/devices", handlers.Nudges.ListDevices)
			r.Post("/devices", handlers.Nudges.RegisterDevice)
			r.Delete("/devices/{token}", handlers.Nudges.UnregisterDevice)

			r.Get("/notifications/settings", handlers.Nudges.GetSettings)
			r.Patch("/notifications/settings", handlers.Nudges.UpdateSettings)
		})
	})

	return r
}
