package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"employee-portal/internal/config"
	"employee-portal/internal/database"
	"employee-portal/internal/handler"
	"employee-portal/internal/middleware"
	"employee-portal/internal/model"
	"employee-portal/internal/service"
	"employee-portal/internal/websocket"
)

// Handlers bundles the HTTP handlers so New keeps a manageable signature.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Presence   *handler.PresenceHandler
	Admin      *handler.AdminHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	hub *websocket.Hub,
	presenceRuntime *service.PresenceRuntime,
	db *database.DB,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthCheck(db))

	// The upgrade request must bypass the timeout wrapper: the connection
	// outlives any single request deadline.
	r.With(authMiddleware.RequireAuth).Get("/ws", websocket.Handler(hub, presenceRuntime))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/sign-in", handlers.Auth.SignIn)
			auth.Post("/refresh", handlers.Auth.Refresh)
			auth.Post("/sign-out", handlers.Auth.SignOut)
			auth.With(authMiddleware.RequireAuth).Get("/me", handlers.Auth.Me)
			auth.With(authMiddleware.RequireAuth).Post("/mfa/enroll", handlers.Auth.EnrollMFA)
		})

		api.Route("/attendance", func(att chi.Router) {
			att.Use(authMiddleware.RequireAuth)
			att.Post("/check-in", handlers.Attendance.CheckIn)
			att.Post("/check-out", handlers.Attendance.CheckOut)
			att.Get("/today", handlers.Attendance.Today)
			att.Get("/", handlers.Attendance.Month)
		})

		api.With(authMiddleware.RequireAuth).Post("/presence/heartbeat", handlers.Presence.Heartbeat)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))
			admin.Get("/users", handlers.Admin.ListUsers)
			admin.Post("/users", handlers.Admin.CreateUser)
			admin.Patch("/users/{user_id}", handlers.Admin.UpdateUser)
			admin.Patch("/attendance/{record_id}", handlers.Attendance.Correct)
			admin.Get("/presence", handlers.Presence.Recent)
		})
	})

	return r
}

func healthCheck(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
