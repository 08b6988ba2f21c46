package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"employee-portal/internal/config"
	"employee-portal/internal/database"
	"employee-portal/internal/event"
	"employee-portal/internal/handler"
	"employee-portal/internal/middleware"
	"employee-portal/internal/model"
	"employee-portal/internal/repository"
	"employee-portal/internal/router"
	"employee-portal/internal/service"
	"employee-portal/internal/websocket"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	presenceRepo := repository.NewPresenceRepository(pool)
	slog.Info("database ready")

	if err := bootstrapAdmin(context.Background(), cfg, userRepo); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, userRepo, tokenRepo, bus)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	attendanceService := service.NewAttendanceService(attendanceRepo, cfg.AttendancePolicy, bus)
	presenceService := service.NewPresenceService(presenceRepo, bus)
	presenceRuntime := service.NewPresenceRuntime(presenceService, cfg.HeartbeatInterval)

	runtimeCtx, runtimeCancel := context.WithCancel(context.Background())
	presenceRuntime.Start(runtimeCtx)
	go sweepExpiredTokens(runtimeCtx, tokenRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Presence:   handler.NewPresenceHandler(presenceService),
		Admin:      handler.NewAdminHandler(userRepo, authService),
	}, hub, presenceRuntime, db)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				runtimeCancel()
				presenceRuntime.Stop()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

// bootstrapAdmin seeds the first admin account when the user table is empty
// and seed credentials are configured. Without it a fresh deployment has no
// way in: only admins can provision users.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users *repository.UserRepository) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapAdminPassword), 12)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        cfg.BootstrapAdminEmail,
		Name:         "Administrator",
		EmpID:        "ADMIN",
		Role:         model.RoleAdmin,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return err
	}

	slog.Info("bootstrapped admin account", "email", cfg.BootstrapAdminEmail)
	return nil
}

// sweepExpiredTokens drops expired refresh tokens hourly so the table does
// not grow without bound.
func sweepExpiredTokens(ctx context.Context, tokens *repository.TokenRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := tokens.CleanExpired(ctx)
			if err != nil {
				slog.Warn("refresh token sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Debug("refresh token sweep", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		for _, cleanup := range a.cleanupFuncs {
			cleanup()
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
