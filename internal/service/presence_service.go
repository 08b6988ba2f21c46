package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"employee-portal/internal/event"
	"employee-portal/internal/model"
)

type presenceStore interface {
	Insert(ctx context.Context, userID string, page string, userAgent string) error
	ListRecent(ctx context.Context, since time.Time, limit int) ([]model.PresenceLog, error)
}

// PresenceService records liveness signals. Presence is observability only:
// every write is fire-and-forget and a failure never propagates into the
// session or attendance flows.
type PresenceService struct {
	logs presenceStore
	bus  event.Bus
}

func NewPresenceService(logs presenceStore, bus event.Bus) *PresenceService {
	return &PresenceService{logs: logs, bus: bus}
}

// Heartbeat records one liveness signal. Errors are logged and swallowed.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string, page string, userAgent string) {
	if err := s.logs.Insert(ctx, userID, page, userAgent); err != nil {
		slog.Debug("presence heartbeat dropped", "user_id", userID, "error", err)
		return
	}

	if s.bus != nil {
		s.bus.Publish(event.New(event.TypePresenceHeartbeat, userID, map[string]string{"page": page}))
	}
}

func (s *PresenceService) Recent(ctx context.Context, window time.Duration, limit int) ([]model.PresenceLog, error) {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return s.logs.ListRecent(ctx, time.Now().UTC().Add(-window), limit)
}

// PresenceRuntime is the process-wide heartbeat loop with an explicit
// start/stop lifecycle. Subjects are tracked while they hold a live realtime
// connection; each tick writes one liveness row per tracked subject.
type PresenceRuntime struct {
	svc      *PresenceService
	interval time.Duration

	mu      sync.Mutex
	tracked map[string]int
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPresenceRuntime(svc *PresenceService, interval time.Duration) *PresenceRuntime {
	if interval <= 0 {
		interval = time.Minute
	}

	return &PresenceRuntime{
		svc:      svc,
		interval: interval,
		tracked:  map[string]int{},
	}
}

// Track registers a subject. Reference counted: one subject may hold several
// tabs or devices.
func (r *PresenceRuntime) Track(userID string) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	r.tracked[userID]++
	r.mu.Unlock()
}

func (r *PresenceRuntime) Untrack(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.tracked[userID]; ok {
		if n <= 1 {
			delete(r.tracked, userID)
		} else {
			r.tracked[userID] = n - 1
		}
	}
}

// Start launches the heartbeat loop. Calling Start twice is an error in the
// caller; the second loop would double every liveness row.
func (r *PresenceRuntime) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.tick(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("presence runtime started", "interval", r.interval)
}

// Stop halts the loop and waits for the in-flight tick. Idempotent.
func (r *PresenceRuntime) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	slog.Info("presence runtime stopped")
}

func (r *PresenceRuntime) tick(ctx context.Context) {
	r.mu.Lock()
	subjects := make([]string, 0, len(r.tracked))
	for id := range r.tracked {
		subjects = append(subjects, id)
	}
	r.mu.Unlock()

	for _, id := range subjects {
		tickCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		r.svc.Heartbeat(tickCtx, id, "(background)", "")
		cancel()
	}
}
