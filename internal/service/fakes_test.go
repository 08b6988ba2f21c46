package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"employee-portal/internal/model"
)

// In-memory stores mirroring the row-store semantics the pgx repositories
// provide, including the (user, date) uniqueness guarantee.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User // by id
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) SetMFA(_ context.Context, id string, enabled bool, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.MFAEnabled = enabled
	u.MFASecret = secret
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) put(u model.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]struct {
		userID    string
		expiresAt time.Time
	}
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]struct {
		userID    string
		expiresAt time.Time
	}{}}
}

func (s *fakeTokenStore) Store(_ context.Context, token string, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct {
		userID    string
		expiresAt time.Time
	}{userID, expiresAt}
	return nil
}

func (s *fakeTokenStore) Validate(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tokens[token]
	if !ok || !entry.expiresAt.After(time.Now()) {
		return "", model.ErrTokenNotFound
	}
	return entry.userID, nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *fakeTokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, entry := range s.tokens {
		if entry.userID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *fakeTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type fakeAttendanceStore struct {
	mu      sync.Mutex
	byID    map[string]*model.AttendanceRecord
	byKey   map[string]string // userID|date -> id
	failAll error
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{
		byID:  map[string]*model.AttendanceRecord{},
		byKey: map[string]string{},
	}
}

func key(userID, date string) string { return userID + "|" + date }

func (s *fakeAttendanceStore) InsertIfAbsent(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return model.AttendanceRecord{}, false, s.failAll
	}

	if _, exists := s.byKey[key(rec.UserID, rec.Date)]; exists {
		return model.AttendanceRecord{}, false, nil
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	stored := rec
	s.byID[rec.ID] = &stored
	s.byKey[key(rec.UserID, rec.Date)] = rec.ID
	return stored, true, nil
}

func (s *fakeAttendanceStore) FindByID(_ context.Context, id string) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[id]; ok {
		return *rec, nil
	}
	return model.AttendanceRecord{}, model.ErrRecordNotFound
}

func (s *fakeAttendanceStore) FindByUserAndDate(_ context.Context, userID string, date string) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[key(userID, date)]; ok {
		return *s.byID[id], nil
	}
	return model.AttendanceRecord{}, model.ErrRecordNotFound
}

func (s *fakeAttendanceStore) SetCheckOut(_ context.Context, id string, checkOut time.Time, totalHours float64) (model.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok || rec.CheckInTime == nil || rec.CheckOutTime != nil {
		return model.AttendanceRecord{}, false, nil
	}
	out := checkOut
	rec.CheckOutTime = &out
	rec.TotalHours = &totalHours
	rec.UpdatedAt = time.Now().UTC()
	return *rec, true, nil
}

func (s *fakeAttendanceStore) Override(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[rec.ID]
	if !ok {
		return model.AttendanceRecord{}, model.ErrRecordNotFound
	}
	existing.CheckInTime = rec.CheckInTime
	existing.CheckOutTime = rec.CheckOutTime
	existing.Status = rec.Status
	existing.TotalHours = rec.TotalHours
	existing.UpdatedAt = time.Now().UTC()
	return *existing, nil
}

func (s *fakeAttendanceStore) ListRange(_ context.Context, userID string, from string, to string) ([]model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]model.AttendanceRecord, 0)
	for _, rec := range s.byID {
		if rec.UserID == userID && rec.Date >= from && rec.Date <= to {
			records = append(records, *rec)
		}
	}
	return records, nil
}

type fakePresenceStore struct {
	mu      sync.Mutex
	rows    []model.PresenceLog
	failAll error
}

func (s *fakePresenceStore) Insert(_ context.Context, userID string, page string, userAgent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}
	s.rows = append(s.rows, model.PresenceLog{
		ID:        fmt.Sprintf("p-%d", len(s.rows)+1),
		UserID:    userID,
		Page:      page,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *fakePresenceStore) ListRecent(_ context.Context, since time.Time, limit int) ([]model.PresenceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PresenceLog, 0)
	for _, row := range s.rows {
		if !row.CreatedAt.Before(since) {
			out = append(out, row)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakePresenceStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
