package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"employee-portal/internal/model"
)

// In-memory stores standing in for the pgx repositories. They keep the same
// row semantics, including the one-record-per-(user, date) guarantee.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore(users ...model.User) *memUserStore {
	s := &memUserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.ErrUserAlreadyExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) Update(_ context.Context, id string, role string, isActive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Role = role
	u.IsActive = isActive
	s.users[id] = u
	return nil
}

func (s *memUserStore) SetMFA(_ context.Context, id string, enabled bool, secret string) error {
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

func (s *memUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenRow
}

type tokenRow struct {
	userID    string
	expiresAt time.Time
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]tokenRow{}}
}

func (s *memTokenStore) Store(_ context.Context, token string, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = tokenRow{userID, expiresAt}
	return nil
}

func (s *memTokenStore) Validate(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tokens[token]
	if !ok || !row.expiresAt.After(time.Now()) {
		return "", model.ErrTokenNotFound
	}
	return row.userID, nil
}

func (s *memTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *memTokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, row := range s.tokens {
		if row.userID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

type memAttendanceStore struct {
	mu    sync.Mutex
	byID  map[string]*model.AttendanceRecord
	byKey map[string]string
}

func newMemAttendanceStore() *memAttendanceStore {
	return &memAttendanceStore{
		byID:  map[string]*model.AttendanceRecord{},
		byKey: map[string]string{},
	}
}

func recordKey(userID, date string) string { return userID + "|" + date }

func (s *memAttendanceStore) InsertIfAbsent(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byKey[recordKey(rec.UserID, rec.Date)]; exists {
		return model.AttendanceRecord{}, false, nil
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	stored := rec
	s.byID[rec.ID] = &stored
	s.byKey[recordKey(rec.UserID, rec.Date)] = rec.ID
	return stored, true, nil
}

func (s *memAttendanceStore) FindByID(_ context.Context, id string) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.byID[id]; ok {
		return *rec, nil
	}
	return model.AttendanceRecord{}, model.ErrRecordNotFound
}

func (s *memAttendanceStore) FindByUserAndDate(_ context.Context, userID string, date string) (model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[recordKey(userID, date)]; ok {
		return *s.byID[id], nil
	}
	return model.AttendanceRecord{}, model.ErrRecordNotFound
}

func (s *memAttendanceStore) SetCheckOut(_ context.Context, id string, checkOut time.Time, totalHours float64) (model.AttendanceRecord, bool, error) {
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

func (s *memAttendanceStore) Override(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
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

func (s *memAttendanceStore) ListRange(_ context.Context, userID string, from string, to string) ([]model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]model.AttendanceRecord, 0)
	for _, rec := range s.byID {
		if rec.UserID == userID && rec.Date >= from && rec.Date <= to {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

type memPresenceStore struct {
	mu   sync.Mutex
	logs []model.PresenceLog
}

func newMemPresenceStore() *memPresenceStore {
	return &memPresenceStore{}
}

func (s *memPresenceStore) Insert(_ context.Context, userID string, page string, userAgent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, model.PresenceLog{
		UserID:    userID,
		Page:      page,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *memPresenceStore) ListRecent(_ context.Context, since time.Time, limit int) ([]model.PresenceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PresenceLog, 0)
	for _, l := range s.logs {
		if l.CreatedAt.After(since) {
			out = append(out, l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memPresenceStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}
