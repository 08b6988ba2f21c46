package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"employee-portal/internal/attendance"
	"employee-portal/internal/event"
	"employee-portal/internal/model"
)

type attendanceStore interface {
	InsertIfAbsent(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, bool, error)
	FindByID(ctx context.Context, id string) (model.AttendanceRecord, error)
	FindByUserAndDate(ctx context.Context, userID string, date string) (model.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64) (model.AttendanceRecord, bool, error)
	Override(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error)
	ListRange(ctx context.Context, userID string, from string, to string) ([]model.AttendanceRecord, error)
}

// AttendanceService drives the per-(subject, day) state machine:
// NoRecord -> CheckedIn -> CheckedOut, terminal for the day. One canonical
// policy governs every caller.
type AttendanceService struct {
	records attendanceStore
	policy  attendance.Policy
	bus     event.Bus
	now     func() time.Time
}

func NewAttendanceService(records attendanceStore, policy attendance.Policy, bus event.Bus) *AttendanceService {
	return &AttendanceService{
		records: records,
		policy:  policy,
		bus:     bus,
		now:     time.Now,
	}
}

// CheckIn creates today's record for the subject. Outside the policy window
// nothing is written. A record that already exists is never touched: the
// conditional insert fails closed with ErrAlreadyCheckedIn.
func (s *AttendanceService) CheckIn(ctx context.Context, userID string) (model.AttendanceRecord, error) {
	now := s.policy.Now(s.now())

	if !s.policy.WithinCheckInWindow(now) {
		slog.Warn("check-in outside policy window",
			"user_id", userID, "at", now.Format(time.RFC3339),
			"open", s.policy.CheckInOpen.String(), "close", s.policy.CheckInClose.String())
		return model.AttendanceRecord{}, model.ErrOutsideCheckInWindow
	}

	status := model.StatusPresent
	if s.policy.IsLate(now) {
		status = model.StatusLate
	}

	checkIn := now.UTC()
	rec := model.AttendanceRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        s.policy.Day(now),
		CheckInTime: &checkIn,
		Status:      status,
		Source:      "web",
	}

	stored, inserted, err := s.records.InsertIfAbsent(ctx, rec)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if !inserted {
		return model.AttendanceRecord{}, model.ErrAlreadyCheckedIn
	}

	slog.Info("checked in", "user_id", userID, "date", stored.Date, "status", stored.Status)
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeCheckedIn, userID, stored))
	}

	return stored, nil
}

// CheckOut closes today's record. Allowed at or before the configured cutoff;
// afterwards nothing is written and the open record keeps its null check-out.
func (s *AttendanceService) CheckOut(ctx context.Context, userID string) (model.AttendanceRecord, error) {
	now := s.policy.Now(s.now())

	rec, err := s.records.FindByUserAndDate(ctx, userID, s.policy.Day(now))
	if errors.Is(err, model.ErrRecordNotFound) {
		return model.AttendanceRecord{}, model.ErrNotCheckedIn
	}
	if err != nil {
		return model.AttendanceRecord{}, err
	}

	if rec.CheckInTime == nil {
		return model.AttendanceRecord{}, model.ErrNotCheckedIn
	}
	if rec.CheckOutTime != nil {
		return model.AttendanceRecord{}, model.ErrAlreadyCheckedOut
	}

	if !s.policy.WithinCheckOutWindow(now) {
		slog.Warn("check-out outside policy window",
			"user_id", userID, "at", now.Format(time.RFC3339),
			"cutoff", s.policy.CheckOutCutoff.String())
		return model.AttendanceRecord{}, model.ErrOutsideCheckOutWindow
	}

	total := elapsedHours(*rec.CheckInTime, now)

	updated, ok, err := s.records.SetCheckOut(ctx, rec.ID, now.UTC(), total)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if !ok {
		// A concurrent check-out won the conditional update.
		return model.AttendanceRecord{}, model.ErrAlreadyCheckedOut
	}

	slog.Info("checked out", "user_id", userID, "date", updated.Date, "total_hours", total)
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeCheckedOut, userID, updated))
	}

	return updated, nil
}

// Today returns the subject's record for the current calendar day, or
// ErrRecordNotFound when the day has no record yet.
func (s *AttendanceService) Today(ctx context.Context, userID string) (model.AttendanceRecord, error) {
	return s.records.FindByUserAndDate(ctx, userID, s.policy.Day(s.now()))
}

// Month returns the subject's records for one calendar month, ordered by
// date, with aggregate counts.
func (s *AttendanceService) Month(ctx context.Context, userID string, year int, month time.Month) (model.MonthlyAttendance, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.policy.Location)
	last := first.AddDate(0, 1, -1)

	records, err := s.records.ListRange(ctx, userID, first.Format("2006-01-02"), last.Format("2006-01-02"))
	if err != nil {
		return model.MonthlyAttendance{}, err
	}

	return model.MonthlyAttendance{
		Month:   first.Format("2006-01"),
		Records: records,
		Summary: model.Summarize(records),
	}, nil
}

// Correct applies an admin patch, bypassing policy windows. Total hours are
// recomputed whenever both timestamps end up present; a check-out without a
// check-in is rejected.
func (s *AttendanceService) Correct(ctx context.Context, adminID string, recordID string, patch model.AttendanceCorrection) (model.AttendanceRecord, error) {
	rec, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return model.AttendanceRecord{}, err
	}

	if patch.CheckInTime != nil {
		t := patch.CheckInTime.UTC()
		rec.CheckInTime = &t
	}
	if patch.CheckOutTime != nil {
		t := patch.CheckOutTime.UTC()
		rec.CheckOutTime = &t
	}
	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			return model.AttendanceRecord{}, fmt.Errorf("%w: status %q", model.ErrInvalidInput, *patch.Status)
		}
		rec.Status = *patch.Status
	}

	if rec.CheckOutTime != nil && rec.CheckInTime == nil {
		return model.AttendanceRecord{}, fmt.Errorf("%w: check-out requires a check-in", model.ErrInvalidInput)
	}

	rec.TotalHours = nil
	if rec.CheckInTime != nil && rec.CheckOutTime != nil {
		if rec.CheckOutTime.Before(*rec.CheckInTime) {
			return model.AttendanceRecord{}, fmt.Errorf("%w: check-out precedes check-in", model.ErrInvalidInput)
		}
		total := elapsedHours(*rec.CheckInTime, *rec.CheckOutTime)
		rec.TotalHours = &total
	}

	updated, err := s.records.Override(ctx, rec)
	if err != nil {
		return model.AttendanceRecord{}, err
	}

	slog.Info("attendance corrected",
		"admin_id", adminID, "record_id", recordID, "status", updated.Status)
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeAttendanceCorrected, updated.UserID, updated))
	}

	return updated, nil
}

// elapsedHours is the wall-clock span in hours, rounded to two decimals and
// clamped non-negative.
func elapsedHours(in time.Time, out time.Time) float64 {
	hours := out.Sub(in).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Round(hours*100) / 100
}
