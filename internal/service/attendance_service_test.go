package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employee-portal/internal/attendance"
	"employee-portal/internal/model"
)

func officePolicy(t *testing.T) attendance.Policy {
	t.Helper()
	p := attendance.Policy{
		CheckInOpen:    attendance.ClockTime{Hour: 9, Minute: 0},
		LateThreshold:  attendance.ClockTime{Hour: 9, Minute: 15},
		CheckInClose:   attendance.ClockTime{Hour: 12, Minute: 0},
		CheckOutCutoff: attendance.ClockTime{Hour: 15, Minute: 55},
		Location:       time.UTC,
	}
	require.NoError(t, p.Validate())
	return p
}

func newTestAttendanceService(t *testing.T) (*AttendanceService, *fakeAttendanceStore) {
	t.Helper()
	store := newFakeAttendanceStore()
	svc := NewAttendanceService(store, officePolicy(t), nil)
	return svc, store
}

func clockAt(svc *AttendanceService, hour, minute, second int) {
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 9, hour, minute, second, 0, time.UTC)
	}
}

func TestCheckInBeforeThresholdIsPresent(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	clockAt(svc, 9, 10, 0)

	rec, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusPresent, rec.Status)
	assert.Equal(t, "2026-03-09", rec.Date)
	require.NotNil(t, rec.CheckInTime)
	assert.Nil(t, rec.CheckOutTime)
	assert.Nil(t, rec.TotalHours)
}

func TestCheckInAfterThresholdIsLate(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	clockAt(svc, 9, 20, 0)

	rec, err := svc.CheckIn(context.Background(), "e2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLate, rec.Status)
}

func TestCheckInThresholdBoundary(t *testing.T) {
	// The threshold instant itself is on time; one second past it is late.
	svc, _ := newTestAttendanceService(t)

	clockAt(svc, 9, 15, 0)
	rec, err := svc.CheckIn(context.Background(), "on-time")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPresent, rec.Status)

	clockAt(svc, 9, 15, 1)
	rec, err = svc.CheckIn(context.Background(), "one-second-late")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLate, rec.Status)
}

func TestCheckInOutsideWindow(t *testing.T) {
	svc, store := newTestAttendanceService(t)

	tests := []struct {
		name                 string
		hour, minute, second int
	}{
		{"before open", 8, 59, 59},
		{"after close", 12, 0, 1},
		{"late evening", 18, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clockAt(svc, tc.hour, tc.minute, tc.second)
			_, err := svc.CheckIn(context.Background(), "e1")
			assert.ErrorIs(t, err, model.ErrOutsideCheckInWindow)
		})
	}

	// No record was created by any rejected attempt.
	_, err := store.FindByUserAndDate(context.Background(), "e1", "2026-03-09")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

func TestCheckInTwiceIsRejected(t *testing.T) {
	svc, store := newTestAttendanceService(t)

	clockAt(svc, 9, 10, 0)
	first, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	clockAt(svc, 9, 40, 0)
	_, err = svc.CheckIn(context.Background(), "e1")
	assert.ErrorIs(t, err, model.ErrAlreadyCheckedIn)

	// Exactly one record, first timestamp untouched.
	stored, err := store.FindByUserAndDate(context.Background(), "e1", "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.CheckInTime.Equal(*first.CheckInTime))
	assert.Equal(t, model.StatusPresent, stored.Status)
}

func TestCheckOutComputesElapsedHours(t *testing.T) {
	store := newFakeAttendanceStore()
	policy := officePolicy(t)
	// Extend the cutoff so the canonical 09:05 -> 17:35:30 round-trip fits.
	policy.CheckOutCutoff = attendance.ClockTime{Hour: 18, Minute: 0}
	svc := NewAttendanceService(store, policy, nil)

	clockAt(svc, 9, 5, 0)
	_, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	clockAt(svc, 17, 35, 30)
	rec, err := svc.CheckOut(context.Background(), "e1")
	require.NoError(t, err)

	require.NotNil(t, rec.TotalHours)
	assert.Equal(t, 8.51, *rec.TotalHours)
	assert.Equal(t, model.StatusPresent, rec.Status, "status set at check-in is kept")
}

func TestCheckOutAfterCutoffLeavesRecordOpen(t *testing.T) {
	svc, store := newTestAttendanceService(t)

	clockAt(svc, 9, 20, 0)
	_, err := svc.CheckIn(context.Background(), "e2")
	require.NoError(t, err)

	clockAt(svc, 16, 10, 0)
	_, err = svc.CheckOut(context.Background(), "e2")
	assert.ErrorIs(t, err, model.ErrOutsideCheckOutWindow)

	stored, err := store.FindByUserAndDate(context.Background(), "e2", "2026-03-09")
	require.NoError(t, err)
	assert.Nil(t, stored.CheckOutTime)
	assert.Nil(t, stored.TotalHours)
	assert.Equal(t, model.StatusLate, stored.Status)
}

func TestCheckOutAtCutoffInstant(t *testing.T) {
	svc, _ := newTestAttendanceService(t)

	clockAt(svc, 9, 10, 0)
	_, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	clockAt(svc, 15, 55, 0)
	rec, err := svc.CheckOut(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, rec.CheckOutTime)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	clockAt(svc, 10, 0, 0)

	_, err := svc.CheckOut(context.Background(), "e1")
	assert.ErrorIs(t, err, model.ErrNotCheckedIn)
}

func TestCheckOutTwiceIsRejected(t *testing.T) {
	svc, _ := newTestAttendanceService(t)

	clockAt(svc, 9, 10, 0)
	_, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	clockAt(svc, 15, 0, 0)
	first, err := svc.CheckOut(context.Background(), "e1")
	require.NoError(t, err)

	clockAt(svc, 15, 30, 0)
	_, err = svc.CheckOut(context.Background(), "e1")
	assert.ErrorIs(t, err, model.ErrAlreadyCheckedOut)

	stored, err := svc.Today(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, stored.CheckOutTime.Equal(*first.CheckOutTime))
}

func TestMonthSummary(t *testing.T) {
	svc, store := newTestAttendanceService(t)

	seed := func(day int, status string) {
		date := time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		checkIn := time.Date(2026, time.March, day, 9, 10, 0, 0, time.UTC)
		_, _, err := store.InsertIfAbsent(context.Background(), model.AttendanceRecord{
			ID: date + "-e1", UserID: "e1", Date: date, CheckInTime: &checkIn, Status: status,
		})
		require.NoError(t, err)
	}

	seed(2, model.StatusPresent)
	seed(3, model.StatusLate)
	seed(4, model.StatusAbsent)
	seed(5, model.StatusOnLeave)
	seed(6, model.StatusPresent)

	month, err := svc.Month(context.Background(), "e1", 2026, time.March)
	require.NoError(t, err)

	assert.Equal(t, "2026-03", month.Month)
	assert.Len(t, month.Records, 5)
	assert.Equal(t, 5, month.Summary.Days)
	assert.Equal(t, 2, month.Summary.Present)
	assert.Equal(t, 1, month.Summary.Late)
	assert.Equal(t, 1, month.Summary.Absent)
	assert.Equal(t, 1, month.Summary.OnLeave)
}

func TestCorrectRecomputesTotalHours(t *testing.T) {
	svc, _ := newTestAttendanceService(t)

	clockAt(svc, 9, 20, 0)
	rec, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	// Admin backdates the check-in to 09:05 and closes the day at 17:35:30,
	// bypassing every window; total hours must be recomputed.
	newIn := time.Date(2026, time.March, 9, 9, 5, 0, 0, time.UTC)
	newOut := time.Date(2026, time.March, 9, 17, 35, 30, 0, time.UTC)
	status := model.StatusPresent

	corrected, err := svc.Correct(context.Background(), "admin-1", rec.ID, model.AttendanceCorrection{
		CheckInTime:  &newIn,
		CheckOutTime: &newOut,
		Status:       &status,
	})
	require.NoError(t, err)

	require.NotNil(t, corrected.TotalHours)
	assert.Equal(t, 8.51, *corrected.TotalHours)
	assert.Equal(t, model.StatusPresent, corrected.Status)
}

func TestCorrectValidation(t *testing.T) {
	svc, _ := newTestAttendanceService(t)

	clockAt(svc, 9, 10, 0)
	rec, err := svc.CheckIn(context.Background(), "e1")
	require.NoError(t, err)

	bad := "vacationing"
	_, err = svc.Correct(context.Background(), "admin-1", rec.ID, model.AttendanceCorrection{Status: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	before := rec.CheckInTime.Add(-time.Hour)
	_, err = svc.Correct(context.Background(), "admin-1", rec.ID, model.AttendanceCorrection{CheckOutTime: &before})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.Correct(context.Background(), "admin-1", "missing", model.AttendanceCorrection{})
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

func TestCorrectCanMarkOnLeave(t *testing.T) {
	svc, store := newTestAttendanceService(t)

	checkIn := time.Date(2026, time.March, 9, 9, 10, 0, 0, time.UTC)
	seeded, _, err := store.InsertIfAbsent(context.Background(), model.AttendanceRecord{
		ID: "r-1", UserID: "e1", Date: "2026-03-09", CheckInTime: &checkIn, Status: model.StatusPresent,
	})
	require.NoError(t, err)

	onLeave := model.StatusOnLeave
	corrected, err := svc.Correct(context.Background(), "admin-1", seeded.ID, model.AttendanceCorrection{Status: &onLeave})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnLeave, corrected.Status)
}

func TestCheckInStorageFailureSurfaces(t *testing.T) {
	svc, store := newTestAttendanceService(t)
	store.failAll = model.ErrStorageUnavailable

	clockAt(svc, 9, 10, 0)
	_, err := svc.CheckIn(context.Background(), "e1")
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}
