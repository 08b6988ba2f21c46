package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-portal/internal/model"
)

const attendanceColumns = `id, user_id, date::text, check_in_time, check_out_time,
	        status, total_hours, source, created_at, updated_at`

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func scanAttendance(row pgx.Row) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.Status, &rec.TotalHours, &rec.Source, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// InsertIfAbsent creates the (user, date) record atomically. When a record
// already exists the insert is a no-op and inserted is false; the storage
// uniqueness constraint, not a read-then-write, closes the multi-device race.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, bool, error) {
	stored, err := scanAttendance(r.pool.QueryRow(ctx,
		`INSERT INTO attendance (id, user_id, date, check_in_time, status, source, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (user_id, date) DO NOTHING
		 RETURNING `+attendanceColumns,
		rec.ID, rec.UserID, rec.Date, rec.CheckInTime, rec.Status, rec.Source, time.Now().UTC()))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, false, nil
	}
	if err != nil {
		return model.AttendanceRecord{}, false, storageErr("insert attendance", err)
	}
	return stored, true, nil
}

func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (model.AttendanceRecord, error) {
	rec, err := scanAttendance(r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, model.ErrRecordNotFound
	}
	if err != nil {
		return model.AttendanceRecord{}, storageErr("find attendance by id", err)
	}
	return rec, nil
}

func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, userID string, date string) (model.AttendanceRecord, error) {
	rec, err := scanAttendance(r.pool.QueryRow(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = $1 AND date = $2`,
		userID, date))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, model.ErrRecordNotFound
	}
	if err != nil {
		return model.AttendanceRecord{}, storageErr("find attendance by user and date", err)
	}
	return rec, nil
}

// SetCheckOut closes the day. The WHERE clause only matches an open record,
// so a racing duplicate check-out finds zero rows and reports ok=false.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64) (model.AttendanceRecord, bool, error) {
	rec, err := scanAttendance(r.pool.QueryRow(ctx,
		`UPDATE attendance
		 SET check_out_time = $2, total_hours = $3, updated_at = $4
		 WHERE id = $1 AND check_in_time IS NOT NULL AND check_out_time IS NULL
		 RETURNING `+attendanceColumns,
		id, checkOut, totalHours, time.Now().UTC()))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, false, nil
	}
	if err != nil {
		return model.AttendanceRecord{}, false, storageErr("set attendance check-out", err)
	}
	return rec, true, nil
}

// Override rewrites timestamps, status and total hours in place. Only the
// admin-correction path uses it; policy windows are not consulted here.
func (r *AttendanceRepository) Override(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	updated, err := scanAttendance(r.pool.QueryRow(ctx,
		`UPDATE attendance
		 SET check_in_time = $2, check_out_time = $3, status = $4, total_hours = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING `+attendanceColumns,
		rec.ID, rec.CheckInTime, rec.CheckOutTime, rec.Status, rec.TotalHours, time.Now().UTC()))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, model.ErrRecordNotFound
	}
	if err != nil {
		return model.AttendanceRecord{}, storageErr("override attendance", err)
	}
	return updated, nil
}

func (r *AttendanceRepository) ListRange(ctx context.Context, userID string, from string, to string) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attendanceColumns+`
		 FROM attendance
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date`,
		userID, from, to)
	if err != nil {
		return nil, storageErr("list attendance range", err)
	}
	defer rows.Close()

	records := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, storageErr("scan attendance", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
