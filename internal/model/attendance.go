package model

import "time"

const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusOnLeave = "onLeave"
)

// AttendanceRecord is one (user, calendar date) attendance row. Date is the
// local calendar day in YYYY-MM-DD form; timestamps are stored in UTC.
// TotalHours is set only once both timestamps are present.
type AttendanceRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Status       string     `json:"status"`
	TotalHours   *float64   `json:"total_hours"`
	Source       string     `json:"source,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AttendanceSummary aggregates one month of records for the summary strip.
type AttendanceSummary struct {
	Days    int `json:"days"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	OnLeave int `json:"on_leave"`
}

func Summarize(records []AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	for _, r := range records {
		s.Days++
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusLate:
			s.Late++
		case StatusAbsent:
			s.Absent++
		case StatusOnLeave:
			s.OnLeave++
		}
	}
	return s
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusLate, StatusAbsent, StatusOnLeave:
		return true
	}
	return false
}

// PresenceLog is one heartbeat row. Append-only; used for observability,
// never for attendance correctness.
type PresenceLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Page      string    `json:"page"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
