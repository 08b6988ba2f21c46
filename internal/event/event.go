package event

type Type string

const (
	TypeSignedIn            Type = "session.signed_in"
	TypeSignedOut           Type = "session.signed_out"
	TypeCheckedIn           Type = "attendance.checked_in"
	TypeCheckedOut          Type = "attendance.checked_out"
	TypeAttendanceCorrected Type = "attendance.corrected"
	TypePresenceHeartbeat   Type = "presence.heartbeat"
)

// Event is a change notification pushed to subscribed UI clients. It is an
// observability feed only: attendance and session invariants hold whether or
// not anyone is subscribed.
type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	SubjectID string      `json:"subject_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
