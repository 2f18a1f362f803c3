package entity

// ReportStatus is the lifecycle status of an operator report
type ReportStatus string

// Report status values as stored by the reporting service
const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
	StatusRejected ReportStatus = "rejected"
)

// MatchStatus is the verdict of a reconciliation
type MatchStatus string

const (
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusMismatch MatchStatus = "mismatch"
)

// Compared field names
const (
	FieldGGR = "GGR"
)

// Notification status constants
const (
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
	NotificationStatusSkipped = "SKIPPED"
)

// String returns the string representation of the status
func (s ReportStatus) String() string {
	return string(s)
}

// IsValid returns true for the three statuses the reporting service knows
func (s ReportStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}
