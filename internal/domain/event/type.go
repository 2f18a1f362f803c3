package event

// Type identifies the type of domain event
type Type string

const (
	TypeReportCompared     Type = "report.compared"
	TypeReportApproved     Type = "report.approved"
	TypeReportRejected     Type = "report.rejected"
	TypeNotificationFailed Type = "notification.failed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeReportCompared,
		TypeReportApproved,
		TypeReportRejected,
		TypeNotificationFailed:
		return true
	default:
		return false
	}
}
