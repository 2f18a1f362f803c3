package entity

import "time"

// ReconciliationRecord is the local audit entry for one comparison
type ReconciliationRecord struct {
	ID            int64         `json:"id"`
	ReportID      string        `json:"report_id"`
	OperatorName  string        `json:"operator_name"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
	ReportGGR     float64       `json:"report_ggr"`
	EMSGGR        float64       `json:"ems_ggr"`
	EMSStake      float64       `json:"ems_stake"`
	EMSBetCount   float64       `json:"ems_bet_count"`
	MatchStatus   MatchStatus   `json:"match_status"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	ActorUserID   string        `json:"actor_user_id"`
	ComparedAt    time.Time     `json:"compared_at"`
}

// NewReconciliationRecord builds a ledger entry from a comparison
func NewReconciliationRecord(report *Report, figures EMSFigures, result *ComparisonResult, actorUserID string) *ReconciliationRecord {
	return &ReconciliationRecord{
		ReportID:      result.ReportID,
		OperatorName:  result.OperatorName,
		Month:         result.Month,
		Year:          result.Year,
		ReportGGR:     report.TotalGGR,
		EMSGGR:        figures.TotalGGR,
		EMSStake:      figures.TotalStake,
		EMSBetCount:   figures.TotalBetCount,
		MatchStatus:   result.MatchStatus,
		Discrepancies: result.Discrepancies,
		ActorUserID:   actorUserID,
		ComparedAt:    result.ComparedAt,
	}
}

// TransitionRecord is the local audit entry for one lifecycle transition
type TransitionRecord struct {
	ID                 int64        `json:"id"`
	ReportID           string       `json:"report_id"`
	OperatorID         string       `json:"operator_id"`
	PreviousStatus     ReportStatus `json:"previous_status"`
	NewStatus          ReportStatus `json:"new_status"`
	Reason             string       `json:"reason,omitempty"`
	ActorUserID        string       `json:"actor_user_id"`
	NotificationStatus string       `json:"notification_status"`
	NotificationError  string       `json:"notification_error,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}
