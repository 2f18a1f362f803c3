package entity

import "time"

// EMSFigures are the totals an administrator enters from the settlement system.
// Only TotalGGR takes part in the match decision.
type EMSFigures struct {
	TotalGGR      float64 `json:"totalGGR"`
	TotalStake    float64 `json:"totalStake"`
	TotalBetCount float64 `json:"totalBetCount"`
}

// Discrepancy describes one field whose EMS value is outside tolerance.
// Difference is signed (EMS minus report). PercentDifference is nil when the
// report value is zero and the percentage is undefined.
type Discrepancy struct {
	Field             string   `json:"field"`
	ReportValue       float64  `json:"reportValue"`
	EMSValue          float64  `json:"emsValue"`
	Difference        float64  `json:"difference"`
	PercentDifference *float64 `json:"percentDifference"`
}

// ComparisonResult is the outcome of reconciling one report
type ComparisonResult struct {
	ReportID      string        `json:"reportId"`
	OperatorName  string        `json:"operatorName"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
	MatchStatus   MatchStatus   `json:"matchStatus"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	ComparedAt    time.Time     `json:"comparedAt"`
}

// IsMatched returns true when the EMS figures agree within tolerance
func (c *ComparisonResult) IsMatched() bool {
	return c.MatchStatus == MatchStatusMatched
}
