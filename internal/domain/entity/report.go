package entity

import (
	"fmt"
	"time"
)

// Report is an operator's submitted monthly figures. Everything except Status is
// owned by the reporting service and only carried here.
type Report struct {
	ID                   string       `json:"id"`
	OperatorID           string       `json:"operatorId"`
	OperatorName         string       `json:"operatorName"`
	Month                int          `json:"month"`
	Year                 int          `json:"year"`
	TotalGGR             float64      `json:"totalGGR"`
	TotalStake           float64      `json:"totalStake"`
	TotalBetCount        float64      `json:"totalBetCount"`
	OverallGGRPercentage float64      `json:"overallGGRPercentage"`
	TotalGamingTax       float64      `json:"totalGamingTax"`
	TotalDETLevy         float64      `json:"totalDETLevy"`
	GameBreakdown        []GameEntry  `json:"gameBreakdown"`
	Status               ReportStatus `json:"status"`
	SubmittedAt          time.Time    `json:"submittedAt"`
}

// GameEntry is one row of a report's per-game breakdown (display only)
type GameEntry struct {
	GameType      string  `json:"gameType"`
	Stake         float64 `json:"stake"`
	GGR           float64 `json:"ggr"`
	GGRPercentage float64 `json:"ggrPercentage"`
	GamingTax     float64 `json:"gamingTax"`
	NetRevenue    float64 `json:"netRevenue"`
}

// IsPending returns true while the report awaits a decision
func (r *Report) IsPending() bool {
	return r.Status == StatusPending
}

// Period formats the reporting period as YYYY-MM
func (r *Report) Period() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}
