// Package reportingapi is the HTTP client for the external reporting service.
package reportingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/garyjia/ggr-reconciler/internal/application/port"
	"github.com/garyjia/ggr-reconciler/internal/domain/entity"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Config holds reporting service client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements port.ReportingAPI over HTTP.
// Requests are never retried: a repeated status update or notification could
// reach the operator twice.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a reporting service client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

type statusRequest struct {
	Status entity.ReportStatus `json:"status"`
}

type rejectionRequest struct {
	Reason string `json:"reason"`
}

type reportsEnvelope struct {
	Data    []*entity.Report `json:"data"`
	Reports []*entity.Report `json:"reports"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FetchPendingReports lists reports awaiting review.
// The body may be a bare array or an object with a "data" or "reports" array.
func (c *Client) FetchPendingReports(ctx context.Context, auth entity.AuthContext) ([]*entity.Report, error) {
	resp, err := c.request(ctx, auth).
		SetQueryParam("status", string(entity.StatusPending)).
		Get("/reports")
	if err := c.check("fetch pending reports", resp, err); err != nil {
		return nil, err
	}

	reports, err := decodeReports(resp.Body())
	if err != nil {
		c.logger.Error("Failed to decode pending reports", zap.Error(err))
		return nil, fmt.Errorf("decode pending reports: %w", err)
	}

	// The status query already selects pending reports; some deployments omit the field.
	for _, r := range reports {
		if r != nil && r.Status == "" {
			r.Status = entity.StatusPending
		}
	}

	c.logger.Debug("Fetched pending reports", zap.Int("count", len(reports)))
	return reports, nil
}

// SetReportStatus stores a new lifecycle status for a report
func (c *Client) SetReportStatus(ctx context.Context, auth entity.AuthContext, reportID string, status entity.ReportStatus) error {
	resp, err := c.request(ctx, auth).
		SetBody(statusRequest{Status: status}).
		Patch("/reports/" + url.PathEscape(reportID) + "/status")
	return c.check("set report status", resp, err,
		zap.String("report_id", reportID),
		zap.String("status", status.String()),
	)
}

// NotifyOperatorApproved tells the operator their report was approved
func (c *Client) NotifyOperatorApproved(ctx context.Context, auth entity.AuthContext, operatorID string) error {
	resp, err := c.request(ctx, auth).
		SetBody(struct{}{}).
		Post("/notifications/operators/" + url.PathEscape(operatorID) + "/approved")
	return c.check("notify operator approved", resp, err, zap.String("operator_id", operatorID))
}

// NotifyOperatorRejected tells the operator their report was rejected and why
func (c *Client) NotifyOperatorRejected(ctx context.Context, auth entity.AuthContext, operatorID, reason string) error {
	resp, err := c.request(ctx, auth).
		SetBody(rejectionRequest{Reason: reason}).
		Post("/notifications/operators/" + url.PathEscape(operatorID) + "/rejected")
	return c.check("notify operator rejected", resp, err, zap.String("operator_id", operatorID))
}

func (c *Client) request(ctx context.Context, auth entity.AuthContext) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	if auth.Token != "" {
		req.SetAuthToken(auth.Token)
	}
	return req
}

// check turns transport failures and non-2xx responses into errors
func (c *Client) check(op string, resp *resty.Response, err error, fields ...zap.Field) error {
	if err != nil {
		c.logger.Error("Reporting API call failed", append(fields, zap.String("op", op), zap.Error(err))...)
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		apiErr := &port.APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
		c.logger.Error("Reporting API returned error",
			append(fields, zap.String("op", op), zap.Int("status_code", apiErr.StatusCode), zap.String("msg", apiErr.Message))...)
		return fmt.Errorf("%s: %w", op, apiErr)
	}
	return nil
}

func decodeReports(body []byte) ([]*entity.Report, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []*entity.Report{}, nil
	}

	if trimmed[0] == '[' {
		var reports []*entity.Report
		if err := json.Unmarshal(trimmed, &reports); err != nil {
			return nil, err
		}
		return reports, nil
	}

	var env reportsEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env.Data != nil {
		return env.Data, nil
	}
	if env.Reports != nil {
		return env.Reports, nil
	}
	return []*entity.Report{}, nil
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}

	msg := string(bytes.TrimSpace(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// Verify interface compliance
var _ port.ReportingAPI = (*Client)(nil)
