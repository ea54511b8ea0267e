// Package checkservice talks to the remote eligibility check service: batch
// submission, progress polling, results, history search and deletion.
package checkservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/tracker"
	"eligibility/internal/platform/metrics"
	id "eligibility/pkg/domain"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/circuit"
)

// Operation names used for spans, metrics and error context.
const (
	OpSubmit  = "submit"
	OpPoll    = "poll"
	OpResults = "results"
	OpSearch  = "search"
	OpDelete  = "delete"
)

const (
	submitPath       = "bulk-check/free-school-meals"
	searchPath       = "bulk-check/search"
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 32 << 20
)

var tracer = otel.Tracer("eligibility/internal/bulkcheck/checkservice")

// Client calls the check service over HTTP. Every call runs under the
// configured timeout and the shared circuit breaker.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Client)

// WithAPIKey sends key as a bearer credential.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout bounds each outbound call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a client rooted at baseURL. Relative request paths resolve
// against it, so a trailing slash is added when missing.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid check service URL %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
		breaker:    circuit.New("check-service"),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitBulk posts the batch and returns the job handle. The job id is taken
// from the status link.
func (c *Client) SubmitBulk(ctx context.Context, records []models.CandidateRecord, meta models.SubmissionMeta) (*models.BulkJob, error) {
	if len(records) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no records to submit")
	}

	var resp bulkSubmitResponse
	body := bulkSubmitRequest{Data: records, Meta: meta}
	if err := c.do(ctx, OpSubmit, http.MethodPost, submitPath, body, &resp); err != nil {
		return nil, err
	}

	statusURL := strings.TrimSpace(resp.Links.Status)
	if statusURL == "" {
		return nil, c.fail(ctx, NewError(ErrorBadData, OpSubmit, "response has no status link", nil))
	}

	return &models.BulkJob{
		ID:         tracker.JobIDFromStatusURL(statusURL),
		StatusURL:  statusURL,
		ResultsURL: strings.TrimSpace(resp.Links.Results),
		State:      models.JobSubmitted,
	}, nil
}

// PollProgress fetches the progress of the job behind statusURL.
func (c *Client) PollProgress(ctx context.Context, statusURL string) (models.Progress, error) {
	if strings.TrimSpace(statusURL) == "" {
		return models.Progress{}, dErrors.New(dErrors.CodeBadRequest, "status URL is required")
	}

	var resp progressResponse
	if err := c.do(ctx, OpPoll, http.MethodGet, statusURL, nil, &resp); err != nil {
		return models.Progress{}, err
	}
	if resp.Data == nil {
		return models.Progress{}, c.fail(ctx, NewError(ErrorBadData, OpPoll, "response has no progress data", nil))
	}
	return models.Progress{Completed: resp.Data.Complete, Total: resp.Data.Total}, nil
}

// StatusPath is the status URL for an explicit job id.
func StatusPath(jobID id.BulkCheckID) string {
	return "bulk-check/" + url.PathEscape(jobID.String()) + "/status"
}

// FetchResults returns the outcome rows of a job. An empty slice is a valid answer.
func (c *Client) FetchResults(ctx context.Context, jobID id.BulkCheckID) ([]models.OutcomeRow, error) {
	var resp resultsResponse
	path := "bulk-check/" + url.PathEscape(jobID.String()) + "/"
	if err := c.do(ctx, OpResults, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	rows := make([]models.OutcomeRow, 0, len(resp.Data))
	for _, item := range resp.Data {
		rows = append(rows, item.toModel())
	}
	return rows, nil
}

// SearchBulkChecks lists every bulk check the organisation has submitted.
func (c *Client) SearchBulkChecks(ctx context.Context, organisationID id.OrganisationID) ([]models.BulkCheckSummary, error) {
	if organisationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "organisation is required")
	}

	var resp searchResponse
	path := searchPath + "?" + url.Values{"organisationId": {organisationID.String()}}.Encode()
	if err := c.do(ctx, OpSearch, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	checks := make([]models.BulkCheckSummary, 0, len(resp.Checks))
	for _, item := range resp.Checks {
		checks = append(checks, item.toModel())
	}
	return checks, nil
}

// DeleteBulkCheck asks the service to delete a job and its results.
func (c *Client) DeleteBulkCheck(ctx context.Context, jobID id.BulkCheckID) (DeleteResponse, error) {
	var resp DeleteResponse
	path := "bulk-check/" + url.PathEscape(jobID.String())
	if err := c.do(ctx, OpDelete, http.MethodDelete, path, nil, &resp); err != nil {
		return DeleteResponse{}, err
	}
	return resp, nil
}

// do performs one JSON round trip. out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, op, method, ref string, body, out any) error {
	start := time.Now()
	category := ""
	defer func() {
		c.metrics.ObserveRemoteCall(op, category, time.Since(start))
	}()

	if c.breaker != nil && !c.breaker.Allow() {
		category = string(ErrorOutage)
		return NewError(ErrorOutage, op, "circuit breaker open", nil)
	}

	target, err := c.resolve(ref)
	if err != nil {
		category = string(ErrorInternal)
		return NewError(ErrorInternal, op, "invalid request URL", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "checkservice."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", target.Path),
		),
	)
	defer span.End()

	cerr := c.roundTrip(ctx, op, method, target, body, out)
	c.recordOutcome(ctx, cerr)
	if cerr != nil {
		category = string(cerr.Category)
		span.RecordError(cerr)
		span.SetStatus(codes.Error, string(cerr.Category))
		c.logger.WarnContext(ctx, "check service call failed",
			"operation", op,
			"url", target.Redacted(),
			"category", string(cerr.Category),
			"status_code", cerr.StatusCode,
			"error", cerr,
		)
		return cerr
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method string, target *url.URL, body, out any) *Error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return NewError(ErrorInternal, op, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return NewError(ErrorInternal, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewError(ErrorTimeout, op, "request timed out", err)
		}
		return NewError(ErrorOutage, op, "request failed", err)
	}
	defer resp.Body.Close()

	if cerr := classifyStatus(op, resp.StatusCode); cerr != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return cerr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return NewError(ErrorTimeout, op, "response timed out", err)
		}
		return NewError(ErrorBadData, op, "decode response", err)
	}
	return nil
}

func classifyStatus(op string, status int) *Error {
	var cerr *Error
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		cerr = NewError(ErrorAuthentication, op, "credentials rejected", nil)
	case status == http.StatusNotFound:
		cerr = NewError(ErrorNotFound, op, "not found", nil)
	case status == http.StatusTooManyRequests:
		cerr = NewError(ErrorRateLimited, op, "rate limited", nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		cerr = NewError(ErrorTimeout, op, "upstream timeout", nil)
	case status >= 500:
		cerr = NewError(ErrorOutage, op, "service error", nil)
	default:
		cerr = NewError(ErrorBadData, op, "request rejected", nil)
	}
	cerr.StatusCode = status
	return cerr
}

// recordOutcome feeds the breaker. Only timeouts and outages count as failures.
func (c *Client) recordOutcome(ctx context.Context, cerr *Error) {
	if c.breaker == nil {
		return
	}
	if cerr != nil && (cerr.Category == ErrorTimeout || cerr.Category == ErrorOutage) {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "check service circuit opened", "breaker", c.breaker.Name())
		}
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "check service circuit closed", "breaker", c.breaker.Name())
	}
}

// fail logs a response that decoded but broke the contract.
func (c *Client) fail(ctx context.Context, cerr *Error) *Error {
	c.logger.WarnContext(ctx, "check service returned an unusable response",
		"operation", cerr.Operation,
		"error", cerr,
	)
	return cerr
}

// resolve turns ref into an absolute URL. Absolute refs must share the base host.
func (c *Client) resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if r.IsAbs() && !strings.EqualFold(r.Host, c.baseURL.Host) {
		return nil, fmt.Errorf("refusing to call foreign host %q", r.Host)
	}
	if !r.IsAbs() {
		r.Path = strings.TrimPrefix(r.Path, "/")
	}
	return c.baseURL.ResolveReference(r), nil
}
