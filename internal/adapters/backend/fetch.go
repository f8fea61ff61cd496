package backend

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
	"time"

	apperrors "github.com/naidizakupku/portal/internal/errors"
	"github.com/naidizakupku/portal/internal/observability/metrics"
)

const (
	defaultAttemptTimeout = 5 * time.Second
	maxResponseBytes      = 2 << 20
)

// RequestSpec describes one logical backend request.
type RequestSpec struct {
	Method string
	// Body is sent as JSON when non-nil.
	Body   []byte
	Header http.Header
	// Label names the logical endpoint in logs and metrics.
	Label string
}

// Response is a successful candidate answer with its body fully read.
type Response struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// StatusError is a candidate that answered with a non-success status.
type StatusError struct {
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s answered %d", e.URL, e.Status)
}

// ErrorCode implements apperrors.Coder.
func (e *StatusError) ErrorCode() apperrors.ErrorCode { return apperrors.ErrCodeRejected }

// Explanation returns the error or message field of a JSON body, if any.
func (e *StatusError) Explanation() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Body, &body) != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// ExhaustedError is returned when every candidate failed. Last is the final
// candidate's error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d backend candidates failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

var errNoCandidates = errors.New("no backend candidates configured")

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Client *http.Client
	// Timeout bounds each candidate attempt, including reading the body.
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
}

// Fetcher tries candidates strictly in order. It never retries a candidate
// and never reorders the list.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		timeout:   timeout,
		userAgent: opts.UserAgent,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// TryInOrder issues rs against each candidate until one answers 2xx.
// Cancellation of ctx stops iteration immediately and returns a canceled
// (or timeout) error rather than an ExhaustedError.
func (f *Fetcher) TryInOrder(ctx context.Context, candidates []string, rs RequestSpec) (*Response, error) {
	if len(candidates) == 0 {
		return nil, &ExhaustedError{Last: errNoCandidates}
	}

	var last error
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.MapTransportError(err)
		}

		start := time.Now()
		resp, err := f.attempt(ctx, candidate, rs)
		f.metrics.BackendAttempt(rs.Label, err, time.Since(start))
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.MapTransportError(ctxErr)
		}

		f.logger.WarnContext(ctx, "backend candidate failed",
			"endpoint", rs.Label,
			"candidate", redact(candidate),
			"attempt", i+1,
			"error", err,
		)
		last = err
	}
	return nil, &ExhaustedError{Attempts: len(candidates), Last: last}
}

func (f *Fetcher) attempt(ctx context.Context, candidate string, rs RequestSpec) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	method := rs.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if rs.Body != nil {
		body = bytes.NewReader(rs.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, candidate, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build backend request")
	}
	for k, vals := range rs.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if rs.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.MapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, apperrors.MapTransportError(err)
	}
	if len(data) > maxResponseBytes {
		return nil, apperrors.Rejected(fmt.Sprintf("backend response exceeds %d bytes", maxResponseBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: redact(candidate), Status: resp.StatusCode, Body: data}
	}
	return &Response{URL: candidate, Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// redact drops the query string, which may carry session identifiers.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
