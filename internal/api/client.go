// Package api implements the Slateboard HTTP API client. Response bodies
// are decoded with the tolerant decoder, so transport and status handling
// live here while field-level shape variance is absorbed downstream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/slateboard/slateboard-go/internal/conf"
	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/httpclient"
	"github.com/slateboard/slateboard-go/internal/logging"
	"github.com/slateboard/slateboard-go/internal/model"
)

// Package-level logger specific to the api service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "api.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "api", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize api file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "api")
		closeLogger = func() error { return nil }
	}
}

// Client talks to the Slateboard API. Thread-safe for concurrent use.
type Client struct {
	config  Config
	http    *httpclient.Client
	limiter *rate.Limiter
	debug   bool

	metrics struct {
		apiCalls      int64
		apiErrors     int64
		totalDuration time.Duration
		mu            sync.RWMutex
	}
}

// NewClient creates a Slateboard API client. The access token may be
// empty at construction; requests made without one fail with an
// authentication error.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = DefaultConfig().RateLimitMS
	}

	settings := conf.Setting()
	debug := settings != nil && settings.Debug

	interval := time.Duration(config.RateLimitMS) * time.Millisecond
	client := &Client{
		config:  config,
		http:    httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout}),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		debug:   debug,
	}

	logger.Info("api client initialized",
		"base_url", config.BaseURL,
		"rate_limit_ms", config.RateLimitMS,
		"token_configured", config.AccessToken != "")

	return client, nil
}

// SetAccessToken replaces the credential used for subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.config.AccessToken = token
}

// Close releases client resources.
func (c *Client) Close() {
	c.http.Close()
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing api logger: %v", err)
		}
	}
}

// FetchProject retrieves project details.
func (c *Client) FetchProject(ctx context.Context, projectID string) (*model.Project, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}

	var resp projectResponse
	url := fmt.Sprintf("%s/projects/%s", c.config.BaseURL, projectID)
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	project := resp.Project
	if project.ID == "" {
		project.ID = projectID
	}
	return &project, nil
}

// FetchCreatives retrieves the project's creative list. With pullAll the
// server includes archived creatives.
func (c *Client) FetchCreatives(ctx context.Context, projectID string, pullAll bool) ([]model.Creative, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}

	var resp creativesResponse
	url := fmt.Sprintf("%s/projects/%s/creatives?pullAll=%t", c.config.BaseURL, projectID, pullAll)
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Creatives, nil
}

// FetchFrames retrieves the project's frame list with its tag group
// definitions.
func (c *Client) FetchFrames(ctx context.Context, projectID string) (*FramesResult, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}

	var resp framesResponse
	url := fmt.Sprintf("%s/projects/%s/frames", c.config.BaseURL, projectID)
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &FramesResult{Frames: resp.Frames, TagGroups: resp.TagGroups}, nil
}

// UpdateFrameStatus sets a frame's production status. The returned frame
// is nil when the server did not echo the updated value.
func (c *Client) UpdateFrameStatus(ctx context.Context, projectID, frameID string, status model.FrameStatus) (*model.Frame, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if err := requireID("frame id", frameID); err != nil {
		return nil, err
	}

	var resp statusResponse
	url := fmt.Sprintf("%s/projects/%s/frames/%s/status", c.config.BaseURL, projectID, frameID)
	// Clearing the status sends null, never the literal "none".
	body := map[string]any{"status": nil}
	if status.IsSet() {
		body["status"] = string(status)
	}
	if err := c.doRequest(ctx, http.MethodPut, url, body, &resp); err != nil {
		return nil, err
	}
	return resp.Frame, nil
}

// UpdateBoard applies a board mutation to a frame.
func (c *Client) UpdateBoard(ctx context.Context, projectID, frameID string, update BoardUpdate) (*BoardResult, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if err := requireID("frame id", frameID); err != nil {
		return nil, err
	}

	var resp boardResponse
	url := fmt.Sprintf("%s/projects/%s/frames/%s/boards", c.config.BaseURL, projectID, frameID)
	if err := c.doRequest(ctx, http.MethodPost, url, update, &resp); err != nil {
		return nil, err
	}
	return &BoardResult{
		Boards:        resp.Boards,
		MainBoardType: string(resp.MainBoardType),
		FrameID:       string(resp.FrameID),
	}, nil
}

// FetchSchedule retrieves the raw response body for a schedule. The body
// is handed to the schedule reconciler undecoded because schedule payload
// shapes vary too much for a fixed wire struct.
func (c *Client) FetchSchedule(ctx context.Context, scheduleID string) (json.RawMessage, error) {
	if err := requireID("schedule id", scheduleID); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	url := fmt.Sprintf("%s/schedules/%s", c.config.BaseURL, scheduleID)
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// doRequest executes one API call and decodes the response into result.
// result may be a *json.RawMessage to receive the body verbatim.
func (c *Client) doRequest(ctx context.Context, method, url string, body, result any) error {
	if c.config.AccessToken == "" {
		return errors.Newf("no access token configured").
			Category(errors.CategoryAuthMissing).
			Component("api").
			Build()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Newf("rate limit wait interrupted: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Component("api").
			Build()
	}

	start := time.Now()
	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()

	requestID := uuid.New().String()
	if c.debug {
		logger.Debug("api request", "method", method, "url", url, "request_id", requestID)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.countError()
			return errors.Newf("failed to marshal request body: %w", err).
				Category(errors.CategoryValidation).
				Context("method", method).
				Context("url", url).
				Component("api").
				Build()
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.countError()
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("url", url).
			Component("api").
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.countError()
		logger.Error("api request failed", "error", err, "method", method, "url", url, "request_id", requestID)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("url", url).
			Component("api").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countError()
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("api").
			Build()
	}

	c.metrics.mu.Lock()
	c.metrics.totalDuration += time.Since(start)
	c.metrics.mu.Unlock()

	if err := c.checkStatus(resp.StatusCode, url, requestID, bodyBytes); err != nil {
		c.countError()
		return err
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		c.countError()
		return errors.Newf("unparseable response body: %w", err).
			Category(errors.CategoryDecode).
			Context("url", url).
			Context("status_code", resp.StatusCode).
			Component("api").
			Build()
	}
	if env.rejected() {
		c.countError()
		message := string(env.Message)
		if message == "" {
			message = "request rejected by server"
		}
		logger.Warn("api request rejected", "message", message, "url", url, "request_id", requestID)
		return errors.Newf("%s", message).
			Category(errors.CategoryServerRejected).
			Context("url", url).
			Component("api").
			Build()
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		c.countError()
		return errors.Newf("failed to decode response: %w", err).
			Category(errors.CategoryDecode).
			Context("url", url).
			Component("api").
			Build()
	}
	return nil
}

// checkStatus maps a non-2xx transport status to an error category.
func (c *Client) checkStatus(statusCode int, url, requestID string, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	preview := string(body)
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		logger.Error("api authentication rejected",
			"status_code", statusCode,
			"url", url,
			"request_id", requestID)
		return errors.Newf("credential rejected by server (status %d)", statusCode).
			Category(errors.CategoryAuthRejected).
			Context("status_code", statusCode).
			Context("url", url).
			Component("api").
			Build()
	case http.StatusNotFound:
		return errors.Newf("resource not found").
			Category(errors.CategoryNotFound).
			Context("status_code", statusCode).
			Context("url", url).
			Component("api").
			Build()
	default:
		logger.Warn("api error response",
			"status_code", statusCode,
			"url", url,
			"response_preview", preview,
			"request_id", requestID)
		return errors.Newf("request failed with status %d", statusCode).
			Category(errors.CategoryHTTP).
			Context("status_code", statusCode).
			Context("url", url).
			Component("api").
			Build()
	}
}

func (c *Client) countError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

// Metrics is a snapshot of client counters.
type Metrics struct {
	APICalls      int64
	APIErrors     int64
	TotalDuration time.Duration
}

// GetMetrics returns a snapshot of the client's request counters.
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()
	return Metrics{
		APICalls:      c.metrics.apiCalls,
		APIErrors:     c.metrics.apiErrors,
		TotalDuration: c.metrics.totalDuration,
	}
}

func requireID(name, value string) error {
	if value != "" {
		return nil
	}
	return errors.Newf("%s is empty", name).
		Category(errors.CategoryValidation).
		Component("api").
		Build()
}
