package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/budokan/backend/domain"
	"github.com/budokan/backend/internal/config"
)

// Client talks to the core API that owns session metadata, event access
// facts and signed stream URLs. Responses are never cached: the watch flow
// always needs current state.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an upstream client from configuration.
func New(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL: cfg.BaseURL,
		timeout: timeout,
		logger:  logger,
	}
}

// GetSession fetches session metadata by ID. Any failure, network or
// non-2xx, degrades to ErrSessionNotFound so callers uniformly fall back to
// the listing page.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*domain.TrainingSession, error) {
	var session domain.TrainingSession
	path := fmt.Sprintf("/api/training/sessions/%s", url.PathEscape(sessionID))
	if err := c.getJSON(ctx, path, &session); err != nil {
		c.logger.Warn("session lookup failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, domain.ErrSessionNotFound
	}
	if session.ID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// CheckLiveAccess returns the event access facts for a live session.
// Errors propagate so the evaluator can fail closed.
func (c *Client) CheckLiveAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error) {
	return c.checkAccess(ctx, sessionID, userID, "access")
}

// CheckVODAccess returns the event access facts for a recording.
func (c *Client) CheckVODAccess(ctx context.Context, sessionID, userID string) (*domain.EventAccess, error) {
	return c.checkAccess(ctx, sessionID, userID, "vod-access")
}

func (c *Client) checkAccess(ctx context.Context, sessionID, userID, endpoint string) (*domain.EventAccess, error) {
	var access domain.EventAccess
	path := fmt.Sprintf("/api/training/sessions/%s/%s?userId=%s",
		url.PathEscape(sessionID), endpoint, url.QueryEscape(userID))
	if err := c.getJSON(ctx, path, &access); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "access check failed", err)
	}
	return &access, nil
}

// ResolveStreamURL obtains a signed, time-limited playback URL for a
// recording. An empty URL means the stream is unavailable; callers redirect
// and never construct a fallback URL themselves.
func (c *Client) ResolveStreamURL(ctx context.Context, recordingID, sessionID string) (string, error) {
	var payload struct {
		SignedURL string `json:"signedUrl"`
	}
	path := fmt.Sprintf("/api/training/sessions/%s/stream-url?recordingId=%s",
		url.PathEscape(sessionID), url.QueryEscape(recordingID))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		c.logger.Warn("stream url resolution failed",
			zap.String("session_id", sessionID),
			zap.String("recording_id", recordingID),
			zap.Error(err))
		return "", domain.ErrStreamUnavailable
	}
	if payload.SignedURL == "" {
		return "", domain.ErrStreamUnavailable
	}
	return payload.SignedURL, nil
}

// RelatedSessions fetches sessions similar to the one being watched.
// Callers treat failures as an empty list.
func (c *Client) RelatedSessions(ctx context.Context, query domain.RelatedQuery) ([]domain.TrainingSession, error) {
	values := url.Values{}
	if query.Category != "" {
		values.Set("category", query.Category)
	}
	if query.InstructorID != "" {
		values.Set("instructorId", query.InstructorID)
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Exclude != "" {
		values.Set("exclude", query.Exclude)
	}

	var sessions []domain.TrainingSession
	path := "/api/training/sessions/related?" + values.Encode()
	if err := c.getJSON(ctx, path, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Ping probes the upstream root so the connection monitor can report
// reachability. Any response, even an error status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/health")
	req.Header.SetMethod(fasthttp.MethodGet)
	return c.do(ctx, req, resp)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	if err := c.do(ctx, req, resp); err != nil {
		return err
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return fmt.Errorf("upstream returned status %d", status)
	}

	return json.Unmarshal(resp.Body(), out)
}

// do honors the context deadline when one is set, falling back to the
// configured timeout otherwise.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	return c.http.DoDeadline(req, resp, deadline)
}
