package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	errs "igreport/pkg/errors"
	"igreport/pkg/logger"
	"igreport/pkg/ratelimit"
)

// DefaultUserAgent is sent when no session overrides it
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// maxBodyPreview bounds how much of a response body ends up in logs and errors
const maxBodyPreview = 200

// Client represents an Instagram API client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
	limiter    ratelimit.Limiter
	pageSize   int
	mu         sync.RWMutex
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL points the client at another host, used by tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLimiter sets the request-level rate limiter
func WithLimiter(l ratelimit.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPageSize sets how many posts each media page requests
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// NewClient creates a new Instagram API client
func NewClient(timeout time.Duration, log logger.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":       DefaultUserAgent,
			"Accept":           "*/*",
			"Accept-Language":  "en-US,en;q=0.9",
			"X-IG-App-ID":      WebAppID,
			"X-Requested-With": "XMLHttpRequest",
			"Sec-Fetch-Dest":   "empty",
			"Sec-Fetch-Mode":   "cors",
			"Sec-Fetch-Site":   "same-origin",
		},
		baseURL:  BaseURL,
		logger:   log,
		limiter:  ratelimit.Unlimited{},
		pageSize: DefaultMediaLimit,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range headers {
		c.headers[key] = value
	}
}

// Header returns the current value of a client header
func (c *Client) Header(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers[key]
}

// ApplySession attaches the session cookies to every later request
func (c *Client) ApplySession(s *Session) {
	if s == nil || !s.Valid() {
		return
	}

	headers := map[string]string{
		"Cookie": s.CookieHeader(),
	}
	if s.CSRFToken != "" {
		headers["X-CSRFToken"] = s.CSRFToken
	}
	if s.UserAgent != "" {
		headers["User-Agent"] = s.UserAgent
	}
	c.SetHeaders(headers)

	c.logger.DebugWithFields("session applied to client", map[string]interface{}{
		"account": s.Username,
	})
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	if b, ok := c.limiter.(ratelimit.Budgeted); ok && b.Remaining() == 0 {
		c.logger.Debug("request budget for this minute used up")
	}

	c.mu.RLock()
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	c.mu.RUnlock()

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, 0, "network error", err)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)

	return resp, nil
}

// Get performs a GET request to the specified URL
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, "failed to create request", err)
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errs.Wrap(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body", err)
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return errs.Wrap(errs.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON", err)
	}

	return nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
	}
	message := remoteMessage(body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || isWaitMessage(message):
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, orDefault(message, "rate limit exceeded"))
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.WarnWithFields("authentication error", fields)
		return errs.New(errs.ErrorTypeAuth, resp.StatusCode, orDefault(message, "authentication required"))
	case resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("access forbidden", fields)
		return errs.New(errs.ErrorTypeAuth, resp.StatusCode, orDefault(message, "access forbidden"))
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return errs.New(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", fields)
		return errs.New(errs.ErrorTypeServerError, resp.StatusCode, "server error")
	case resp.StatusCode >= 400:
		fields["body_preview"] = preview(body)
		c.logger.ErrorWithFields("unexpected API error", fields)
		return errs.New(errs.ErrorTypeUnknown, resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	default:
		return nil
	}
}

// checkEnvelope turns a status "fail" body into a typed error
func checkEnvelope(r *InstagramResponse) error {
	if r.Status != "fail" {
		return nil
	}
	if isWaitMessage(r.Message) {
		return errs.New(errs.ErrorTypeRateLimit, http.StatusOK, r.Message)
	}
	return errs.New(errs.ErrorTypeUnknown, http.StatusOK, orDefault(r.Message, "request failed"))
}

// FetchProfile resolves a username to its profile and first media page
func (c *Client) FetchProfile(ctx context.Context, username string) (*User, error) {
	url := ProfileURL(c.baseURL, username)

	c.logger.DebugWithFields("fetching user profile", map[string]interface{}{
		"username": username,
		"url":      url,
	})

	var response InstagramResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch user profile", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}

	if err := checkEnvelope(&response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		c.logger.WarnWithFields("authentication required for profile", map[string]interface{}{
			"username": username,
		})
		return nil, errs.New(errs.ErrorTypeAuth, http.StatusForbidden, "Instagram requires authentication to view this profile")
	}

	user := response.Data.User
	if user == nil || user.ID == "" {
		return nil, errs.New(errs.ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("profile %q does not exist", username))
	}

	if user.Hidden() {
		return nil, errs.New(errs.ErrorTypePrivate, http.StatusForbidden, fmt.Sprintf("profile %q is private", username))
	}

	c.logger.DebugWithFields("successfully fetched user profile", map[string]interface{}{
		"username":  username,
		"user_id":   user.ID,
		"followers": user.Followers(),
		"posts":     user.EdgeOwnerToTimelineMedia.Count,
	})

	return user, nil
}

// FetchMedia fetches the media page following cursor after
func (c *Client) FetchMedia(ctx context.Context, userID, after string) (*EdgeOwnerToTimelineMedia, error) {
	url := MediaURL(c.baseURL, userID, after, c.pageSize)

	c.logger.DebugWithFields("fetching user media", map[string]interface{}{
		"user_id": userID,
		"after":   after,
	})

	var response InstagramResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch user media", map[string]interface{}{
			"user_id": userID,
			"after":   after,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := checkEnvelope(&response); err != nil {
		return nil, err
	}

	if response.Data.User == nil {
		return nil, errs.New(errs.ErrorTypeParsing, http.StatusOK, "media response has no user")
	}

	media := response.Data.User.EdgeOwnerToTimelineMedia

	c.logger.DebugWithFields("successfully fetched user media", map[string]interface{}{
		"user_id":       userID,
		"media_count":   len(media.Edges),
		"has_next_page": media.PageInfo.HasNextPage,
	})

	return &media, nil
}

func remoteMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

func isWaitMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "wait")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > maxBodyPreview {
		return s[:maxBodyPreview] + "..."
	}
	return s
}
