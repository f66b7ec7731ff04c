package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "igreport/pkg/errors"
)

// Session is an authenticated Instagram web session.
// It is read-only once created and is never written to disk by the scanner.
type Session struct {
	Username  string `json:"username" yaml:"username"`
	SessionID string `json:"session_id" yaml:"session_id"`
	CSRFToken string `json:"csrf_token" yaml:"csrf_token"`
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// Valid reports whether the session can authenticate requests
func (s *Session) Valid() bool {
	return s != nil && s.SessionID != ""
}

// CookieHeader renders the session as a Cookie header value
func (s *Session) CookieHeader() string {
	cookies := []string{"sessionid=" + s.SessionID}
	if s.CSRFToken != "" {
		cookies = append(cookies, "csrftoken="+s.CSRFToken)
	}
	return strings.Join(cookies, "; ")
}

// Credentials are a username and password used for a one-off login.
// They are kept in memory only.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether no login was requested
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// String never prints the password
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q}", c.Username)
}

// Login exchanges a username and password for a web session.
// A checkpoint or two-factor prompt yields a challenge error.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Empty() {
		return nil, errs.New(errs.ErrorTypeAuth, 0, "username and password are required")
	}

	csrf, err := c.fetchCSRFToken(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("enc_password", fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%s:%s", strconv.FormatInt(time.Now().Unix(), 10), creds.Password))
	form.Set("queryParams", "{}")
	form.Set("optIntoOneTap", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, LoginURL(c.baseURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, "failed to create login request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", csrf)
	req.Header.Set("Cookie", "csrftoken="+csrf)
	req.Header.Set("Referer", LoginPageURL(c.baseURL))

	c.logger.InfoWithFields("logging in to Instagram", map[string]interface{}{
		"account": creds.Username,
	})

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read login response", err)
	}

	var result loginResponse
	if jsonErr := json.Unmarshal(body, &result); jsonErr != nil {
		if statusErr := c.checkResponseStatus(resp, body); statusErr != nil {
			return nil, statusErr
		}
		return nil, errs.Wrap(errs.ErrorTypeParsing, resp.StatusCode, "failed to parse login response", jsonErr)
	}

	switch {
	case result.CheckpointURL != "" || result.TwoFactorRequired || result.Message == "checkpoint_required":
		return nil, errs.New(errs.ErrorTypeChallenge, resp.StatusCode, "login requires a checkpoint or two-factor challenge")
	case isWaitMessage(result.Message) || resp.StatusCode == http.StatusTooManyRequests:
		return nil, errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, orDefault(result.Message, "rate limit exceeded"))
	case !result.Authenticated:
		msg := "invalid username or password"
		if !result.User {
			msg = "unknown account"
		}
		return nil, errs.New(errs.ErrorTypeAuth, resp.StatusCode, msg)
	}

	session := &Session{
		Username:  creds.Username,
		CSRFToken: csrf,
		UserAgent: c.Header("User-Agent"),
	}
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case "sessionid":
			session.SessionID = cookie.Value
		case "csrftoken":
			session.CSRFToken = cookie.Value
		}
	}

	if !session.Valid() {
		return nil, errs.New(errs.ErrorTypeAuth, resp.StatusCode, "login succeeded without a session cookie")
	}

	c.logger.InfoWithFields("logged in to Instagram", map[string]interface{}{
		"account": creds.Username,
	})

	return session, nil
}

// fetchCSRFToken loads the login page to obtain a csrftoken cookie
func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	resp, err := c.Get(ctx, LoginPageURL(c.baseURL))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrftoken" && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", errs.New(errs.ErrorTypeAuth, resp.StatusCode, "login page did not set a csrftoken")
}
