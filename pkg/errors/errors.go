package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType represents different types of errors returned by the remote source
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeChallenge   ErrorType = "challenge"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypePrivate     ErrorType = "private"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed API error
func New(errType ErrorType, code int, message string) *Error {
	return &Error{Type: errType, Message: message, Code: code}
}

// Wrap creates a typed API error around an underlying cause
func Wrap(errType ErrorType, code int, message string, err error) *Error {
	return &Error{Type: errType, Message: message, Code: code, Err: err}
}

// Kind is the scan-level failure category surfaced to callers
type Kind string

const (
	KindNone               Kind = ""
	KindProfileUnavailable Kind = "profile_unavailable"
	KindRemoteBlocked      Kind = "remote_blocked"
	KindUndefinedMetric    Kind = "undefined_metric"
	KindCancelled          Kind = "cancelled"
)

// Sentinels usable with errors.Is against a *ScanError
var (
	ErrProfileUnavailable = stderrors.New("profile unavailable")
	ErrRemoteBlocked      = stderrors.New("remote blocked")
	ErrUndefinedMetric    = stderrors.New("undefined metric")
)

// CooldownPeriod is how long a user is told to wait after being throttled
const CooldownPeriod = 15 * time.Minute

// ScanError is returned by a scan that could not produce statistics
type ScanError struct {
	Kind     Kind
	Username string
	Err      error
}

func (e *ScanError) Error() string {
	switch e.Kind {
	case KindRemoteBlocked:
		return fmt.Sprintf("scan of @%s blocked by remote: %v", e.Username, e.Err)
	case KindProfileUnavailable:
		return fmt.Sprintf("profile @%s unavailable: %v", e.Username, e.Err)
	default:
		return fmt.Sprintf("scan of @%s failed: %v", e.Username, e.Err)
	}
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels
func (e *ScanError) Is(target error) bool {
	switch target {
	case ErrProfileUnavailable:
		return e.Kind == KindProfileUnavailable
	case ErrRemoteBlocked:
		return e.Kind == KindRemoteBlocked
	case ErrUndefinedMetric:
		return e.Kind == KindUndefinedMetric
	}
	return false
}

// NewScanError classifies err and wraps it for username
func NewScanError(username string, err error) *ScanError {
	return &ScanError{Kind: Classify(err), Username: username, Err: err}
}

// Classify maps a remote failure onto a scan kind.
// Typed errors are decided by their type: rate limits, challenges and
// blocking status codes are throttling, and a network failure (including a
// per-request timeout) means the profile could not be read. The "401" and
// "wait" hints are only looked for in text the remote sent, or in untyped
// errors, so usernames never influence the result.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var scanErr *ScanError
	if stderrors.As(err, &scanErr) {
		return scanErr.Kind
	}

	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Type {
		case ErrorTypeRateLimit, ErrorTypeChallenge:
			return KindRemoteBlocked
		case ErrorTypeNotFound, ErrorTypePrivate, ErrorTypeParsing, ErrorTypeServerError, ErrorTypeNetwork:
			return KindProfileUnavailable
		case ErrorTypeAuth:
			if IsBlockingStatusCode(apiErr.Code) {
				return KindRemoteBlocked
			}
			return KindProfileUnavailable
		}
		if IsBlockingStatusCode(apiErr.Code) || throttleHint(apiErr.Message) {
			return KindRemoteBlocked
		}
		return KindProfileUnavailable
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}

	if throttleHint(err.Error()) {
		return KindRemoteBlocked
	}
	return KindProfileUnavailable
}

func throttleHint(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "401") || strings.Contains(text, "wait")
}

// IsRemoteBlocked reports whether err means the remote is throttling us
func IsRemoteBlocked(err error) bool {
	return Classify(err) == KindRemoteBlocked
}

// IsProfileUnavailable reports whether err means the profile could not be read
func IsProfileUnavailable(err error) bool {
	return Classify(err) == KindProfileUnavailable
}

// Guidance returns the user-facing hint for a scan failure
func Guidance(err error) string {
	var username string
	var scanErr *ScanError
	if stderrors.As(err, &scanErr) {
		username = scanErr.Username
	}

	switch Classify(err) {
	case KindRemoteBlocked:
		if username != "" {
			return fmt.Sprintf("Instagram speed limit hit: please wait %d minutes before scanning @%s again.",
				int(CooldownPeriod.Minutes()), username)
		}
		return fmt.Sprintf("Instagram speed limit hit: please wait %d minutes before scanning again.",
			int(CooldownPeriod.Minutes()))
	case KindProfileUnavailable:
		if username != "" {
			return fmt.Sprintf("Could not read @%s: verify the username or authenticate.", username)
		}
		return "Could not read the profile: verify the username or authenticate."
	case KindCancelled:
		return "Scan cancelled."
	case KindUndefinedMetric:
		return "Engagement rate is undefined for a profile without followers."
	}
	return ""
}

// IsType checks whether err carries an API error of the given type
func IsType(err error, errType ErrorType) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == errType
	}
	return false
}

// IsBlockingStatusCode checks if an HTTP status code means the remote is throttling
func IsBlockingStatusCode(statusCode int) bool {
	switch statusCode {
	case 401, 429:
		return true
	default:
		return false
	}
}
