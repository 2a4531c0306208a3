// Package apperror carries the error taxonomy shared by the platform adapters,
// the token lifecycle manager and the dispatcher. Adapters classify
// provider-specific failures into these kinds at the boundary; nothing above
// the adapter layer needs provider knowledge.
package apperror

import (
	"errors"
	"fmt"
	"time"

	"social-scheduler/domain/model"
)

type Kind int

const (
	// KindUnknown is an unclassified failure; treated as terminal.
	KindUnknown Kind = iota
	// KindNotConnected means no credential is on file; user must connect.
	KindNotConnected
	// KindReconnectRequired means the credential is revoked or expired beyond
	// repair; user must reconnect. Retrying cannot help.
	KindReconnectRequired
	// KindTransient is a network or provider hiccup; retry with backoff.
	KindTransient
	// KindValidation is malformed request content; terminal, never retried.
	KindValidation
	// KindRateLimited means a tier ceiling was hit; wait or upgrade.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindNotConnected:
		return "not_connected"
	case KindReconnectRequired:
		return "reconnect_required"
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is a classified failure, optionally tied to a platform.
type Error struct {
	Kind     Kind
	Platform model.Platform
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Platform != "" {
		msg = fmt.Sprintf("%s: %s", e.Platform, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotConnected(platform model.Platform, msg string) *Error {
	return &Error{Kind: KindNotConnected, Platform: platform, Msg: msg}
}

func ReconnectRequired(platform model.Platform, msg string) *Error {
	return &Error{Kind: KindReconnectRequired, Platform: platform, Msg: msg}
}

func Transient(platform model.Platform, msg string, cause error) *Error {
	return &Error{Kind: KindTransient, Platform: platform, Msg: msg, Err: cause}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// RateLimitError reports a rejected consumption together with the data the
// caller needs to surface a precise retry-after.
type RateLimitError struct {
	Action    model.ActionKind
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit reached for %s; resets at %s", e.Action, e.ResetAt.UTC().Format(time.RFC3339))
}

// KindOf classifies any error, unwrapping as needed.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return KindRateLimited
	}
	return KindUnknown
}

func IsTransient(err error) bool         { return KindOf(err) == KindTransient }
func IsReconnectRequired(err error) bool { return KindOf(err) == KindReconnectRequired }
func IsNotConnected(err error) bool      { return KindOf(err) == KindNotConnected }
func IsValidation(err error) bool        { return KindOf(err) == KindValidation }
