// Package apperr defines the error kinds shared by every invoicer component.
//
// Each fallible operation returns a plain Go error. When the failure belongs to
// one of the known kinds, the error is (or wraps) an *Error carrying that Kind,
// so callers can switch on KindOf(err) or test errors.Is(err, ErrNotFound).
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindMalformedRecord
	KindStorage
	KindPartialData
	KindAuthFailed
	KindRecipientRejected
	KindConnectionLost
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindMalformedRecord:
		return "malformed_record"
	case KindStorage:
		return "storage"
	case KindPartialData:
		return "partial_data"
	case KindAuthFailed:
		return "auth_failed"
	case KindRecipientRejected:
		return "recipient_rejected"
	case KindConnectionLost:
		return "connection_lost"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrMalformedRecord   = &Error{Kind: KindMalformedRecord}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrPartialData       = &Error{Kind: KindPartialData}
	ErrAuthFailed        = &Error{Kind: KindAuthFailed}
	ErrRecipientRejected = &Error{Kind: KindRecipientRejected}
	ErrConnectionLost    = &Error{Kind: KindConnectionLost}
	ErrTransport         = &Error{Kind: KindTransport}
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "load".
	Op string
	// Key is the invoice number (or field name for validation errors), if any.
	Key string
	// Msg is a human readable description.
	Msg string
	// Hint is an optional remediation shown to the user.
	Hint string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		b.WriteString(" (")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Key == "" && t.Msg == "" && t.Err == nil
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HintOf returns the remediation hint attached to err, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// IsTransport reports whether err is any of the mail transport kinds.
func IsTransport(err error) bool {
	switch KindOf(err) {
	case KindAuthFailed, KindRecipientRejected, KindConnectionLost, KindTransport:
		return true
	}
	return false
}

// Validation returns a validation error for field.
func Validation(field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Key: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error for the invoice key.
func NotFound(op, key string) error {
	return &Error{Kind: KindNotFound, Op: op, Key: key}
}

// Malformed returns a malformed-record error for key.
func Malformed(op, key string, err error) error {
	return &Error{Kind: KindMalformedRecord, Op: op, Key: key, Err: err}
}

// Storage wraps an I/O failure.
func Storage(op, key string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Key: key, Err: err}
}

// PartialData reports that an aggregate could not include every record.
func PartialData(op string, err error) error {
	return &Error{Kind: KindPartialData, Op: op, Err: err}
}
