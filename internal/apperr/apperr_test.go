package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", io.EOF, KindUnknown},
		{"not found", NotFound("load", "INV-1"), KindNotFound},
		{"wrapped malformed", fmt.Errorf("export: %w", Malformed("load", "INV-2", io.ErrUnexpectedEOF)), KindMalformedRecord},
		{"validation", Validation("invoice_number", "is required"), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("get invoice: %w", NotFound("load", "INV-1"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrMalformedRecord) {
		t.Error("not found must not match malformed record")
	}

	malformed := Malformed("load", "INV-2", io.ErrUnexpectedEOF)
	if !errors.Is(malformed, io.ErrUnexpectedEOF) {
		t.Error("expected the cause to stay reachable through Unwrap")
	}
}

func TestIsTransport(t *testing.T) {
	for _, k := range []Kind{KindAuthFailed, KindRecipientRejected, KindConnectionLost, KindTransport} {
		if !IsTransport(&Error{Kind: k}) {
			t.Errorf("IsTransport(%v) = false", k)
		}
	}
	if IsTransport(ErrStorage) {
		t.Error("storage errors are not transport errors")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindAuthFailed, Op: "send", Err: errors.New("535 bad credentials"), Hint: "use an app password"}
	want := "send: auth_failed: 535 bad credentials (use an app password)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if HintOf(fmt.Errorf("wrapped: %w", err)) != "use an app password" {
		t.Error("HintOf should find the hint through wrapping")
	}
}
