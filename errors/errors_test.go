package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseValidate,
				Kind:   KindInvalidHex,
				Path:   []string{"content_hash"},
				Detail: "invalid hex string",
			},
			contains: []string{"[validate]", "invalid_hex", "content_hash", "invalid hex string"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStore,
				Kind:  KindNotFound,
			},
			contains: []string{"[store]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseNetwork,
				Kind:   KindIO,
				Detail: "download failed",
				Cause:  errors.New("connection refused"),
			},
			contains: []string{"[network]", "io", "download failed", "caused by", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseStore,
		Kind:  KindIO,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseValidate,
		Kind:  KindNilPointer,
		Path:  []string{"handle"},
	}

	// Same phase and kind matches regardless of path.
	if !errors.Is(err, &Error{Phase: PhaseValidate, Kind: KindNilPointer}) {
		t.Error("expected match on phase+kind")
	}
	if errors.Is(err, &Error{Phase: PhaseValidate, Kind: KindTimeout}) {
		t.Error("unexpected match on different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseDocs, Kind: KindNilPointer}) {
		t.Error("unexpected match on different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("disk full")
	err := New(PhaseStore, KindIO).
		Path("objects").
		Detail("write object %s", "abcd").
		Cause(cause).
		Build()

	if err.Phase != PhaseStore || err.Kind != KindIO {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != "write object abcd" {
		t.Fatalf("unexpected detail: %q", err.Detail)
	}
	if !errors.Is(err, &Error{Phase: PhaseStore, Kind: KindIO}) {
		t.Fatal("builder error does not match itself")
	}
	if err.Unwrap() != cause {
		t.Fatal("cause not preserved")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err      *Error
		phase    Phase
		kind     Kind
		contains string
	}{
		{NilArgument("handle"), PhaseValidate, KindNilPointer, "handle cannot be null"},
		{InvalidUTF8("ticket", []byte{0xff, 0xfe}), PhaseValidate, KindInvalidUTF8, "fffe"},
		{InvalidHex("secret_hex", errors.New("odd length")), PhaseValidate, KindInvalidHex, "invalid hex"},
		{InvalidLength("secret", 32, 16), PhaseValidate, KindInvalidLength, "expected 32 bytes, got 16"},
		{NotEnabled("docs"), PhaseValidate, KindNotEnabled, "docs not enabled"},
		{StaleHandle("doc_handle"), PhaseValidate, KindNotFound, "not a live handle"},
		{Timeout("put", 5), PhaseRuntime, KindTimeout, "put timed out after 5ms"},
		{NotFound(PhaseStore, "object", "abcd"), PhaseStore, KindNotFound, `object "abcd" not found`},
		{ParseFailed("blob ticket", errors.New("bad prefix")), PhaseParse, KindInvalidTicket, "parse blob ticket"},
		{BadSignature("entry rejected"), PhaseDocs, KindSignature, "entry rejected"},
		{Closed(PhaseRuntime, "node"), PhaseRuntime, KindClosed, "node is closed"},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase {
			t.Errorf("%v: expected phase %s, got %s", tt.err, tt.phase, tt.err.Phase)
		}
		if tt.err.Kind != tt.kind {
			t.Errorf("%v: expected kind %s, got %s", tt.err, tt.kind, tt.err.Kind)
		}
		if !strings.Contains(tt.err.Error(), tt.contains) {
			t.Errorf("%q does not contain %q", tt.err.Error(), tt.contains)
		}
	}
}

func TestInvalidUTF8_TruncatesPreview(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = 0xff
	}
	msg := InvalidUTF8("key", data).Error()
	// 32-byte preview is 64 hex chars.
	if strings.Count(msg, "ff") > 40 {
		t.Fatalf("preview not truncated: %q", msg)
	}
}
