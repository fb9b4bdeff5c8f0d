package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return New(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestRedactingHandler_RedactsSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("unsealed",
		"protocol_version", "ECv2",
		"plaintext", "4111111111111111",
		"private_key", "MIGHAgEAMBMG",
		"mac_key", "d5f72946",
	)

	out := buf.String()
	for _, leaked := range []string{"4111111111111111", "MIGHAgEAMBMG", "d5f72946"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "protocol_version=ECv2") {
		t.Errorf("log output dropped a safe attribute: %s", out)
	}
	if strings.Count(out, RedactedValue) != 3 {
		t.Errorf("expected 3 redactions, got output: %s", out)
	}
}

func TestRedactingHandler_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).With("secret_value", "hunter2").WithGroup("unseal")

	logger.Info("attempt", slog.Group("keys", slog.String("symmetric_key", "00ff"), slog.Int("index", 1)))

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "00ff") {
		t.Errorf("log output leaked sensitive value: %s", out)
	}
	if !strings.Contains(out, "unseal.keys.index=1") {
		t.Errorf("log output missing grouped attribute: %s", out)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"private_key", true},
		{"Plaintext", true},
		{" token ", true},
		{"intermediate_signature", true},
		{"protocol_version", false},
		{"key_count", false},
		{"ttl", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestNew_NilDiscards(t *testing.T) {
	logger := New(nil)
	if logger == nil {
		t.Fatal("New(nil) returned nil")
	}
	logger.Info("dropped", "plaintext", "x")
}

func TestWrapHandler_Idempotent(t *testing.T) {
	h := WrapHandler(slog.DiscardHandler)
	if again := WrapHandler(h); again != h {
		t.Error("WrapHandler wrapped an already redacting handler")
	}
	if WrapHandler(nil) != nil {
		t.Error("WrapHandler(nil) should return nil")
	}
}
