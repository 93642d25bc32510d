package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		level     string
		expectErr bool
	}{
		{name: "info", level: "info"},
		{name: "debug", level: "debug"},
		{name: "warn uppercase", level: "WARN"},
		{name: "empty defaults to info", level: ""},
		{name: "invalid", level: "verbose", expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tc.level)
			if tc.expectErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected zapcore.Level
	}{
		{input: "debug", expected: zapcore.DebugLevel},
		{input: "info", expected: zapcore.InfoLevel},
		{input: "  ERROR  ", expected: zapcore.ErrorLevel},
		{input: "", expected: zapcore.InfoLevel},
	}

	for _, tc := range testCases {
		tc := tc
		level, err := parseLevel(tc.input)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.input, err)
		}
		if level != tc.expected {
			t.Fatalf("input %q: expected %v, got %v", tc.input, tc.expected, level)
		}
	}

	if _, err := parseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
