// logger_test.go - Tests for log level parsing.

package main

import "testing"

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"error":   LogLevelError,
		"WARN":    LogLevelWarn,
		"warning": LogLevelWarn,
		"Info":    LogLevelInfo,
		"debug":   LogLevelDebug,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
