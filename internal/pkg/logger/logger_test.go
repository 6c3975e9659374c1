package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestConfigureReturnsJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	lgr := Configure(Config{Level: DebugLevel, Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	lgr = lgr.With().Str("component", "matcher").Logger()
	lgr.Info().Str("campus", "north").Msg("run started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "matcher" {
		t.Errorf("component = %v, want matcher", entry["component"])
	}
	if entry["campus"] != "north" {
		t.Errorf("campus = %v, want north", entry["campus"])
	}
}

func TestConfigureSetsGlobalLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: ErrorLevel, Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("global level = %v, want error", zerolog.GlobalLevel())
	}

	Info().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed, got %q", buf.String())
	}
}
