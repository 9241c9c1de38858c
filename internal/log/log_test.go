package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (Logger{Level: "debug", Format: "json", Output: &buf}).Setup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Debug().Str("table", "wards").Msg("loaded")
	if !strings.Contains(buf.String(), `"table":"wards"`) {
		t.Errorf("expected structured field in %q", buf.String())
	}
}

func TestSetupBadFormat(t *testing.T) {
	if err := (Logger{Format: "xml"}).Setup(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetupBadLevel(t *testing.T) {
	var buf bytes.Buffer
	err := (Logger{Level: "loud", Format: "json", Output: &buf}).Setup()
	if err == nil {
		t.Error("expected error for unknown level")
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected fallback to info, got %v", zerolog.GlobalLevel())
	}
}
