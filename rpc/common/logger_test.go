package common

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestLineLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stdout)

	l := CreateLogger("test")

	l.Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("Expected debug line to be filtered at INFO, got %q", buf.String())
	}

	l.Infof("visible %d", 2)
	line := buf.String()
	if !strings.Contains(line, "INFO  | test            | visible 2") || !strings.HasSuffix(line, "\n") {
		t.Errorf("Unexpected line format: %q", line)
	}

	buf.Reset()
	l.SetLevel(logger.ERROR)
	l.Warningf("hidden")
	l.Errorf("boom")
	if got := strings.Count(buf.String(), "\n"); got != 1 || !strings.Contains(buf.String(), "ERROR | test") {
		t.Errorf("Expected exactly one error line, got %q", buf.String())
	}
}

func TestLineLoggerPanics(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stdout)

	defer func() {
		if r := recover(); r != "fatal 3" {
			t.Errorf("Expected panic with message, got %v", r)
		}
	}()
	CreateLogger("test").Panicf("fatal %d", 3)
}
