package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "job advanced", JobID("job-1"), Bool("success", true))

	out := buf.String()
	if !strings.Contains(out, "job_id=job-1") {
		t.Fatalf("expected job_id field, got %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Fatalf("expected source field, got %q", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		_ = SetFormat("text")
		SetOutput(os.Stdout)
	}()
	if err := SetFormat("json"); err != nil {
		t.Fatalf("set format: %v", err)
	}

	Get().With(Requester("req-9")).Warn(context.Background(), "threat rising", Int("threat", 7))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected a json line, got %q: %v", buf.String(), err)
	}
	if decoded["requester_id"] != "req-9" {
		t.Fatalf("expected requester_id req-9, got %v", decoded["requester_id"])
	}
	if decoded["threat"] != float64(7) {
		t.Fatalf("expected threat 7, got %v", decoded["threat"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info line should be filtered at warn, got %q", buf.String())
	}
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := SetFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("coordinator")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
	Nop().Error(context.Background(), "discarded")
}
