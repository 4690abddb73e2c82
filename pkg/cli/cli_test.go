package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("simulation.engineers", "must be positive")
	if got := err.Error(); !strings.Contains(got, "simulation.engineers") {
		t.Errorf("Error() = %q, want field mentioned", got)
	}

	bare := NewConfigError("", "file unreadable")
	if got := bare.Error(); strings.Contains(got, "in ") {
		t.Errorf("Error() = %q, should not mention empty field", got)
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("run", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if got := err.Error(); !strings.Contains(got, "run") {
		t.Errorf("Error() = %q, want command name", got)
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatText)
	if err := f.FormatTo(&buf, "hello"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatJSON)

	data := map[string]int{"ticks": 42}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["ticks"] != 42 {
		t.Errorf("decoded ticks = %d, want 42", decoded["ticks"])
	}
}

type fakeCSVResult struct{}

func (fakeCSVResult) CSVHeader() []string { return []string{"run_id", "ticks"} }
func (fakeCSVResult) CSVRows() [][]string {
	return [][]string{{"run-1", "10"}, {"run-2", "20"}}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatCSV)

	if err := f.FormatTo(&buf, fakeCSVResult{}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if lines[0] != "run_id,ticks" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "run-2,20" {
		t.Errorf("last row = %q", lines[2])
	}
}

func TestCSVFormatter_UnsupportedType(t *testing.T) {
	f := &CSVFormatter{}
	if _, err := f.Format("not a recorder"); err == nil {
		t.Error("expected error for type without CSV support")
	}
}

func TestTickProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewTickProgress(&buf)

	p.Start(100)
	p.Update(50)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "50.0%") {
		t.Errorf("output missing midpoint percentage: %q", out)
	}
	if !strings.Contains(out, "100.0%") {
		t.Errorf("output missing completion percentage: %q", out)
	}
	if !strings.Contains(out, "ticks/s") {
		t.Errorf("output missing rate: %q", out)
	}
}

func TestTickProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewTickProgress(&buf)

	p.Start(0)
	p.Update(5)

	if buf.Len() != 0 {
		t.Errorf("expected no output for zero total, got %q", buf.String())
	}
}

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()
	select {
	case <-ctx.Done():
		t.Error("context should not be canceled without a signal")
	default:
	}
	if ctx == context.Background() {
		t.Error("should return a derived context")
	}
}
