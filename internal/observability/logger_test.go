package observability

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/coachpo/materialcalc/errs"
)

func TestStdLoggerFormatsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(log.New(&buf, "", 0), false)

	logger.Info("estimate computed", Field{Key: "calculator", Value: "volume"}, Field{Key: "items", Value: 3})
	logger.Debug("hidden")
	logger.Error("estimate failed", Field{Key: "err", Value: errors.New("bad input")}, Field{Key: "field", Value: "depth unit"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "INFO estimate computed calculator=volume items=3" {
		t.Fatalf("unexpected info line %q", lines[0])
	}
	if lines[1] != `ERROR estimate failed err="bad input" field="depth unit"` {
		t.Fatalf("unexpected error line %q", lines[1])
	}
}

func TestSetLoggerAndAggregateErrors(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewStdLogger(log.New(&buf, "", 0), true))
	t.Cleanup(func() { SetLogger(nil) })

	if err := AggregateErrors("noop", []error{nil, nil}); err != nil {
		t.Fatalf("expected nil for empty error set, got %v", err)
	}

	first := errors.New("first")
	err := AggregateErrors("material catalog", []error{first, nil, errors.New("second")})
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if !errors.Is(err, first) {
		t.Fatalf("expected aggregated error to wrap first")
	}
	if !strings.HasPrefix(err.Error(), "material catalog failed:") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	if !strings.Contains(buf.String(), "operation=\"material catalog\"") || !strings.Contains(buf.String(), "error_count=2") {
		t.Fatalf("expected structured log line, got %q", buf.String())
	}
}

func TestAggregateErrorsListsInputFields(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewStdLogger(log.New(&buf, "", 0), false))
	t.Cleanup(func() { SetLogger(nil) })

	err := AggregateErrors("settings", []error{
		errs.New("depth", errs.CodeMustBePositive),
		errs.New("bagSize", errs.CodeTooLarge),
	})
	if errs.CodeOf(err) != errs.CodeMustBePositive {
		t.Fatalf("expected first code to remain reachable, got %q", errs.CodeOf(err))
	}
	if !strings.Contains(buf.String(), "fields=depth,bagSize") {
		t.Fatalf("expected field list in log line, got %q", buf.String())
	}
}
