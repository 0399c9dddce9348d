package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormattingIncludesFieldAndDetails(t *testing.T) {
	err := New(
		"depth",
		CodeMustBePositive,
		WithHTTP(422),
		WithMessage("depth must be greater than zero"),
		WithDetail("unit", "in"),
		WithDetail("input", "0"),
		WithRemediation("enter a depth such as 3"),
		WithCause(errors.New("zero value")),
	)

	want := `depth: must_be_positive: depth must be greater than zero (enter a depth such as 3) [input="0" unit="in"]: zero value`
	if got := err.Error(); got != want {
		t.Fatalf("unexpected rendering\n got: %s\nwant: %s", got, want)
	}
}

func TestNilErrorString(t *testing.T) {
	var e *E
	if got := e.Error(); got != "<nil>" {
		t.Fatalf("expected <nil> string for nil error, got %q", got)
	}
}

func TestEmptyCodeRendersUnknown(t *testing.T) {
	out := New("  ", "").Error()
	if out != "unknown" {
		t.Fatalf("unexpected rendering %q", out)
	}
}

func TestWithDetailEmptyKeyIgnored(t *testing.T) {
	err := New("waste", CodeTooLarge, WithDetail("  ", "value"))
	if err.Details != nil {
		t.Fatal("expected nil details for empty key")
	}
}

func TestCodeAndFieldExtraction(t *testing.T) {
	base := New("radius", CodeMustBePositive, WithMessage("radius must be greater than zero"))
	wrapped := fmt.Errorf("compute area: %w", base)

	if got := CodeOf(wrapped); got != CodeMustBePositive {
		t.Fatalf("expected must_be_positive, got %q", got)
	}
	if got := FieldOf(wrapped); got != "radius" {
		t.Fatalf("expected radius field, got %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code for foreign error, got %q", got)
	}
	if !errors.Is(wrapped, New("", CodeMustBePositive)) {
		t.Fatal("expected errors.Is to match on code")
	}
	if errors.Is(wrapped, New("", CodeInvalidBorder)) {
		t.Fatal("expected errors.Is to reject a different code")
	}
}

func TestInFieldCopies(t *testing.T) {
	base := New("", CodeEmptyInput, WithDetail("k", "v"))
	moved := base.InField("bagSize")
	if moved.Field != "bagSize" {
		t.Fatalf("expected bagSize, got %q", moved.Field)
	}
	if base.Field != "" {
		t.Fatal("expected receiver to be left untouched")
	}
	moved.Details["k"] = "changed"
	if base.Details["k"] != "v" {
		t.Fatal("expected details to be copied")
	}
}
