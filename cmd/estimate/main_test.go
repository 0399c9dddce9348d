package main

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/materialcalc/internal/calculator"
)

func TestRunPrintsOutcome(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-material", "mulch",
		"-shape", "rectangle",
		"-dim", "length=20",
		"-dim", "width=8",
		"-price", "$3.98",
	}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var outcome calculator.Outcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &outcome))
	require.True(t, outcome.Valid)
	require.Equal(t, "1.63", outcome.Result.Volume.Display)
	require.Equal(t, "87.56", outcome.Result.Cost.Display)
}

func TestRunReportsInvalidInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-calculator", "area", "-shape", "square", "-dim", "side=abc"}, &stdout, &stderr)
	require.Equal(t, exitInvalid, code)

	var outcome calculator.Outcome
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &outcome))
	require.False(t, outcome.Valid)
	require.Equal(t, "side", outcome.Failure.Field)
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, exitUsage, run([]string{"-dim", "noequals"}, &stdout, &stderr))
	require.Equal(t, exitUsage, run([]string{"-config", "/does/not/exist.yaml"}, &stdout, &stderr))
}

func TestRunListsMaterials(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"-materials"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "mulch")
	require.Contains(t, stdout.String(), "paint")
}
