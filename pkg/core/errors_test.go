package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExecutionError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrAgentUnreachable.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the cause")
	}
	want := "could not connect to automation agent: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestExecutionError_WithMessageKeepsSentinelImmutable(t *testing.T) {
	custom := ErrElementNotFound.WithMessage("no Save button")
	if custom.Message != "no Save button" {
		t.Errorf("Message = %q", custom.Message)
	}
	if ErrElementNotFound.Message != "element not found" {
		t.Errorf("sentinel mutated: %q", ErrElementNotFound.Message)
	}
	if custom.Code != ErrElementNotFound.Code {
		t.Errorf("Code = %q, want %q", custom.Code, ErrElementNotFound.Code)
	}
}

func TestExecutionError_WithDetailsMerges(t *testing.T) {
	base := ErrTextMismatch.WithDetails(map[string]interface{}{"field": "sets"})
	merged := base.WithDetails(map[string]interface{}{"ui": 10, "backend": 12})

	if merged.Details["field"] != "sets" {
		t.Error("original detail lost in merge")
	}
	if merged.Details["ui"] != 10 || merged.Details["backend"] != 12 {
		t.Errorf("Details = %v", merged.Details)
	}
	if len(base.Details) != 1 {
		t.Errorf("base details mutated: %v", base.Details)
	}
}

func TestExecutionError_AsThroughWrap(t *testing.T) {
	wrapped := fmt.Errorf("task failed: %w", ErrReportMismatch.WithMessage("sets differ"))

	var execErr *ExecutionError
	if !errors.As(wrapped, &execErr) {
		t.Fatal("errors.As failed through fmt.Errorf wrap")
	}
	if execErr.Category != ErrCategoryAssertion {
		t.Errorf("Category = %v, want assertion", execErr.Category)
	}
	if execErr.Code != "report_mismatch" {
		t.Errorf("Code = %q", execErr.Code)
	}
}
