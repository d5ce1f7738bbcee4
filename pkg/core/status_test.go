package core

import "testing"

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{StatusWarned, "warned"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_IsSuccess(t *testing.T) {
	if !StatusPassed.IsSuccess() || !StatusWarned.IsSuccess() {
		t.Error("passed/warned should be success")
	}
	if StatusFailed.IsSuccess() || StatusErrored.IsSuccess() || StatusSkipped.IsSuccess() {
		t.Error("failed/errored/skipped should not be success")
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusRunning.IsTerminal() {
		t.Error("pending/running should not be terminal")
	}
	for _, s := range []Status{StatusPassed, StatusFailed, StatusErrored, StatusSkipped, StatusWarned} {
		if !s.IsTerminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}

func TestBounds_Center(t *testing.T) {
	b := Bounds{X: 100, Y: 200, Width: 200, Height: 50}
	x, y := b.Center()
	if x != 200 || y != 225 {
		t.Errorf("Center() = (%d, %d), want (200, 225)", x, y)
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 100, Height: 100}
	if !b.Contains(10, 10) || !b.Contains(109, 109) {
		t.Error("corner points should be contained")
	}
	if b.Contains(110, 50) || b.Contains(50, 9) {
		t.Error("outside points should not be contained")
	}
}
