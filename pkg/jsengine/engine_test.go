package jsengine

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEvaluate_Expression(t *testing.T) {
	e := New()
	result, err := e.Evaluate("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if n, ok := result.(int64); !ok || n != 14 {
		t.Errorf("result = %v (%T), want 14", result, result)
	}
}

func TestEvaluate_SyntaxError(t *testing.T) {
	e := New()
	if _, err := e.Evaluate("this is not javascript"); err == nil {
		t.Error("Evaluate on invalid script succeeded")
	}
}

func TestEvaluate_UndefinedReturnsNil(t *testing.T) {
	e := New()
	result, err := e.Evaluate("undefined")
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Errorf("result = %v, want nil", result)
	}
}

func TestSetVariable(t *testing.T) {
	e := New()
	e.SetVariable("targetSets", 12)
	e.SetVariable("muscle", "chest")

	result, err := e.Evaluate(`muscle + ":" + (targetSets * 2)`)
	if err != nil {
		t.Fatal(err)
	}
	if result != "chest:24" {
		t.Errorf("result = %v", result)
	}
}

func TestOutput(t *testing.T) {
	e := New()
	if _, err := e.Evaluate(`output.plannedVolume = 1250.5; output.label = "week 35"`); err != nil {
		t.Fatal(err)
	}
	out := e.Output()
	if out["plannedVolume"] != 1250.5 {
		t.Errorf("plannedVolume = %v", out["plannedVolume"])
	}
	if out["label"] != "week 35" {
		t.Errorf("label = %v", out["label"])
	}
}

func TestJSONBuiltin(t *testing.T) {
	e := New()

	result, err := e.Evaluate(`json('{"reps": 10, "weightKg": 80}').reps`)
	if err != nil {
		t.Fatalf("json parse error: %v", err)
	}
	if n, ok := result.(float64); !ok || n != 10 {
		t.Errorf("parsed reps = %v (%T)", result, result)
	}

	result, err = e.Evaluate(`json({sets: 3})`)
	if err != nil {
		t.Fatalf("json stringify error: %v", err)
	}
	if result != `{"sets":3}` {
		t.Errorf("stringified = %v", result)
	}
}

func TestInterpolate(t *testing.T) {
	e := New()
	e.SetVariable("week", 35)

	tests := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"week ${week}", "week 35"},
		{"${week}-${week + 1}", "35-36"},
		{"unterminated ${week", "unterminated ${week"},
	}
	for _, tt := range tests {
		got, err := e.Interpolate(tt.in)
		if err != nil {
			t.Errorf("Interpolate(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Interpolate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInterpolate_EvaluationError(t *testing.T) {
	e := New()
	if _, err := e.Interpolate("${nope("); err == nil {
		t.Error("Interpolate with broken expression succeeded")
	}
}

func TestHTTPBuiltin_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sessions": 3}`))
	}))
	defer srv.Close()

	e := New()
	e.SetVariable("base", srv.URL)

	result, err := e.Evaluate(`http.get(base + "/v1/reports/weekly").json.sessions`)
	if err != nil {
		t.Fatalf("http.get error: %v", err)
	}
	if n, ok := result.(float64); !ok || n != 3 {
		t.Errorf("sessions = %v (%T)", result, result)
	}
}

func TestHTTPBuiltin_PostWithBody(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "rt-1"}`))
	}))
	defer srv.Close()

	e := New()
	e.SetVariable("base", srv.URL)

	result, err := e.Evaluate(`http.post(base + "/v1/routines", {body: {name: "Push Day"}}).status`)
	if err != nil {
		t.Fatalf("http.post error: %v", err)
	}
	if n, ok := result.(int64); !ok || n != 201 {
		t.Errorf("status = %v (%T)", result, result)
	}
	if gotBody != `{"name":"Push Day"}` {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestHTTPBuiltin_OkFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	e := New()
	e.SetVariable("base", srv.URL)

	result, err := e.Evaluate(`http.get(base).ok`)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := result.(bool); ok {
		t.Error("404 response reported ok")
	}
}
