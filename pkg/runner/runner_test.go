package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/driver/mock"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
	"github.com/fitlab-dev/fitrunner/pkg/report"
)

func testConfig() Config {
	return Config{
		SuiteName: "test suite",
		Artifacts: ArtifactNever,
		NewEnv: func(ctx context.Context) (*Env, func(), error) {
			drv := mock.New()
			drv.AddScreen(&mock.Screen{Name: "home"})
			drv.Show("home")
			return &Env{Session: pages.NewSession(drv), Driver: drv}, func() {}, nil
		},
	}
}

func passing(name string, tags ...string) Spec {
	return Spec{Name: name, Tags: tags, Fn: func(ctx context.Context, env *Env) error {
		return nil
	}}
}

func failing(name string, err error, tags ...string) Spec {
	return Spec{Name: name, Tags: tags, Fn: func(ctx context.Context, env *Env) error {
		return err
	}}
}

func TestRun_Sequential(t *testing.T) {
	r := New(testConfig())
	r.Register(
		passing("a"),
		failing("b", errors.New("boom")),
		passing("c"),
	)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.TotalSpecs != 3 || result.PassedSpecs != 2 || result.FailedSpecs != 1 {
		t.Errorf("summary = %d total, %d passed, %d failed",
			result.TotalSpecs, result.PassedSpecs, result.FailedSpecs)
	}
	if result.Success() {
		t.Error("run with a failure reported success")
	}
	if result.RunID == "" {
		t.Error("RunID not set")
	}
	if result.PlatformInfo == nil || result.PlatformInfo.Platform != "mock" {
		t.Errorf("PlatformInfo = %+v", result.PlatformInfo)
	}
}

func TestRun_StopOnFail(t *testing.T) {
	cfg := testConfig()
	cfg.StopOnFail = true
	r := New(cfg)
	r.Register(
		failing("first", errors.New("boom")),
		passing("second"),
		passing("third"),
	)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Specs[1].Status != core.StatusSkipped || result.Specs[2].Status != core.StatusSkipped {
		t.Errorf("specs after failure = %v, %v, want skipped",
			result.Specs[1].Status, result.Specs[2].Status)
	}
	if result.SkippedSpecs != 2 {
		t.Errorf("SkippedSpecs = %d", result.SkippedSpecs)
	}
}

func TestRun_RetriesMarkFlaky(t *testing.T) {
	cfg := testConfig()
	cfg.Retries = 2
	r := New(cfg)

	attempts := 0
	r.Register(Spec{Name: "flaky", Fn: func(ctx context.Context, env *Env) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}})

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	spec := result.Specs[0]
	if spec.Status != core.StatusPassed {
		t.Fatalf("Status = %v, error = %q", spec.Status, spec.Error)
	}
	if !spec.Flaky || spec.Attempt != 3 {
		t.Errorf("Flaky = %v, Attempt = %d", spec.Flaky, spec.Attempt)
	}
	if len(spec.RetryErrors) != 2 {
		t.Errorf("RetryErrors = %v", spec.RetryErrors)
	}
	if result.FlakySpecs != 1 {
		t.Errorf("FlakySpecs = %d", result.FlakySpecs)
	}
}

func TestRun_RetriesExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Retries = 1
	r := New(cfg)
	r.Register(failing("hopeless", core.ErrElementNotFound))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	spec := result.Specs[0]
	if spec.Status != core.StatusFailed {
		t.Errorf("Status = %v", spec.Status)
	}
	if spec.Attempt != 2 || spec.MaxAttempts != 2 {
		t.Errorf("Attempt = %d/%d", spec.Attempt, spec.MaxAttempts)
	}
	if spec.Category != core.ErrCategoryAssertion {
		t.Errorf("Category = %v", spec.Category)
	}
}

func TestRun_ClassifiesNonAssertionAsErrored(t *testing.T) {
	r := New(testConfig())
	r.Register(failing("agent down", core.ErrAgentUnreachable))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Specs[0].Status != core.StatusErrored {
		t.Errorf("Status = %v, want errored", result.Specs[0].Status)
	}
}

func TestFilterTags(t *testing.T) {
	r := New(testConfig())
	r.Register(
		passing("smoke only", "smoke"),
		passing("smoke and slow", "smoke", "slow"),
		passing("untagged"),
	)

	r.FilterTags([]string{"smoke"}, []string{"slow"})

	if len(r.specs) != 1 || r.specs[0].Name != "smoke only" {
		names := make([]string, len(r.specs))
		for i, s := range r.specs {
			names[i] = s.Name
		}
		t.Errorf("filtered specs = %v", names)
	}
}

func TestFilterTags_EmptyIncludeKeepsAll(t *testing.T) {
	r := New(testConfig())
	r.Register(passing("a", "smoke"), passing("b"))
	r.FilterTags(nil, nil)
	if len(r.specs) != 2 {
		t.Errorf("specs = %d, want 2", len(r.specs))
	}
}

func TestRun_Hooks(t *testing.T) {
	var order []string
	cfg := testConfig()
	cfg.BeforeSuite = func(ctx context.Context, env *Env) error {
		order = append(order, "beforeSuite")
		return nil
	}
	cfg.AfterSuite = func(ctx context.Context, env *Env) {
		order = append(order, "afterSuite")
	}
	cfg.BeforeSpec = func(ctx context.Context, env *Env, spec Spec) error {
		order = append(order, "beforeSpec:"+spec.Name)
		return nil
	}
	cfg.AfterSpec = func(ctx context.Context, env *Env, spec Spec, result *report.SpecResult) {
		order = append(order, "afterSpec:"+spec.Name)
	}

	r := New(cfg)
	r.Register(passing("a"))
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"beforeSuite", "beforeSpec:a", "afterSpec:a", "afterSuite"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRun_BeforeSpecFailureFailsSpec(t *testing.T) {
	cfg := testConfig()
	cfg.BeforeSpec = func(ctx context.Context, env *Env, spec Spec) error {
		return errors.New("launch failed")
	}
	r := New(cfg)
	r.Register(passing("a"))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Specs[0].Status.IsSuccess() {
		t.Error("spec passed despite beforeSpec failure")
	}
}

func TestRun_ParallelStopOnFail(t *testing.T) {
	cfg := testConfig()
	cfg.Parallelism = 2
	cfg.StopOnFail = true
	r := New(cfg)

	var executed atomic.Int32
	counted := func(name string, err error) Spec {
		return Spec{Name: name, Fn: func(ctx context.Context, env *Env) error {
			executed.Add(1)
			if err == nil {
				// Keep this worker busy until the failure has landed.
				time.Sleep(50 * time.Millisecond)
			}
			return err
		}}
	}
	r.Register(
		counted("doomed", errors.New("boom")),
		counted("in flight", nil),
		counted("late a", nil),
		counted("late b", nil),
	)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Both workers had picked up a spec before the failure; everything
	// behind them must be skipped, not run.
	if got := executed.Load(); got != 2 {
		t.Errorf("executed %d specs after failure, want 2", got)
	}
	if result.FailedSpecs != 1 || result.SkippedSpecs != 2 {
		t.Errorf("summary = %d failed, %d skipped, want 1/2",
			result.FailedSpecs, result.SkippedSpecs)
	}
	for _, name := range []string{"late a", "late b"} {
		for _, spec := range result.Specs {
			if spec.Name == name && spec.Status != core.StatusSkipped {
				t.Errorf("%s status = %v, want skipped", name, spec.Status)
			}
		}
	}
}

func TestRun_Parallel(t *testing.T) {
	cfg := testConfig()
	cfg.Parallelism = 3
	r := New(cfg)
	r.Register(passing("a"), failing("b", errors.New("boom")), passing("c"), passing("d"))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalSpecs != 4 || result.PassedSpecs != 3 || result.FailedSpecs != 1 {
		t.Errorf("summary = %d/%d/%d", result.TotalSpecs, result.PassedSpecs, result.FailedSpecs)
	}
	// Results keep registration order regardless of completion order.
	if result.Specs[1].Name != "b" || result.Specs[1].Status != core.StatusFailed {
		t.Errorf("Specs[1] = %+v", result.Specs[1])
	}
}

func TestRun_ArtifactsOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.OutputDir = dir
	cfg.Artifacts = ArtifactOnFailure
	r := New(cfg)
	r.Register(passing("good"), failing("bad", core.ErrElementNotFound))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Specs[0].Attachments) != 0 {
		t.Errorf("passing spec has attachments: %v", result.Specs[0].Attachments)
	}
	atts := result.Specs[1].Attachments
	if len(atts) != 2 {
		t.Fatalf("failing spec attachments = %v", atts)
	}
	for _, att := range atts {
		if _, err := os.Stat(filepath.Join(dir, att.Path)); err != nil {
			t.Errorf("attachment %s missing: %v", att.Path, err)
		}
	}

	// Run reports are written too.
	if _, err := os.Stat(filepath.Join(dir, "report.json")); err != nil {
		t.Errorf("report.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.html")); err != nil {
		t.Errorf("report.html missing: %v", err)
	}
}
