// Package runner executes registered specs against a driver and produces
// the run report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
	"github.com/fitlab-dev/fitrunner/pkg/report"
)

// Env is what every spec receives: the page-object session, the backend
// client, and the raw driver for anything lower level. Params carries the
// resolved env parameters from the workspace config (see
// config.ResolveEnv); expression placeholders are already evaluated.
type Env struct {
	Session *pages.Session
	API     *api.Client
	Driver  core.Driver
	Params  map[string]string
}

// Spec is one registered end-to-end scenario.
type Spec struct {
	Name string
	Tags []string
	Fn   func(ctx context.Context, env *Env) error
}

// ArtifactMode determines when to capture screenshots/hierarchy.
type ArtifactMode int

const (
	// ArtifactOnFailure captures artifacts only when a spec fails.
	ArtifactOnFailure ArtifactMode = iota
	// ArtifactAlways captures artifacts after every spec.
	ArtifactAlways
	// ArtifactNever disables artifact capture.
	ArtifactNever
)

// Config configures the runner.
type Config struct {
	SuiteName   string
	OutputDir   string
	Parallelism int          // Max concurrent specs (0 = sequential)
	StopOnFail  bool         // Stop the run on first failure
	Retries     int          // Max retries per spec (0 = no retries)
	Artifacts   ArtifactMode // When to capture artifacts

	// NewEnv builds the environment for one spec. With Parallelism > 1 it
	// is called once per worker so specs never share a driver.
	NewEnv func(ctx context.Context) (*Env, func(), error)

	// Hooks. Suite hooks run once per run; spec hooks wrap every spec.
	BeforeSuite func(ctx context.Context, env *Env) error
	AfterSuite  func(ctx context.Context, env *Env)
	BeforeSpec  func(ctx context.Context, env *Env, spec Spec) error
	AfterSpec   func(ctx context.Context, env *Env, spec Spec, result *report.SpecResult)

	// Live progress callbacks
	OnSpecStart func(idx, total int, name string)
	OnSpecEnd   func(name string, passed bool, duration time.Duration, errMsg string)
}

// Runner orchestrates spec execution.
type Runner struct {
	config Config
	specs  []Spec
}

// New creates a Runner.
func New(cfg Config) *Runner {
	return &Runner{config: cfg}
}

// Register adds specs to the run.
func (r *Runner) Register(specs ...Spec) {
	r.specs = append(r.specs, specs...)
}

// FilterTags keeps only specs matching include (all kept when empty) and
// drops specs matching exclude.
func (r *Runner) FilterTags(include, exclude []string) {
	filtered := r.specs[:0]
	for _, spec := range r.specs {
		if len(include) > 0 && !hasAnyTag(spec.Tags, include) {
			continue
		}
		if hasAnyTag(spec.Tags, exclude) {
			continue
		}
		filtered = append(filtered, spec)
	}
	r.specs = filtered
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

// Run executes all registered specs and writes reports.
func (r *Runner) Run(ctx context.Context) (*report.RunResult, error) {
	if r.config.NewEnv == nil {
		return nil, fmt.Errorf("runner: NewEnv is required")
	}

	result := report.NewRunResult(r.config.SuiteName)
	logger.Info("run %s: %d specs", result.RunID, len(r.specs))

	env, cleanup, err := r.config.NewEnv(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if env.Driver != nil {
		result.PlatformInfo = env.Driver.GetPlatformInfo()
	}

	if r.config.BeforeSuite != nil {
		if err := r.config.BeforeSuite(ctx, env); err != nil {
			return nil, fmt.Errorf("beforeSuite hook failed: %w", err)
		}
	}

	if r.config.Parallelism > 1 {
		result.Specs = r.runParallel(ctx)
	} else {
		result.Specs = r.runSequential(ctx, env)
	}

	if r.config.AfterSuite != nil {
		r.config.AfterSuite(ctx, env)
	}

	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()

	if r.config.OutputDir != "" {
		if _, err := report.WriteJSON(r.config.OutputDir, result); err != nil {
			return result, err
		}
		if _, err := report.WriteHTML(r.config.OutputDir, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// runSequential runs specs one at a time sharing a single environment.
func (r *Runner) runSequential(ctx context.Context, env *Env) []report.SpecResult {
	results := make([]report.SpecResult, 0, len(r.specs))
	stopped := false

	for i, spec := range r.specs {
		if stopped || ctx.Err() != nil {
			results = append(results, report.SpecResult{
				Name:   spec.Name,
				Tags:   spec.Tags,
				Status: core.StatusSkipped,
			})
			continue
		}

		if r.config.OnSpecStart != nil {
			r.config.OnSpecStart(i, len(r.specs), spec.Name)
		}

		res := r.runSpec(ctx, env, spec)
		results = append(results, res)

		if r.config.OnSpecEnd != nil {
			r.config.OnSpecEnd(spec.Name, res.Status.IsSuccess(), res.Duration, res.Error)
		}
		if r.config.StopOnFail && !res.Status.IsSuccess() {
			stopped = true
		}
	}
	return results
}

// runParallel fans specs out to workers, each with its own environment.
// With StopOnFail a failure stops dispatch; specs already handed to a
// worker but not yet started are recorded skipped.
func (r *Runner) runParallel(ctx context.Context) []report.SpecResult {
	results := make([]report.SpecResult, len(r.specs))
	work := make(chan int)

	var stopped atomic.Bool
	var wg sync.WaitGroup
	for w := 0; w < r.config.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			env, cleanup, err := r.config.NewEnv(ctx)
			if err != nil {
				for i := range work {
					results[i] = report.SpecResult{
						Name:   r.specs[i].Name,
						Tags:   r.specs[i].Tags,
						Status: core.StatusErrored,
						Error:  fmt.Sprintf("worker env: %v", err),
					}
				}
				return
			}
			defer cleanup()

			for i := range work {
				spec := r.specs[i]
				if stopped.Load() || ctx.Err() != nil {
					results[i] = report.SpecResult{
						Name:   spec.Name,
						Tags:   spec.Tags,
						Status: core.StatusSkipped,
					}
					continue
				}
				if r.config.OnSpecStart != nil {
					r.config.OnSpecStart(i, len(r.specs), spec.Name)
				}
				res := r.runSpec(ctx, env, spec)
				results[i] = res
				if r.config.OnSpecEnd != nil {
					r.config.OnSpecEnd(spec.Name, res.Status.IsSuccess(), res.Duration, res.Error)
				}
				if r.config.StopOnFail && !res.Status.IsSuccess() {
					stopped.Store(true)
				}
			}
		}()
	}

	for i := range r.specs {
		if stopped.Load() || ctx.Err() != nil {
			results[i] = report.SpecResult{
				Name:   r.specs[i].Name,
				Tags:   r.specs[i].Tags,
				Status: core.StatusSkipped,
			}
			continue
		}
		work <- i
	}
	close(work)
	wg.Wait()
	return results
}

// runSpec executes one spec with retries, hooks, and artifact capture.
func (r *Runner) runSpec(ctx context.Context, env *Env, spec Spec) report.SpecResult {
	maxAttempts := r.config.Retries + 1
	result := report.SpecResult{
		Name:        spec.Name,
		Tags:        spec.Tags,
		StartTime:   time.Now(),
		MaxAttempts: maxAttempts,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempt = attempt
		lastErr = r.runAttempt(ctx, env, spec)
		if lastErr == nil {
			break
		}
		logger.Warn("spec %q attempt %d/%d failed: %v", spec.Name, attempt, maxAttempts, lastErr)
		if attempt < maxAttempts {
			result.RetryErrors = append(result.RetryErrors, lastErr.Error())
		}
	}

	result.Duration = time.Since(result.StartTime)

	if lastErr == nil {
		result.Status = core.StatusPassed
		result.Flaky = result.Attempt > 1
		if r.config.Artifacts == ArtifactAlways {
			r.captureArtifacts(ctx, env, spec.Name, &result)
		}
	} else {
		result.Error = lastErr.Error()
		result.Status, result.Category = classify(lastErr)
		if r.config.Artifacts != ArtifactNever {
			r.captureArtifacts(ctx, env, spec.Name, &result)
		}
	}
	return result
}

func (r *Runner) runAttempt(ctx context.Context, env *Env, spec Spec) error {
	if r.config.BeforeSpec != nil {
		if err := r.config.BeforeSpec(ctx, env, spec); err != nil {
			return fmt.Errorf("beforeSpec hook: %w", err)
		}
	}

	err := spec.Fn(ctx, env)

	if r.config.AfterSpec != nil {
		// AfterSpec sees a provisional result so it can react to failure.
		provisional := &report.SpecResult{Name: spec.Name}
		if err != nil {
			provisional.Status = core.StatusFailed
			provisional.Error = err.Error()
		} else {
			provisional.Status = core.StatusPassed
		}
		r.config.AfterSpec(ctx, env, spec, provisional)
	}
	return err
}

// classify maps an error to a status and category.
func classify(err error) (core.Status, core.ErrorCategory) {
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		switch execErr.Category {
		case core.ErrCategoryAssertion:
			return core.StatusFailed, execErr.Category
		default:
			return core.StatusErrored, execErr.Category
		}
	}
	return core.StatusFailed, core.ErrCategoryNone
}

// captureArtifacts saves a screenshot and hierarchy dump for a spec.
func (r *Runner) captureArtifacts(ctx context.Context, env *Env, specName string, result *report.SpecResult) {
	if r.config.OutputDir == "" || env.Driver == nil {
		return
	}

	if png, err := env.Driver.Screenshot(ctx); err == nil {
		if att, err := report.SaveAttachment(r.config.OutputDir, specName, "failure.png", "screenshot", png); err == nil {
			result.Attachments = append(result.Attachments, *att)
		}
	} else {
		logger.Debug("screenshot capture failed for %q: %v", specName, err)
	}

	if tree, err := env.Driver.Hierarchy(ctx); err == nil {
		if att, err := report.SaveAttachment(r.config.OutputDir, specName, "hierarchy.json", "hierarchy", tree); err == nil {
			result.Attachments = append(result.Attachments, *att)
		}
	} else {
		logger.Debug("hierarchy capture failed for %q: %v", specName, err)
	}
}
