package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/config"
	"github.com/fitlab-dev/fitrunner/pkg/driver/agent"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
	"github.com/fitlab-dev/fitrunner/pkg/runner"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run the end-to-end suite against a device",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "tags",
			Aliases: []string{"t"},
			Usage:   "Only run specs with one of these tags",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-tags",
			Usage: "Skip specs with one of these tags",
		},
		&cli.IntFlag{
			Name:  "parallelism",
			Usage: "Max concurrent specs (each gets its own agent session)",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Retries per failing spec",
		},
		&cli.BoolFlag{
			Name:  "stop-on-fail",
			Usage: "Stop the run on first failure",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report output directory",
		},
	},
	Action: runAction,
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	outputDir := cfg.OutputDirOrDefault()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	if err := logger.Init(filepath.Join(outputDir, "fitrunner.log")); err != nil {
		return err
	}
	defer logger.Close()

	var overrides map[string]selector.Pack
	if cfg.LocatorsFile != "" {
		overrides, err = selector.LoadOverrides(cfg.LocatorsFile)
		if err != nil {
			return fmt.Errorf("loading locator overrides: %w", err)
		}
	}

	// Config env values may embed ${expr} placeholders; resolve them once
	// and hand every spec the same parameters.
	params, err := cfg.ResolveEnv()
	if err != nil {
		return err
	}

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APIToken)

	newEnv := func(ctx context.Context) (*runner.Env, func(), error) {
		drv, err := agent.NewDriver(cfg.AgentURL, map[string]interface{}{
			"appId": cfg.AppID,
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.FindTimeoutMs > 0 {
			drv.SetFindTimeout(cfg.FindTimeout())
		}

		session := pages.NewSession(drv)
		session.Overrides = overrides

		return &runner.Env{
				Session: session,
				API:     apiClient,
				Driver:  drv,
				Params:  params,
			}, func() {
				if err := drv.Close(); err != nil {
					logger.Warn("agent session close failed: %v", err)
				}
			}, nil
	}

	r := runner.New(runner.Config{
		SuiteName:   "FitTrack E2E",
		OutputDir:   outputDir,
		Parallelism: cfg.Parallelism,
		StopOnFail:  cfg.StopOnFail,
		Retries:     cfg.Retries,
		NewEnv:      newEnv,
		BeforeSpec: func(ctx context.Context, env *runner.Env, spec runner.Spec) error {
			// Fresh app state for every spec.
			return env.Driver.LaunchApp(ctx, cfg.AppID, true)
		},
		OnSpecStart: func(idx, total int, name string) {
			fmt.Printf("[%d/%d] %s ...\n", idx+1, total, name)
		},
		OnSpecEnd: func(name string, passed bool, duration time.Duration, errMsg string) {
			status := "PASS"
			if !passed {
				status = "FAIL"
			}
			fmt.Printf("[%s] %s (%s)\n", status, name, duration.Round(time.Millisecond))
			if errMsg != "" {
				fmt.Printf("       %s\n", errMsg)
			}
		},
	})

	r.Register(builtinSuite(cfg)...)
	r.FilterTags(append(cfg.IncludeTags, c.StringSlice("tags")...),
		append(cfg.ExcludeTags, c.StringSlice("exclude-tags")...))

	result, err := r.Run(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d specs: %d passed, %d failed, %d skipped\n",
		result.TotalSpecs, result.PassedSpecs, result.FailedSpecs, result.SkippedSpecs)
	fmt.Printf("Report: %s\n", filepath.Join(outputDir, "report.html"))

	if !result.Success() {
		return cli.Exit("", 1)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(".")
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if v := c.String("agent-url"); c.IsSet("agent-url") || cfg.AgentURL == "" {
		cfg.AgentURL = v
	}
	if v := c.String("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := c.String("app-id"); v != "" {
		cfg.AppID = v
	}
	if c.IsSet("parallelism") {
		cfg.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("retries") {
		cfg.Retries = c.Int("retries")
	}
	if c.IsSet("stop-on-fail") {
		cfg.StopOnFail = c.Bool("stop-on-fail")
	}
	if v := c.String("output"); v != "" {
		cfg.OutputDir = v
	}
}
