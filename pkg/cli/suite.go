package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/config"
	"github.com/fitlab-dev/fitrunner/pkg/runner"
	"github.com/fitlab-dev/fitrunner/pkg/tasks"
)

// builtinSuite is the shipped spec set. Each spec seeds through the
// backend or the UI, drives the app, and verifies both sides.
func builtinSuite(cfg *config.Config) []runner.Spec {
	return []runner.Spec{
		{
			Name: "create routine with workout days",
			Tags: []string{"smoke", "routine"},
			Fn: func(ctx context.Context, env *runner.Env) error {
				name := uniqueName("Push Pull Legs")
				if err := tasks.CreateRoutine(ctx, env.Session, name, []string{"Push Day", "Pull Day", "Leg Day"}); err != nil {
					return err
				}
				// The routine must also exist in the backend.
				routines, err := env.API.ListRoutines(ctx)
				if err != nil {
					return err
				}
				for _, r := range routines {
					if r.Name == name {
						return nil
					}
				}
				return fmt.Errorf("routine %q not found in backend after UI create", name)
			},
		},
		{
			Name: "add exercises and edit sets",
			Tags: []string{"workout"},
			Fn: func(ctx context.Context, env *runner.Env) error {
				name := uniqueName("Upper Lower")
				if err := tasks.CreateRoutine(ctx, env.Session, name, []string{"Upper"}); err != nil {
					return err
				}
				if err := tasks.AddExercisesToDay(ctx, env.Session, name, "Upper",
					[]string{"Bench Press", "Barbell Row"}); err != nil {
					return err
				}
				return tasks.EditSets(ctx, env.Session, name, "Upper", "Bench Press", []tasks.SetPlan{
					{Reps: 8, WeightKg: 80},
					{Reps: 8, WeightKg: 80},
					{Reps: 6, WeightKg: 85},
				})
			},
		},
		{
			Name: "delete routine",
			Tags: []string{"routine"},
			Fn: func(ctx context.Context, env *runner.Env) error {
				name := uniqueName("Temp Routine")
				seeded, err := env.API.CreateRoutine(ctx, &api.Routine{Name: name})
				if err != nil {
					return err
				}
				if err := env.Driver.LaunchApp(ctx, cfg.AppID, false); err != nil {
					return err
				}
				if err := tasks.DeleteRoutine(ctx, env.Session, name); err != nil {
					return err
				}
				// Backend must agree the routine is gone.
				if _, err := env.API.GetRoutine(ctx, seeded.ID); err == nil {
					return fmt.Errorf("routine %q still exists in backend after UI delete", name)
				}
				return nil
			},
		},
		{
			Name: "weekly report matches backend aggregation",
			Tags: []string{"smoke", "report"},
			Fn: func(ctx context.Context, env *runner.Env) error {
				// A workspace can pin the week under test via env.
				weekStart := env.Params["weekStart"]
				if weekStart == "" {
					weekStart = mondayOf(time.Now()).Format("2006-01-02")
				}
				return tasks.VerifyWeeklyReport(ctx, env.Session, env.API, weekStart, 0)
			},
		},
	}
}

// uniqueName suffixes a name with a timestamp so reruns never collide.
func uniqueName(base string) string {
	return fmt.Sprintf("%s %d", base, time.Now().UnixMilli()%1000000)
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}
