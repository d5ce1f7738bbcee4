package tasks

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
)

// volumeTolerance absorbs display rounding on the report screen.
const volumeTolerance = 0.5

// VerifyWeeklyReport opens the report tab, navigates weeksBack weeks into
// the past, and cross-checks the displayed totals against the backend's
// weekly report endpoint.
func VerifyWeeklyReport(ctx context.Context, session *pages.Session, client *api.Client, weekStart string, weeksBack int) error {
	logger.Info("task: verify weekly report for week %s", weekStart)

	report := session.WeeklyReport()
	report.OpenTab()
	for i := 0; i < weeksBack; i++ {
		report.PrevWeek()
	}
	if err := report.Run(ctx); err != nil {
		return err
	}

	backend, err := client.GetWeeklyReport(ctx, weekStart)
	if err != nil {
		return err
	}

	sessions, err := report.Sessions(ctx)
	if err != nil {
		return err
	}
	totalSets, err := report.TotalSets(ctx)
	if err != nil {
		return err
	}
	totalVolume, err := report.TotalVolumeKg(ctx)
	if err != nil {
		return err
	}

	if sessions != backend.Sessions {
		return reportMismatch("sessions", sessions, backend.Sessions)
	}
	if totalSets != backend.TotalSets {
		return reportMismatch("totalSets", totalSets, backend.TotalSets)
	}
	if math.Abs(totalVolume-backend.TotalVolumeKg) > volumeTolerance {
		return reportMismatch("totalVolumeKg", totalVolume, backend.TotalVolumeKg)
	}

	// Every muscle group the backend reports must have a row on screen.
	muscles := make([]string, 0, len(backend.SetsPerMuscle))
	for group := range backend.SetsPerMuscle {
		muscles = append(muscles, group)
	}
	sort.Strings(muscles)
	for _, group := range muscles {
		report.AssertMuscleRow(group)
	}
	return report.Run(ctx)
}

func reportMismatch(field string, ui, backend interface{}) error {
	return core.ErrReportMismatch.WithDetails(map[string]interface{}{
		"field":   field,
		"ui":      ui,
		"backend": backend,
	}).WithMessage(fmt.Sprintf("weekly report %s: UI shows %v, backend has %v", field, ui, backend))
}

// VerifyReportConsistency recomputes totals from the routine stored in the
// backend and checks the backend's own aggregation agrees, catching
// server-side aggregation bugs independently of the UI.
func VerifyReportConsistency(ctx context.Context, client *api.Client, routineID, weekStart string) error {
	routine, err := client.GetRoutine(ctx, routineID)
	if err != nil {
		return err
	}
	backend, err := client.GetWeeklyReport(ctx, weekStart)
	if err != nil {
		return err
	}

	local := api.ComputeTotals(routine)
	if local.Sets != backend.TotalSets {
		return reportMismatch("totalSets (recomputed)", local.Sets, backend.TotalSets)
	}
	if math.Abs(local.VolumeKg-backend.TotalVolumeKg) > volumeTolerance {
		return reportMismatch("totalVolumeKg (recomputed)", local.VolumeKg, backend.TotalVolumeKg)
	}
	return nil
}
