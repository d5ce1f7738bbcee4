package pages

import (
	"context"

	"github.com/fitlab-dev/fitrunner/pkg/fluent"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// weeklyReportLocators are the built-in locators for the weekly report screen.
var weeklyReportLocators = selector.Pack{
	"reportTab":   selector.ByID("tab_report"),
	"prevWeek":    selector.ByID("report_prev_week"),
	"nextWeek":    selector.ByID("report_next_week"),
	"weekLabel":   selector.ByID("report_week_label"),
	"sessions":    selector.ByID("report_sessions"),
	"totalSets":   selector.ByID("report_total_sets"),
	"totalVolume": selector.ByID("report_total_volume"),
}

// WeeklyReportPage shows the aggregated training stats for one week.
type WeeklyReportPage struct {
	base
	chain *fluent.Chain[*WeeklyReportPage]
}

// WeeklyReport returns the weekly report page object.
func (s *Session) WeeklyReport() *WeeklyReportPage {
	p := &WeeklyReportPage{
		base: base{session: s, loc: s.pack("weeklyReport", weeklyReportLocators)},
	}
	p.chain = fluent.NewChain(p)
	return p
}

// OpenTab queues switching to the report tab.
func (p *WeeklyReportPage) OpenTab() *WeeklyReportPage {
	p.chain.Do("openReportTab", func(ctx context.Context, pg *WeeklyReportPage) (*WeeklyReportPage, error) {
		return pg, pg.tapKey(ctx, "reportTab")
	})
	return p
}

// PrevWeek queues navigating one week back.
func (p *WeeklyReportPage) PrevWeek() *WeeklyReportPage {
	p.chain.Do("prevWeek", func(ctx context.Context, pg *WeeklyReportPage) (*WeeklyReportPage, error) {
		return pg, pg.tapKey(ctx, "prevWeek")
	})
	return p
}

// NextWeek queues navigating one week forward.
func (p *WeeklyReportPage) NextWeek() *WeeklyReportPage {
	p.chain.Do("nextWeek", func(ctx context.Context, pg *WeeklyReportPage) (*WeeklyReportPage, error) {
		return pg, pg.tapKey(ctx, "nextWeek")
	})
	return p
}

// AssertMuscleRow queues a visibility assertion for a muscle-group row.
func (p *WeeklyReportPage) AssertMuscleRow(group string) *WeeklyReportPage {
	p.chain.Do("assertMuscleRow", func(ctx context.Context, pg *WeeklyReportPage) (*WeeklyReportPage, error) {
		return pg, pg.assertVisible(ctx, selector.ByText(group))
	})
	return p
}

// Run executes the queued steps.
func (p *WeeklyReportPage) Run(ctx context.Context) error {
	_, err := p.chain.Run(ctx)
	return err
}

// Read-through queries. These hit the driver directly and never queue, so
// specs can compare live UI values against the backend.

// WeekLabel reads the displayed week range label.
func (p *WeeklyReportPage) WeekLabel(ctx context.Context) (string, error) {
	return p.textOf(ctx, p.loc.Get("weekLabel"))
}

// Sessions reads the displayed session count.
func (p *WeeklyReportPage) Sessions(ctx context.Context) (int, error) {
	return p.intOf(ctx, p.loc.Get("sessions"))
}

// TotalSets reads the displayed total set count.
func (p *WeeklyReportPage) TotalSets(ctx context.Context) (int, error) {
	return p.intOf(ctx, p.loc.Get("totalSets"))
}

// TotalVolumeKg reads the displayed total volume.
func (p *WeeklyReportPage) TotalVolumeKg(ctx context.Context) (float64, error) {
	return p.floatOf(ctx, p.loc.Get("totalVolume"))
}
