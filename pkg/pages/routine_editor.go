package pages

import (
	"context"

	"github.com/fitlab-dev/fitrunner/pkg/fluent"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// routineEditorLocators are the built-in locators for the routine editor.
var routineEditorLocators = selector.Pack{
	"nameField":     selector.ByID("routine_title_input"),
	"addDayButton":  selector.ByID("routine_add_day"),
	"dayNameField":  selector.ByID("day_name_input"),
	"dayConfirm":    selector.ByID("day_confirm"),
	"saveButton":    selector.ByID("routine_save"),
	"discardButton": selector.ByID("routine_discard"),
}

// RoutineEditorPage edits a routine's name and workout days.
type RoutineEditorPage struct {
	base
	chain *fluent.Chain[*RoutineEditorPage]
}

// RoutineEditor returns the routine editor page object.
func (s *Session) RoutineEditor() *RoutineEditorPage {
	p := &RoutineEditorPage{
		base: base{session: s, loc: s.pack("routineEditor", routineEditorLocators)},
	}
	p.chain = fluent.NewChain(p)
	return p
}

// EnterName queues clearing and typing the routine name.
func (p *RoutineEditorPage) EnterName(name string) *RoutineEditorPage {
	p.chain.Do("enterRoutineName", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		if err := pg.erase(ctx, "nameField"); err != nil {
			return pg, err
		}
		return pg, pg.input(ctx, "nameField", name)
	})
	return p
}

// AddDay queues adding a workout day: open the day dialog, type its name,
// confirm.
func (p *RoutineEditorPage) AddDay(name string) *RoutineEditorPage {
	p.chain.Do("addDay", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		if err := pg.tapKey(ctx, "addDayButton"); err != nil {
			return pg, err
		}
		if err := pg.input(ctx, "dayNameField", name); err != nil {
			return pg, err
		}
		return pg, pg.tapKey(ctx, "dayConfirm")
	})
	return p
}

// OpenDay queues a tap on the workout day row with the given name.
func (p *RoutineEditorPage) OpenDay(name string) *RoutineEditorPage {
	p.chain.Do("openDay", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		return pg, pg.tap(ctx, selector.ByText(name))
	})
	return p
}

// Save queues a tap on the save button.
func (p *RoutineEditorPage) Save() *RoutineEditorPage {
	p.chain.Do("saveRoutine", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		return pg, pg.tapKey(ctx, "saveButton")
	})
	return p
}

// Discard queues a tap on the discard button.
func (p *RoutineEditorPage) Discard() *RoutineEditorPage {
	p.chain.Do("discardRoutine", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		return pg, pg.tapKey(ctx, "discardButton")
	})
	return p
}

// AssertDayVisible queues a visibility assertion for a workout day row.
func (p *RoutineEditorPage) AssertDayVisible(name string) *RoutineEditorPage {
	p.chain.Do("assertDayVisible", func(ctx context.Context, pg *RoutineEditorPage) (*RoutineEditorPage, error) {
		return pg, pg.assertVisible(ctx, selector.ByText(name))
	})
	return p
}

// Run executes the queued steps.
func (p *RoutineEditorPage) Run(ctx context.Context) error {
	_, err := p.chain.Run(ctx)
	return err
}

// Name reads the routine name field. Read-through: does not queue.
func (p *RoutineEditorPage) Name(ctx context.Context) (string, error) {
	return p.textOf(ctx, p.loc.Get("nameField"))
}
