package pages

import (
	"context"

	"github.com/fitlab-dev/fitrunner/pkg/fluent"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// routineListLocators are the built-in locators for the routine list screen.
var routineListLocators = selector.Pack{
	"createButton":  selector.ByID("routine_create_fab"),
	"deleteAction":  selector.ByText("Delete"),
	"confirmDelete": selector.ByID("confirm_delete"),
	"emptyState":    selector.ByID("routine_list_empty"),
}

// RoutineListPage is the app's home screen listing all routines.
type RoutineListPage struct {
	base
	chain *fluent.Chain[*RoutineListPage]
}

// RoutineList returns the routine list page object.
func (s *Session) RoutineList() *RoutineListPage {
	p := &RoutineListPage{
		base: base{session: s, loc: s.pack("routineList", routineListLocators)},
	}
	p.chain = fluent.NewChain(p)
	return p
}

// TapCreate queues a tap on the create-routine button.
func (p *RoutineListPage) TapCreate() *RoutineListPage {
	p.chain.Do("tapCreateRoutine", func(ctx context.Context, pg *RoutineListPage) (*RoutineListPage, error) {
		return pg, pg.tapKey(ctx, "createButton")
	})
	return p
}

// OpenRoutine queues a tap on the routine row with the given name.
func (p *RoutineListPage) OpenRoutine(name string) *RoutineListPage {
	p.chain.Do("openRoutine", func(ctx context.Context, pg *RoutineListPage) (*RoutineListPage, error) {
		return pg, pg.tap(ctx, selector.ByText(name))
	})
	return p
}

// DeleteRoutine queues the long-press / delete / confirm sequence for a
// routine row.
func (p *RoutineListPage) DeleteRoutine(name string) *RoutineListPage {
	p.chain.Do("deleteRoutine", func(ctx context.Context, pg *RoutineListPage) (*RoutineListPage, error) {
		if err := pg.session.Driver.LongPress(ctx, selector.ByText(name), 0); err != nil {
			return pg, err
		}
		if err := pg.tapKey(ctx, "deleteAction"); err != nil {
			return pg, err
		}
		return pg, pg.tapKey(ctx, "confirmDelete")
	})
	return p
}

// AssertRoutineVisible queues a visibility assertion for a routine row.
func (p *RoutineListPage) AssertRoutineVisible(name string) *RoutineListPage {
	p.chain.Do("assertRoutineVisible", func(ctx context.Context, pg *RoutineListPage) (*RoutineListPage, error) {
		return pg, pg.assertVisible(ctx, selector.ByText(name))
	})
	return p
}

// Run executes the queued steps.
func (p *RoutineListPage) Run(ctx context.Context) error {
	_, err := p.chain.Run(ctx)
	return err
}

// RoutineVisible reports whether a routine row is currently on screen.
// Read-through: does not queue.
func (p *RoutineListPage) RoutineVisible(ctx context.Context, name string) bool {
	info, err := p.find(ctx, selector.ByText(name))
	return err == nil && info.Visible
}

// IsEmpty reports whether the empty-state placeholder is showing.
// Read-through: does not queue.
func (p *RoutineListPage) IsEmpty(ctx context.Context) bool {
	info, err := p.find(ctx, p.loc.Get("emptyState"))
	return err == nil && info.Visible
}
