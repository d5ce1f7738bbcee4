package pages

import (
	"context"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/fluent"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// exercisePickerLocators are the built-in locators for the exercise picker.
var exercisePickerLocators = selector.Pack{
	"searchField":   selector.ByID("exercise_search_input"),
	"filterButton":  selector.ByID("picker_filter"),
	"confirmButton": selector.ByID("picker_confirm"),
	"cancelButton":  selector.ByID("picker_cancel"),
}

// ExercisePickerPage selects exercises from the catalog.
type ExercisePickerPage struct {
	base
	chain *fluent.Chain[*ExercisePickerPage]
}

// ExercisePicker returns the exercise picker page object.
func (s *Session) ExercisePicker() *ExercisePickerPage {
	p := &ExercisePickerPage{
		base: base{session: s, loc: s.pack("exercisePicker", exercisePickerLocators)},
	}
	p.chain = fluent.NewChain(p)
	return p
}

// Search queues typing a query into the search field.
func (p *ExercisePickerPage) Search(query string) *ExercisePickerPage {
	p.chain.Do("searchExercise", func(ctx context.Context, pg *ExercisePickerPage) (*ExercisePickerPage, error) {
		if err := pg.erase(ctx, "searchField"); err != nil {
			return pg, err
		}
		return pg, pg.input(ctx, "searchField", query)
	})
	return p
}

// FilterMuscle queues filtering the catalog by muscle group.
func (p *ExercisePickerPage) FilterMuscle(group string) *ExercisePickerPage {
	p.chain.Do("filterMuscle", func(ctx context.Context, pg *ExercisePickerPage) (*ExercisePickerPage, error) {
		if err := pg.tapKey(ctx, "filterButton"); err != nil {
			return pg, err
		}
		return pg, pg.tap(ctx, selector.ByText(group))
	})
	return p
}

// Select queues tapping the catalog row for an exercise, scrolling to it
// if needed.
func (p *ExercisePickerPage) Select(name string) *ExercisePickerPage {
	p.chain.Do("selectExercise", func(ctx context.Context, pg *ExercisePickerPage) (*ExercisePickerPage, error) {
		sel := selector.ByText(name)
		if _, err := pg.session.Driver.ScrollTo(ctx, sel, core.DirectionDown, 5); err != nil {
			return pg, err
		}
		return pg, pg.tap(ctx, sel)
	})
	return p
}

// Confirm queues confirming the current selection.
func (p *ExercisePickerPage) Confirm() *ExercisePickerPage {
	p.chain.Do("confirmSelection", func(ctx context.Context, pg *ExercisePickerPage) (*ExercisePickerPage, error) {
		return pg, pg.tapKey(ctx, "confirmButton")
	})
	return p
}

// Cancel queues dismissing the picker without selecting.
func (p *ExercisePickerPage) Cancel() *ExercisePickerPage {
	p.chain.Do("cancelPicker", func(ctx context.Context, pg *ExercisePickerPage) (*ExercisePickerPage, error) {
		return pg, pg.tapKey(ctx, "cancelButton")
	})
	return p
}

// Run executes the queued steps.
func (p *ExercisePickerPage) Run(ctx context.Context) error {
	_, err := p.chain.Run(ctx)
	return err
}

// ResultVisible reports whether a catalog row is on screen. Read-through:
// does not queue.
func (p *ExercisePickerPage) ResultVisible(ctx context.Context, name string) bool {
	info, err := p.find(ctx, selector.ByText(name))
	return err == nil && info.Visible
}
