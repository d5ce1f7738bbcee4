package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/fluent"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// workoutDayLocators are the built-in locators for the workout day screen.
var workoutDayLocators = selector.Pack{
	"addExerciseButton": selector.ByID("day_add_exercise"),
	"addSetButton":      selector.ByID("exercise_add_set"),
	"repsField":         selector.ByID("set_reps_input"),
	"weightField":       selector.ByID("set_weight_input"),
	"removeSetAction":   selector.ByText("Remove Set"),
	"saveButton":        selector.ByID("day_save"),
	"setRow":            selector.ByID("set_row"),
}

// WorkoutDayPage edits the exercises and sets of one workout day.
type WorkoutDayPage struct {
	base
	chain *fluent.Chain[*WorkoutDayPage]
}

// WorkoutDay returns the workout day page object.
func (s *Session) WorkoutDay() *WorkoutDayPage {
	p := &WorkoutDayPage{
		base: base{session: s, loc: s.pack("workoutDay", workoutDayLocators)},
	}
	p.chain = fluent.NewChain(p)
	return p
}

// TapAddExercise queues a tap on the add-exercise button, which opens the
// exercise picker.
func (p *WorkoutDayPage) TapAddExercise() *WorkoutDayPage {
	p.chain.Do("tapAddExercise", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		return pg, pg.tapKey(ctx, "addExerciseButton")
	})
	return p
}

// OpenExercise queues a tap on the exercise row with the given name.
func (p *WorkoutDayPage) OpenExercise(name string) *WorkoutDayPage {
	p.chain.Do("openExercise", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		return pg, pg.tap(ctx, selector.ByText(name))
	})
	return p
}

// AddSet queues a tap on the add-set button of the open exercise.
func (p *WorkoutDayPage) AddSet() *WorkoutDayPage {
	p.chain.Do("addSet", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		return pg, pg.tapKey(ctx, "addSetButton")
	})
	return p
}

// EditSet queues rewriting reps and weight of the set at index (0-based).
func (p *WorkoutDayPage) EditSet(index, reps int, weightKg float64) *WorkoutDayPage {
	p.chain.Do("editSet", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		repsSel := pg.loc.Get("repsField").At(index)
		weightSel := pg.loc.Get("weightField").At(index)

		if err := pg.session.Driver.Erase(ctx, repsSel); err != nil {
			return pg, err
		}
		if err := pg.session.Driver.Input(ctx, repsSel, strconv.Itoa(reps)); err != nil {
			return pg, err
		}
		if err := pg.session.Driver.Erase(ctx, weightSel); err != nil {
			return pg, err
		}
		return pg, pg.session.Driver.Input(ctx, weightSel, strconv.FormatFloat(weightKg, 'f', -1, 64))
	})
	return p
}

// RemoveSet queues removing the set at index via long-press.
func (p *WorkoutDayPage) RemoveSet(index int) *WorkoutDayPage {
	p.chain.Do("removeSet", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		if err := pg.session.Driver.LongPress(ctx, pg.loc.Get("setRow").At(index), 0); err != nil {
			return pg, err
		}
		return pg, pg.tapKey(ctx, "removeSetAction")
	})
	return p
}

// MoveExerciseUp queues a drag of the exercise row one position up:
// long-press to lift, swipe to move, handled by the app's reorder mode.
func (p *WorkoutDayPage) MoveExerciseUp(name string) *WorkoutDayPage {
	p.chain.Do("moveExerciseUp", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		if err := pg.session.Driver.LongPress(ctx, selector.ByText(name), 0); err != nil {
			return pg, err
		}
		return pg, pg.session.Driver.Swipe(ctx, core.DirectionUp)
	})
	return p
}

// Save queues a tap on the save button.
func (p *WorkoutDayPage) Save() *WorkoutDayPage {
	p.chain.Do("saveDay", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		return pg, pg.tapKey(ctx, "saveButton")
	})
	return p
}

// AssertExerciseVisible queues a visibility assertion for an exercise row.
func (p *WorkoutDayPage) AssertExerciseVisible(name string) *WorkoutDayPage {
	p.chain.Do("assertExerciseVisible", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		return pg, pg.assertVisible(ctx, selector.ByText(name))
	})
	return p
}

// AssertSetValues queues checking reps and weight shown for the set at index.
func (p *WorkoutDayPage) AssertSetValues(index, reps int, weightKg float64) *WorkoutDayPage {
	p.chain.Do("assertSetValues", func(ctx context.Context, pg *WorkoutDayPage) (*WorkoutDayPage, error) {
		gotReps, err := pg.intOf(ctx, pg.loc.Get("repsField").At(index))
		if err != nil {
			return pg, err
		}
		gotWeight, err := pg.floatOf(ctx, pg.loc.Get("weightField").At(index))
		if err != nil {
			return pg, err
		}
		if gotReps != reps || gotWeight != weightKg {
			return pg, core.ErrTextMismatch.WithMessage(fmt.Sprintf(
				"set %d shows %dx%.1fkg, want %dx%.1fkg", index, gotReps, gotWeight, reps, weightKg))
		}
		return pg, nil
	})
	return p
}

// Run executes the queued steps.
func (p *WorkoutDayPage) Run(ctx context.Context) error {
	_, err := p.chain.Run(ctx)
	return err
}

// SetCount reports how many set rows are on screen. Read-through: does not
// queue.
func (p *WorkoutDayPage) SetCount(ctx context.Context) int {
	count := 0
	for {
		info, err := p.find(ctx, p.loc.Get("setRow").At(count))
		if err != nil || !info.Visible {
			return count
		}
		count++
	}
}
