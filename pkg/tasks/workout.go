package tasks

import (
	"context"
	"fmt"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
)

func errRoutineStillVisible(name string) error {
	return core.ErrElementNotVisible.WithMessage(
		fmt.Sprintf("routine %q still visible after delete", name))
}

// SetPlan describes one set to enter through the UI.
type SetPlan struct {
	Reps     int
	WeightKg float64
}

// AddExercisesToDay opens a routine's workout day and adds exercises from
// the picker, one picker round-trip per exercise.
func AddExercisesToDay(ctx context.Context, session *pages.Session, routine, day string, exercises []string) error {
	logger.Info("task: add %d exercises to %s / %s", len(exercises), routine, day)

	if err := session.RoutineList().OpenRoutine(routine).Run(ctx); err != nil {
		return err
	}
	if err := session.RoutineEditor().OpenDay(day).Run(ctx); err != nil {
		return err
	}

	dayPage := session.WorkoutDay()
	for _, name := range exercises {
		if err := dayPage.TapAddExercise().Run(ctx); err != nil {
			return err
		}
		picker := session.ExercisePicker()
		if err := picker.Search(name).Select(name).Confirm().Run(ctx); err != nil {
			return fmt.Errorf("picking exercise %q: %w", name, err)
		}
	}

	for _, name := range exercises {
		dayPage.AssertExerciseVisible(name)
	}
	dayPage.Save()
	return dayPage.Run(ctx)
}

// EditSets opens an exercise in a workout day and rewrites its sets to
// match plan, adding rows as needed.
func EditSets(ctx context.Context, session *pages.Session, routine, day, exercise string, plan []SetPlan) error {
	logger.Info("task: edit %d sets on %s / %s / %s", len(plan), routine, day, exercise)

	if err := session.RoutineList().OpenRoutine(routine).Run(ctx); err != nil {
		return err
	}
	if err := session.RoutineEditor().OpenDay(day).Run(ctx); err != nil {
		return err
	}

	dayPage := session.WorkoutDay()
	if err := dayPage.OpenExercise(exercise).Run(ctx); err != nil {
		return err
	}

	existing := dayPage.SetCount(ctx)
	for i := existing; i < len(plan); i++ {
		dayPage.AddSet()
	}
	for i, set := range plan {
		dayPage.EditSet(i, set.Reps, set.WeightKg)
	}
	for i, set := range plan {
		dayPage.AssertSetValues(i, set.Reps, set.WeightKg)
	}
	dayPage.Save()
	return dayPage.Run(ctx)
}

// RemoveSet deletes one set row from an exercise and verifies the row
// count dropped.
func RemoveSet(ctx context.Context, session *pages.Session, routine, day, exercise string, index int) error {
	logger.Info("task: remove set %d from %s / %s / %s", index, routine, day, exercise)

	if err := session.RoutineList().OpenRoutine(routine).Run(ctx); err != nil {
		return err
	}
	if err := session.RoutineEditor().OpenDay(day).Run(ctx); err != nil {
		return err
	}

	dayPage := session.WorkoutDay()
	if err := dayPage.OpenExercise(exercise).Run(ctx); err != nil {
		return err
	}

	before := dayPage.SetCount(ctx)
	if err := dayPage.RemoveSet(index).Save().Run(ctx); err != nil {
		return err
	}
	after := dayPage.SetCount(ctx)
	if after != before-1 {
		return core.ErrTextMismatch.WithMessage(
			fmt.Sprintf("set count is %d after removing one of %d", after, before))
	}
	return nil
}

// ReorderExercise moves an exercise up the given number of positions in a
// workout day and verifies the row survived the reorder.
func ReorderExercise(ctx context.Context, session *pages.Session, routine, day, exercise string, positions int) error {
	logger.Info("task: move %s up %d positions in %s / %s", exercise, positions, routine, day)

	if err := session.RoutineList().OpenRoutine(routine).Run(ctx); err != nil {
		return err
	}
	if err := session.RoutineEditor().OpenDay(day).Run(ctx); err != nil {
		return err
	}

	dayPage := session.WorkoutDay()
	for i := 0; i < positions; i++ {
		dayPage.MoveExerciseUp(exercise)
	}
	dayPage.AssertExerciseVisible(exercise)
	dayPage.Save()
	return dayPage.Run(ctx)
}

// VerifyRoutineAgainstBackend fetches the routine from the API and checks
// that the UI shows the same days and exercises.
func VerifyRoutineAgainstBackend(ctx context.Context, session *pages.Session, client *api.Client, routineID string) error {
	routine, err := client.GetRoutine(ctx, routineID)
	if err != nil {
		return err
	}
	logger.Info("task: verify routine %q against backend", routine.Name)

	if err := session.RoutineList().AssertRoutineVisible(routine.Name).OpenRoutine(routine.Name).Run(ctx); err != nil {
		return err
	}

	editor := session.RoutineEditor()
	for _, day := range routine.Days {
		editor.AssertDayVisible(day.Name)
	}
	return editor.Run(ctx)
}
