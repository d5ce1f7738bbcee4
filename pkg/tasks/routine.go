// Package tasks composes page objects into the user journeys the specs
// exercise: routine creation, workout-day editing, exercise management,
// and the weekly report cross-check.
package tasks

import (
	"context"

	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
)

// CreateRoutine builds a routine with the given name and workout days
// through the UI and verifies every day shows up before saving.
func CreateRoutine(ctx context.Context, session *pages.Session, name string, days []string) error {
	logger.Info("task: create routine %q with %d days", name, len(days))

	if err := session.RoutineList().TapCreate().Run(ctx); err != nil {
		return err
	}

	editor := session.RoutineEditor()
	editor.EnterName(name)
	for _, day := range days {
		editor.AddDay(day)
	}
	for _, day := range days {
		editor.AssertDayVisible(day)
	}
	editor.Save()

	if err := editor.Run(ctx); err != nil {
		return err
	}

	// Saving lands back on the list; the new routine must be there.
	return session.RoutineList().AssertRoutineVisible(name).Run(ctx)
}

// DeleteRoutine removes a routine from the list and verifies it is gone.
func DeleteRoutine(ctx context.Context, session *pages.Session, name string) error {
	logger.Info("task: delete routine %q", name)

	list := session.RoutineList()
	if err := list.DeleteRoutine(name).Run(ctx); err != nil {
		return err
	}
	if list.RoutineVisible(ctx, name) {
		return errRoutineStillVisible(name)
	}
	return nil
}

// RenameRoutine opens a routine and rewrites its name.
func RenameRoutine(ctx context.Context, session *pages.Session, oldName, newName string) error {
	logger.Info("task: rename routine %q to %q", oldName, newName)

	if err := session.RoutineList().OpenRoutine(oldName).Run(ctx); err != nil {
		return err
	}
	if err := session.RoutineEditor().EnterName(newName).Save().Run(ctx); err != nil {
		return err
	}
	return session.RoutineList().AssertRoutineVisible(newName).Run(ctx)
}
