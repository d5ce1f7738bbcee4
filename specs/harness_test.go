// Package specs holds the end-to-end scenarios, run here against the mock
// driver and an in-process backend so the suite's journeys stay covered
// without a device.
package specs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fitlab-dev/fitrunner/pkg/api"
	"github.com/fitlab-dev/fitrunner/pkg/driver/mock"
	"github.com/fitlab-dev/fitrunner/pkg/pages"
)

// fitTrackApp is a scripted model of the app: screens plus just enough
// behavior for the page-object journeys to work end to end.
type fitTrackApp struct {
	drv *mock.Driver

	list   *mock.Screen
	editor *mock.Screen
	day    *mock.Screen
	picker *mock.Screen

	titleInput *mock.Element
	dayInput   *mock.Element

	// editingRow is the routine row being edited, nil when creating.
	editingRow *mock.Element

	// selectedExercise is the catalog row picked in the exercise picker.
	selectedExercise string
}

// newFitTrackApp wires the four screens of the app model. catalog lists
// the exercise names available in the picker.
func newFitTrackApp(catalog ...string) *fitTrackApp {
	app := &fitTrackApp{drv: mock.New()}

	app.titleInput = &mock.Element{ID: "routine_title_input", Enabled: true}
	app.dayInput = &mock.Element{ID: "day_name_input", Enabled: true}

	app.list = &mock.Screen{Name: "routineList", Elements: []*mock.Element{
		{ID: "routine_create_fab", Enabled: true, OnTap: func(d *mock.Driver) {
			app.editingRow = nil
			app.titleInput.Text = ""
			d.ShowLocked("routineEditor")
		}},
	}}

	app.editor = &mock.Screen{Name: "routineEditor", Elements: []*mock.Element{
		app.titleInput,
		{ID: "routine_add_day", Enabled: true},
		app.dayInput,
		{ID: "day_confirm", Enabled: true, OnTap: app.confirmDay},
		{ID: "routine_save", Enabled: true, OnTap: app.saveRoutine},
		{ID: "routine_discard", Enabled: true, OnTap: func(d *mock.Driver) {
			d.ShowLocked("routineList")
		}},
	}}

	app.day = &mock.Screen{Name: "workoutDay", Elements: []*mock.Element{
		{ID: "day_add_exercise", Enabled: true, OnTap: func(d *mock.Driver) {
			app.selectedExercise = ""
			d.ShowLocked("exercisePicker")
		}},
		{ID: "exercise_add_set", Enabled: true, OnTap: app.addSetRow},
		{Text: "Remove Set", Enabled: true, OnTap: app.removeSetRow},
		{ID: "day_save", Enabled: true},
	}}

	app.picker = &mock.Screen{Name: "exercisePicker", Elements: []*mock.Element{
		{ID: "exercise_search_input", Enabled: true},
		{ID: "picker_confirm", Enabled: true, OnTap: app.confirmExercise},
		{ID: "picker_cancel", Enabled: true, OnTap: func(d *mock.Driver) {
			d.ShowLocked("workoutDay")
		}},
	}}
	for _, name := range catalog {
		name := name
		app.picker.AddElement(&mock.Element{Text: name, Enabled: true, OnTap: func(d *mock.Driver) {
			app.selectedExercise = name
		}})
	}

	app.drv.AddScreen(app.list)
	app.drv.AddScreen(app.editor)
	app.drv.AddScreen(app.day)
	app.drv.AddScreen(app.picker)
	app.drv.Show("routineList")
	return app
}

// confirmDay turns the day dialog input into a day row on the editor.
func (app *fitTrackApp) confirmDay(d *mock.Driver) {
	name := app.dayInput.Text
	app.dayInput.Text = ""
	if name != "" {
		app.addDayRow(name)
	}
}

// addDayRow seeds a workout day row on the editor screen.
func (app *fitTrackApp) addDayRow(name string) {
	app.editor.AddElement(&mock.Element{Text: name, Enabled: true, OnTap: func(d *mock.Driver) {
		d.ShowLocked("workoutDay")
	}})
}

// saveRoutine lands back on the list with the routine row added or renamed.
func (app *fitTrackApp) saveRoutine(d *mock.Driver) {
	title := app.titleInput.Text
	if app.editingRow != nil {
		app.editingRow.Text = title
	} else if title != "" {
		app.addRoutineRow(title)
	}
	d.ShowLocked("routineList")
}

// addRoutineRow seeds a routine row: tap opens the editor, long-press
// opens the delete menu.
func (app *fitTrackApp) addRoutineRow(name string) *mock.Element {
	row := &mock.Element{Text: name, Enabled: true}
	row.OnTap = func(d *mock.Driver) {
		app.editingRow = row
		app.titleInput.Text = row.Text
		d.ShowLocked("routineEditor")
	}
	row.OnLongPress = func(d *mock.Driver) {
		app.list.AddElement(&mock.Element{Text: "Delete", Enabled: true, OnTap: func(d *mock.Driver) {
			app.list.AddElement(&mock.Element{ID: "confirm_delete", Enabled: true, OnTap: func(d *mock.Driver) {
				app.list.RemoveElement(row.Text)
				app.list.RemoveElement("Delete")
				app.list.RemoveElement("confirm_delete")
			}})
		}})
	}
	app.list.AddElement(row)
	return row
}

// addSetRow appends an empty set to the open exercise.
func (app *fitTrackApp) addSetRow(d *mock.Driver) {
	app.day.AddElement(&mock.Element{ID: "set_row", Text: "set", Enabled: true})
	app.day.AddElement(&mock.Element{ID: "set_reps_input", Text: "0", Enabled: true})
	app.day.AddElement(&mock.Element{ID: "set_weight_input", Text: "0", Enabled: true})
}

// removeSetRow drops one set from the open exercise.
func (app *fitTrackApp) removeSetRow(d *mock.Driver) {
	app.day.RemoveElement("set_row")
	app.day.RemoveElement("set_reps_input")
	app.day.RemoveElement("set_weight_input")
}

// confirmExercise places the picked catalog exercise on the workout day.
func (app *fitTrackApp) confirmExercise(d *mock.Driver) {
	if app.selectedExercise != "" {
		app.day.AddElement(&mock.Element{Text: app.selectedExercise, Enabled: true})
		app.selectedExercise = ""
	}
	d.ShowLocked("workoutDay")
}

func (app *fitTrackApp) session() *pages.Session {
	return pages.NewSession(app.drv)
}

// fakeBackend is an in-process FitTrack API.
type fakeBackend struct {
	mu       sync.Mutex
	routines map[string]*api.Routine
	nextID   int

	// report, when set, is served as the weekly aggregation.
	report *api.WeeklyReport
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{routines: make(map[string]*api.Routine)}
}

// start serves the backend over httptest and returns a client for it.
func (b *fakeBackend) start(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, "spec-token")
}

// seedRoutine stores a routine directly, bypassing HTTP.
func (b *fakeBackend) seedRoutine(r *api.Routine) *api.Routine {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	r.ID = fmt.Sprintf("rt-%d", b.nextID)
	b.routines[r.ID] = r
	return r
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/v1/routines", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			var routine api.Routine
			if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b.nextID++
			routine.ID = fmt.Sprintf("rt-%d", b.nextID)
			b.routines[routine.ID] = &routine
			json.NewEncoder(w).Encode(routine)
		case http.MethodGet:
			out := make([]*api.Routine, 0, len(b.routines))
			for _, routine := range b.routines {
				out = append(out, routine)
			}
			json.NewEncoder(w).Encode(out)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/routines/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/routines/")

		b.mu.Lock()
		defer b.mu.Unlock()

		routine, ok := b.routines[id]
		if !ok {
			http.Error(w, `{"error":"routine not found"}`, http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(routine)
		case http.MethodPut:
			var updated api.Routine
			if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			updated.ID = id
			b.routines[id] = &updated
			json.NewEncoder(w).Encode(updated)
		case http.MethodDelete:
			delete(b.routines, id)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	mux.HandleFunc("/v1/reports/weekly", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.report != nil {
			json.NewEncoder(w).Encode(b.report)
			return
		}

		// Aggregate over everything stored.
		report := api.WeeklyReport{WeekStart: r.URL.Query().Get("weekStart")}
		for _, routine := range b.routines {
			totals := api.ComputeTotals(routine)
			report.TotalSets += totals.Sets
			report.TotalVolumeKg += totals.VolumeKg
			report.Sessions += len(routine.Days)
		}
		json.NewEncoder(w).Encode(report)
	})

	return mux
}
