package api

// Set is one logged or planned set of an exercise.
type Set struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
}

// ExerciseEntry is an exercise placed in a workout day with its sets.
type ExerciseEntry struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name"`
	Sets       []Set  `json:"sets"`
}

// WorkoutDay is one day of a routine.
type WorkoutDay struct {
	Name      string          `json:"name"`
	Exercises []ExerciseEntry `json:"exercises"`
}

// Routine is a training routine as stored by the backend.
type Routine struct {
	ID   string       `json:"id,omitempty"`
	Name string       `json:"name"`
	Days []WorkoutDay `json:"days"`
}

// Exercise is a catalog entry.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}

// WeeklyReport is the backend's aggregation for one week.
type WeeklyReport struct {
	WeekStart     string             `json:"weekStart"` // ISO date, Monday
	Sessions      int                `json:"sessions"`
	TotalSets     int                `json:"totalSets"`
	TotalVolumeKg float64            `json:"totalVolumeKg"`
	SetsPerMuscle map[string]int     `json:"setsPerMuscle,omitempty"`
	VolumePerDay  map[string]float64 `json:"volumePerDay,omitempty"`
}

// Totals is a local aggregation over routine data, used to cross-check the
// backend's weekly report.
type Totals struct {
	Sets     int
	VolumeKg float64
}

// ComputeTotals aggregates sets and volume across a routine's days.
func ComputeTotals(r *Routine) Totals {
	var t Totals
	for _, day := range r.Days {
		for _, ex := range day.Exercises {
			t.Sets += len(ex.Sets)
			for _, s := range ex.Sets {
				t.VolumeKg += float64(s.Reps) * s.WeightKg
			}
		}
	}
	return t
}
