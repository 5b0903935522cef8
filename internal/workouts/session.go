package workouts

import "time"

// Session is a single logged workout: one gym visit with all performed exercises.
type Session struct {
	ID          int                 `json:"id"`
	UserID      string              `json:"userId"`
	StartedAt   time.Time           `json:"startedAt"`
	DurationMin int                 `json:"durationMin"`
	Notes       string              `json:"notes,omitempty"`
	Exercises   []PerformedExercise `json:"exercises"`
}

type PerformedExercise struct {
	ID          int    `json:"id"`
	SessionID   int    `json:"sessionId"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	Kilos       int    `json:"kilos"`
}

// ExerciseNames returns the distinct names of all performed exercises.
func (s Session) ExerciseNames() []string {
	seen := make(map[string]bool, len(s.Exercises))
	var names []string
	for _, ex := range s.Exercises {
		if seen[ex.Name] {
			continue
		}
		seen[ex.Name] = true
		names = append(names, ex.Name)
	}
	return names
}

// WorkoutEvent is a per-body-part fact extracted from a session:
// one event per distinct muscle group worked in that session.
// Never stored independently - reconstructed per query from the
// session / exercise join.
type WorkoutEvent struct {
	SessionID   int       `json:"sessionId"`
	BodyPart    string    `json:"bodyPart"`
	PerformedAt time.Time `json:"performedAt"`
	SetCount    int       `json:"setCount"`
}
