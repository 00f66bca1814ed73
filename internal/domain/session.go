package domain

import "time"

// SessionPhase is the mutually exclusive stage of a drawing session.
type SessionPhase int

const (
	PhaseSelecting SessionPhase = iota
	PhaseDrawing
	PhaseCompleted
)

// String returns a human-readable phase.
func (p SessionPhase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseDrawing:
		return "drawing"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// SessionState is the session controller's single state value.
// Animal is nil while Selecting. StepIndex is only meaningful while
// Drawing and always satisfies 0 <= StepIndex < len(Animal.Steps).
type SessionState struct {
	ID            string
	Phase         SessionPhase
	Animal        *AnimalDrawing
	StepIndex     int
	StepStartedAt time.Time
}

// Selecting returns the initial state.
func Selecting() SessionState {
	return SessionState{Phase: PhaseSelecting}
}

// Drawing returns a drawing state at step i.
func Drawing(id string, animal *AnimalDrawing, i int, at time.Time) SessionState {
	return SessionState{
		ID:            id,
		Phase:         PhaseDrawing,
		Animal:        animal,
		StepIndex:     animal.ClampStep(i),
		StepStartedAt: at,
	}
}

// Completed returns the finished state for animal.
func Completed(id string, animal *AnimalDrawing) SessionState {
	return SessionState{
		ID:        id,
		Phase:     PhaseCompleted,
		Animal:    animal,
		StepIndex: len(animal.Steps) - 1,
	}
}

// CurrentStep returns the step being drawn, or false outside Drawing.
func (s SessionState) CurrentStep() (Step, bool) {
	if s.Phase != PhaseDrawing || s.Animal == nil {
		return Step{}, false
	}
	return s.Animal.Steps[s.StepIndex], true
}

// IsLastStep reports whether the cursor is on the drawing's final step.
func (s SessionState) IsLastStep() bool {
	return s.Animal != nil && s.StepIndex == len(s.Animal.Steps)-1
}

// DrawingRecord summarises one drawing session for the history.
type DrawingRecord struct {
	SessionID  string
	Animal     string
	StepsDone  int
	TotalSteps int
	Finished   bool
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// Record returns the history entry for s, or false while Selecting.
// StepsDone counts the step being drawn as done.
func (s SessionState) Record(startedAt, now time.Time) (DrawingRecord, bool) {
	if s.Animal == nil {
		return DrawingRecord{}, false
	}
	r := DrawingRecord{
		SessionID:  s.ID,
		Animal:     s.Animal.Name,
		StepsDone:  s.StepIndex + 1,
		TotalSteps: len(s.Animal.Steps),
		Finished:   s.Phase == PhaseCompleted,
		StartedAt:  startedAt,
		UpdatedAt:  now,
	}
	return r, true
}
