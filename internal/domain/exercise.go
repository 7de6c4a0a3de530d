package domain

import (
	"context"
	"time"
)

// DefaultLogLimit caps log queries when no usable limit is supplied.
const DefaultLogLimit = 500

// Exercise is a single log entry owned by a user.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	Date        time.Time
}

// ExerciseFilter narrows an exercise query. Bounds are inclusive.
type ExerciseFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// Matches reports whether the exercise satisfies the filter, ignoring Limit.
func (f ExerciseFilter) Matches(e Exercise) bool {
	if e.UserID != f.UserID {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}

// ExerciseRepository captures exercise persistence operations.
// QueryExercises returns matches in insertion order.
type ExerciseRepository interface {
	CreateExercise(ctx context.Context, exercise Exercise) (Exercise, error)
	QueryExercises(ctx context.Context, filter ExerciseFilter) ([]Exercise, error)
}
