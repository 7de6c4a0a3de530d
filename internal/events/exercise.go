// Package events defines the payloads emitted when exercises are logged.
package events

import "time"

// ExerciseLoggedType is the event_type header value for ExerciseLogged.
const ExerciseLoggedType = "exercise.logged"

// ExerciseLogged represents the message emitted once an exercise has been persisted.
type ExerciseLogged struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Date        time.Time `json:"date"`
	LoggedAt    time.Time `json:"logged_at"`
}
