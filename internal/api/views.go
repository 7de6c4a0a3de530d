package api

import "example.com/exercisetracker/internal/domain"

// UserView is the public shape of a user.
type UserView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// ExerciseView is returned after an exercise is logged.
type ExerciseView struct {
	ID          string  `json:"_id"`
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogEntryView is one entry of an exercise log.
type LogEntryView struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// ExerciseLogResponse packages a user's filtered exercise log.
type ExerciseLogResponse struct {
	ID       string         `json:"_id"`
	Username string         `json:"username"`
	Count    int            `json:"count"`
	Log      []LogEntryView `json:"log"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username}
}

func toLogEntryView(e domain.Exercise) LogEntryView {
	return LogEntryView{
		Description: e.Description,
		Duration:    e.Duration,
		Date:        domain.FormatDate(e.Date),
	}
}
