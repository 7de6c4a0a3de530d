package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/events"
)

// LogHandler records exercise events as structured log lines and metrics.
// Unknown event types are acknowledged and ignored.
type LogHandler struct {
	log logrus.FieldLogger
}

// NewLogHandler constructs a LogHandler.
func NewLogHandler(log logrus.FieldLogger) *LogHandler {
	return &LogHandler{log: log}
}

// Handle implements Handler.
func (h *LogHandler) Handle(_ context.Context, msg Message) error {
	if msg.EventType != events.ExerciseLoggedType {
		h.log.WithField("event_type", msg.EventType).Debug("ignoring event")
		return nil
	}

	var event events.ExerciseLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}

	h.log.WithFields(logrus.Fields{
		"exercise_id": event.ExerciseID,
		"user_id":     event.UserID,
		"username":    event.Username,
		"duration":    event.Duration,
		"date":        event.Date.Format("2006-01-02"),
	}).Info("exercise logged")
	recordExercise(event)
	return nil
}
