// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/exercisetracker/internal/events"
	"example.com/exercisetracker/internal/observability"
)

var (
	// ErrUserNotFound is returned when a user cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidExercise indicates the exercise payload could not be interpreted.
	ErrInvalidExercise = errors.New("invalid exercise")
)

// Publisher receives exercise events after they are persisted.
type Publisher interface {
	Publish(ctx context.Context, event events.ExerciseLogged) error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, events.ExerciseLogged) error { return nil }

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithPublisher routes logged exercises to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source used for default exercise dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// Service orchestrates the user directory and the exercise log.
type Service struct {
	users     UserRepository
	exercises ExerciseRepository
	publisher Publisher
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewService constructs a Service.
func NewService(users UserRepository, exercises ExerciseRepository, opts ...Option) *Service {
	s := &Service{
		users:     users,
		exercises: exercises,
		publisher: NoopPublisher{},
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateExerciseInput captures the payload from the API layer.
type CreateExerciseInput struct {
	UserID      string
	Description string
	Duration    float64
	// Date defaults to the current day when nil.
	Date *time.Time
}

// LogQuery carries optional log filters. A Limit <= 0 means DefaultLogLimit.
type LogQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// CreateUser registers a new user. The username is stored as given.
func (s *Service) CreateUser(ctx context.Context, username string) (User, error) {
	user, err := s.users.CreateUser(ctx, User{Username: username})
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	observability.RecordUserCreated()
	return user, nil
}

// ListUsers returns every user. An empty store yields an empty slice.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// FindUser fetches a user by ID.
func (s *Service) FindUser(ctx context.Context, id string) (*User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateExercise logs an exercise for an existing user and returns both records.
func (s *Service) CreateExercise(ctx context.Context, input CreateExerciseInput) (*User, Exercise, error) {
	user, err := s.FindUser(ctx, input.UserID)
	if err != nil {
		return nil, Exercise{}, err
	}
	if math.IsNaN(input.Duration) || math.IsInf(input.Duration, 0) {
		return nil, Exercise{}, fmt.Errorf("%w: duration must be finite", ErrInvalidExercise)
	}

	date := CalendarDay(s.now())
	if input.Date != nil {
		date = CalendarDay(*input.Date)
	}

	exercise, err := s.exercises.CreateExercise(ctx, Exercise{
		UserID:      user.ID,
		Description: input.Description,
		Duration:    input.Duration,
		Date:        date,
	})
	if err != nil {
		return nil, Exercise{}, fmt.Errorf("create exercise: %w", err)
	}
	observability.RecordExerciseLogged(s.now())

	event := events.ExerciseLogged{
		ExerciseID:  exercise.ID,
		UserID:      user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
		LoggedAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithField("exercise_id", exercise.ID).Warn("exercise event not published")
	}

	return user, exercise, nil
}

// ExerciseLog returns the user's exercises filtered by the query, in insertion order.
func (s *Service) ExerciseLog(ctx context.Context, userID string, query LogQuery) (*User, []Exercise, error) {
	user, err := s.FindUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	exercises, err := s.exercises.QueryExercises(ctx, ExerciseFilter{
		UserID: user.ID,
		From:   query.From,
		To:     query.To,
		Limit:  limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("query exercises: %w", err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	return user, exercises, nil
}
