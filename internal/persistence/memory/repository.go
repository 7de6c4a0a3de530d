// Package memory keeps users and exercises in process memory for local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Repository stores users and exercises in insertion order.
type Repository struct {
	mu        sync.RWMutex
	users     []domain.User
	userIndex map[string]int
	exercises []domain.Exercise
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{userIndex: make(map[string]int)}
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.NewString()
	r.userIndex[user.ID] = len(r.users)
	r.users = append(r.users, user)
	return user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// FindUserByID implements domain.UserRepository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.userIndex[id]
	if !ok {
		return nil, nil
	}
	user := r.users[idx]
	return &user, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = uuid.NewString()
	r.exercises = append(r.exercises, exercise)
	return exercise, nil
}

// QueryExercises implements domain.ExerciseRepository.
func (r *Repository) QueryExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.Exercise, 0)
	for _, exercise := range r.exercises {
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
		if filter.Matches(exercise) {
			results = append(results, exercise)
		}
	}
	return results, nil
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (r *Repository) Close(ctx context.Context) error { return nil }
