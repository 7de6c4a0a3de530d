// Package postgres provides Postgres-backed persistence for users and exercises.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exercisetracker/internal/domain"
)

//go:embed schema.sql
var schema string

// Repository stores users and exercises in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool against url.
func Connect(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewRepository(pool), nil
}

// EnsureSchema creates tables and indexes when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()
	const stmt = `INSERT INTO users (user_id, username) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, stmt, user.ID, user.Username); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id::text, username FROM users ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByID implements domain.UserRepository. Malformed IDs are treated as unknown.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := r.pool.QueryRow(ctx, `SELECT user_id::text, username FROM users WHERE user_id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	exercise.ID = uuid.NewString()
	exercise.Date = domain.CalendarDay(exercise.Date)

	const stmt = `INSERT INTO exercises (exercise_id, user_id, description, duration, date)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
	)
	if err != nil {
		return domain.Exercise{}, err
	}
	return exercise, nil
}

// QueryExercises implements domain.ExerciseRepository.
func (r *Repository) QueryExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	if _, err := uuid.Parse(filter.UserID); err != nil {
		return []domain.Exercise{}, nil
	}

	args := []interface{}{filter.UserID}
	query := `SELECT exercise_id::text, user_id::text, description, duration, date
        FROM exercises WHERE user_id=$1`

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Exercise, 0)
	for rows.Next() {
		var (
			e    domain.Exercise
			date time.Time
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &date); err != nil {
			return nil, err
		}
		e.Date = domain.CalendarDay(date)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
