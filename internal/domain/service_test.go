package domain

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/events"
)

func TestCreateExerciseDefaultsDateToToday(t *testing.T) {
	now := time.Date(2024, time.March, 9, 17, 45, 0, 0, time.UTC)
	repo := newStubRepo()
	user, _ := repo.CreateUser(context.Background(), User{Username: "runner"})
	publisher := &stubPublisher{}

	service := NewService(repo, repo, WithClock(func() time.Time { return now }), WithPublisher(publisher))

	gotUser, exercise, err := service.CreateExercise(context.Background(), CreateExerciseInput{
		UserID:      user.ID,
		Description: "intervals",
		Duration:    30,
	})
	require.NoError(t, err)
	require.Equal(t, "runner", gotUser.Username)
	require.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), exercise.Date)
	require.Equal(t, "Sat Mar 09 2024", FormatDate(exercise.Date))

	require.Len(t, publisher.events, 1)
	require.Equal(t, exercise.ID, publisher.events[0].ExerciseID)
	require.Equal(t, "runner", publisher.events[0].Username)
}

func TestCreateExerciseUnknownUser(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, repo)

	_, _, err := service.CreateExercise(context.Background(), CreateExerciseInput{UserID: "missing", Duration: 10})
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, repo.exercises)
}

func TestCreateExerciseIgnoresPublishFailure(t *testing.T) {
	repo := newStubRepo()
	user, _ := repo.CreateUser(context.Background(), User{Username: "rower"})
	service := NewService(repo, repo, WithPublisher(&stubPublisher{err: errors.New("broker down")}))

	_, exercise, err := service.CreateExercise(context.Background(), CreateExerciseInput{UserID: user.ID, Duration: 12})
	require.NoError(t, err)
	require.NotEmpty(t, exercise.ID)
}

func TestExerciseLogAppliesDefaultLimit(t *testing.T) {
	repo := newStubRepo()
	user, _ := repo.CreateUser(context.Background(), User{Username: "lifter"})
	service := NewService(repo, repo)

	_, log, err := service.ExerciseLog(context.Background(), user.ID, LogQuery{})
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Empty(t, log)
	require.Equal(t, DefaultLogLimit, repo.lastFilter.Limit)
	require.Equal(t, user.ID, repo.lastFilter.UserID)
}

func TestExerciseLogUnknownUser(t *testing.T) {
	repo := newStubRepo()
	service := NewService(repo, repo)

	_, _, err := service.ExerciseLog(context.Background(), "nope", LogQuery{Limit: 1})
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Equal(t, ExerciseFilter{}, repo.lastFilter)
}

func TestListUsersEmptyStore(t *testing.T) {
	service := NewService(newStubRepo(), newStubRepo())

	users, err := service.ListUsers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	require.Empty(t, users)
}

func TestCreateUserWrapsStoreError(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("write failed")
	service := NewService(repo, repo)

	_, err := service.CreateUser(context.Background(), "swimmer")
	require.Error(t, err)
	require.ErrorIs(t, err, repo.createErr)
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2023-01-05":                "Thu Jan 05 2023",
		"2023-01-05T10:30:00Z":      "Thu Jan 05 2023",
		"2023-01-05T10:30:00":       "Thu Jan 05 2023",
		"2023-01-05 23:59:59":       "Thu Jan 05 2023",
		"Thu Jan 05 2023":           "Thu Jan 05 2023",
		" 2023-02-01 ":              "Wed Feb 01 2023",
		"2023-01-05T23:30:00-05:00": "Fri Jan 06 2023",
	}
	for raw, want := range cases {
		got, err := ParseDate(raw)
		require.NoErrorf(t, err, "parse %q", raw)
		require.Equal(t, want, FormatDate(got), raw)
		require.Zero(t, got.Hour())
	}

	_, err := ParseDate("not a date")
	require.Error(t, err)
}

func TestExerciseFilterMatchesInclusiveBounds(t *testing.T) {
	from, _ := ParseDate("2023-01-01")
	to, _ := ParseDate("2023-01-31")
	filter := ExerciseFilter{UserID: "u", From: &from, To: &to}

	inside, _ := ParseDate("2023-01-15")
	after, _ := ParseDate("2023-02-01")

	require.True(t, filter.Matches(Exercise{UserID: "u", Date: from}))
	require.True(t, filter.Matches(Exercise{UserID: "u", Date: to}))
	require.True(t, filter.Matches(Exercise{UserID: "u", Date: inside}))
	require.False(t, filter.Matches(Exercise{UserID: "u", Date: after}))
	require.False(t, filter.Matches(Exercise{UserID: "other", Date: inside}))
}

type stubRepo struct {
	users      map[string]User
	exercises  []Exercise
	lastFilter ExerciseFilter
	createErr  error
	seq        int
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]User)}
}

func (r *stubRepo) nextID() string {
	r.seq++
	return "id-" + strconv.Itoa(r.seq)
}

func (r *stubRepo) CreateUser(ctx context.Context, user User) (User, error) {
	if r.createErr != nil {
		return User{}, r.createErr
	}
	user.ID = r.nextID()
	r.users[user.ID] = user
	return user, nil
}

func (r *stubRepo) ListUsers(ctx context.Context) ([]User, error) {
	return nil, nil
}

func (r *stubRepo) FindUserByID(ctx context.Context, id string) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *stubRepo) CreateExercise(ctx context.Context, exercise Exercise) (Exercise, error) {
	exercise.ID = r.nextID()
	r.exercises = append(r.exercises, exercise)
	return exercise, nil
}

func (r *stubRepo) QueryExercises(ctx context.Context, filter ExerciseFilter) ([]Exercise, error) {
	r.lastFilter = filter
	return nil, nil
}

type stubPublisher struct {
	events []events.ExerciseLogged
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, event events.ExerciseLogged) error {
	p.events = append(p.events, event)
	return p.err
}

func TestCreateExerciseRejectsNonFiniteDuration(t *testing.T) {
	repo := newStubRepo()
	user, _ := repo.CreateUser(context.Background(), User{Username: "cyclist"})
	publisher := &stubPublisher{}
	service := NewService(repo, repo, WithPublisher(publisher))

	for _, duration := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, _, err := service.CreateExercise(context.Background(), CreateExerciseInput{UserID: user.ID, Duration: duration})
		require.ErrorIs(t, err, ErrInvalidExercise)
	}
	require.Empty(t, repo.exercises)
	require.Empty(t, publisher.events)
}
