package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/domain"
)

func TestRepositoryKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	alice, err := repo.CreateUser(ctx, domain.User{Username: "alice"})
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, domain.User{Username: "bob"})
	require.NoError(t, err)
	require.NotEqual(t, alice.ID, bob.ID)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "bob", users[1].Username)
}

func TestRepositoryFindUserByIDMissing(t *testing.T) {
	repo := NewRepository()

	user, err := repo.FindUserByID(context.Background(), "not-an-id")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestRepositoryQueryExercisesFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	day := func(s string) time.Time {
		d, err := domain.ParseDate(s)
		require.NoError(t, err)
		return d
	}

	for _, d := range []string{"2023-01-01", "2023-01-15", "2023-01-31", "2023-02-01"} {
		_, err := repo.CreateExercise(ctx, domain.Exercise{UserID: "u1", Description: d, Duration: 10, Date: day(d)})
		require.NoError(t, err)
	}
	_, err := repo.CreateExercise(ctx, domain.Exercise{UserID: "u2", Description: "other", Duration: 5, Date: day("2023-01-15")})
	require.NoError(t, err)

	from, to := day("2023-01-01"), day("2023-01-31")
	got, err := repo.QueryExercises(ctx, domain.ExerciseFilter{UserID: "u1", From: &from, To: &to, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "2023-01-01", got[0].Description)
	require.Equal(t, "2023-01-31", got[2].Description)

	limited, err := repo.QueryExercises(ctx, domain.ExerciseFilter{UserID: "u1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "2023-01-01", limited[0].Description)
}
