//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"example.com/exercisetracker/internal/domain"
)

func TestRepositoryStoresUsersAndExercises(t *testing.T) {
	ctx := context.Background()

	container, err := mongocontainer.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	repo, err := Connect(ctx, uri, "tracker_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.EnsureIndexes(ctx))

	alice, err := repo.CreateUser(ctx, domain.User{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, alice.ID, 24)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.User{alice}, users)

	missing, err := repo.FindUserByID(ctx, "not-an-object-id")
	require.NoError(t, err)
	require.Nil(t, missing)

	for _, day := range []int{20, 1, 10} {
		_, err := repo.CreateExercise(ctx, domain.Exercise{
			UserID:      alice.ID,
			Description: "row",
			Duration:    float64(day),
			Date:        time.Date(2023, time.January, day, 9, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	from := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.January, 20, 0, 0, 0, 0, time.UTC)
	exercises, err := repo.QueryExercises(ctx, domain.ExerciseFilter{UserID: alice.ID, From: &from, To: &to, Limit: 10})
	require.NoError(t, err)
	require.Len(t, exercises, 2)
	require.Equal(t, 20.0, exercises[0].Duration)
	require.Equal(t, to, exercises[0].Date)

	limited, err := repo.QueryExercises(ctx, domain.ExerciseFilter{UserID: alice.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
