package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/persistence/memory"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), config.Config{StoreDriver: config.DriverMemory}, logrus.New())
	require.NoError(t, err)
	require.IsType(t, &memory.Repository{}, store)
	require.NoError(t, store.Ping(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "cassandra", StoreTimeout: time.Second}, logrus.New())
	require.Error(t, err)
}
