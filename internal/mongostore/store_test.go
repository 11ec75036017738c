package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fungarium/internal/docstore"
	"fungarium/internal/docstore/storetest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlain(t *testing.T) {
	when := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in := bson.M{
		"n":    int32(4),
		"big":  int64(10),
		"list": primitive.A{"a", int32(1)},
		"sub":  bson.D{{Key: "x", Value: true}},
		"when": primitive.NewDateTimeFromTime(when),
	}
	got := plain(in).(map[string]any)
	assert.Equal(t, 4.0, got["n"])
	assert.Equal(t, 10.0, got["big"])
	assert.Equal(t, []any{"a", 1.0}, got["list"])
	assert.Equal(t, map[string]any{"x": true}, got["sub"])
	assert.Equal(t, "2024-06-01T12:00:00Z", got["when"])
}

func TestOpen_Validation(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	_, err := Open(context.Background(), "", "db", log)
	assert.Error(t, err)
	_, err = Open(context.Background(), "mongodb://localhost:1", "", log)
	assert.Error(t, err)
}

func TestStore_Mongo(t *testing.T) {
	if testing.Short() {
		t.Skip("mongo container skipped in -short mode")
	}
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.Endpoint(ctx, "mongodb")
	require.NoError(t, err)

	log := logrus.NewEntry(logrus.New())
	var n atomic.Int32
	storetest.Run(t, func(t *testing.T) docstore.Store {
		s, err := Open(ctx, uri, fmt.Sprintf("fungarium_%d", n.Add(1)), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
