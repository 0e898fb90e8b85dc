package store

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cybershield/internal/pkg/instrument"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// TestRedis_Container runs the contract against a real server, where WATCH
// conflicts happen under genuine concurrency.
func TestRedis_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}

	uri, err := ctr.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	opt, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	runContract(t, NewRedis(client, instrument.NewNoop()))
}
