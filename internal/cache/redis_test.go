package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisAddr stays empty when docker is unavailable; the redis tests skip.
var redisAddr string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	if os.Getenv("SKIP_DOCKER_TESTS") != "" {
		return m.Run()
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("docker unavailable, skipping redis tests: %v", err)
		return m.Run()
	}
	if err := pool.Client.Ping(); err != nil {
		log.Printf("docker unavailable, skipping redis tests: %v", err)
		return m.Run()
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("could not start redis: %v", err)
		return m.Run()
	}
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("could not purge redis: %v", err)
		}
	}()
	_ = resource.Expire(120)

	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))
	pool.MaxWait = time.Minute
	if err := pool.Retry(func() error {
		c := New(addr, "", 0)
		defer c.Close()
		return c.Ping(context.Background())
	}); err != nil {
		log.Printf("redis never became ready: %v", err)
		return m.Run()
	}
	redisAddr = addr

	return m.Run()
}

func requireRedis(t *testing.T) *Client {
	t.Helper()
	if testing.Short() || redisAddr == "" {
		t.Skip("redis container not available")
	}
	c := New(redisAddr, "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedis_JSONRoundTrip(t *testing.T) {
	c := requireRedis(t)
	ctx := context.Background()

	type user struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, c.SetJSON(ctx, "roundtrip:alice", user{ID: 1, Username: "alice"}, time.Minute))

	var got user
	require.True(t, c.GetJSON(ctx, "roundtrip:alice", &got))
	assert.Equal(t, user{ID: 1, Username: "alice"}, got)

	require.NoError(t, c.Delete(ctx, "roundtrip:alice"))
	assert.False(t, c.GetJSON(ctx, "roundtrip:alice", &got))
}

func TestRedis_DeletePrefix(t *testing.T) {
	c := requireRedis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("purge:user:%d", i), []byte("1"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "keep:user:1", []byte("1"), time.Minute))

	n, err := c.DeletePrefix(ctx, "purge:user:")
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	data, _ := c.Get(ctx, "purge:user:7")
	assert.Nil(t, data)
	data, _ = c.Get(ctx, "keep:user:1")
	assert.Equal(t, []byte("1"), data)

	n, err = c.DeletePrefix(ctx, "purge:user:")
	require.NoError(t, err)
	assert.Zero(t, n)
}
