// Package containers starts disposable metrics databases for integration tests
package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	startTimeout = 3 * time.Minute
	readyTimeout = 2 * time.Minute
)

type spec struct {
	image string
	port  nat.Port
	env   map[string]string
	wait  wait.Strategy
	dsn   string // format taking host and port
}

var (
	postgres = spec{
		image: "postgres:16-alpine",
		port:  "5432/tcp",
		env:   map[string]string{"POSTGRES_USER": "gsc", "POSTGRES_PASSWORD": "gsc", "POSTGRES_DB": "gsc"},
		wait: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(readyTimeout),
		dsn: "postgres://gsc:gsc@%s:%s/gsc?sslmode=disable",
	}
	clickhouse = spec{
		image: "clickhouse/clickhouse-server:24.8-alpine",
		port:  "9000/tcp",
		env:   map[string]string{"CLICKHOUSE_USER": "gsc", "CLICKHOUSE_PASSWORD": "gsc", "CLICKHOUSE_DB": "gsc"},
		wait:  wait.ForListeningPort("9000/tcp").WithStartupTimeout(readyTimeout),
		dsn:   "clickhouse://gsc:gsc@%s:%s/gsc",
	}
)

// Postgres starts postgres and returns its DSN. The container is removed on test cleanup
func Postgres(t testing.TB) string { return start(t, postgres) }

// Clickhouse starts clickhouse and returns a native protocol DSN
func Clickhouse(t testing.TB) string { return start(t, clickhouse) }

func start(t testing.TB, s spec) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        s.image,
			ExposedPorts: []string{string(s.port)},
			Env:          s.env,
			WaitingFor:   s.wait,
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", s.image, err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", s.image, err)
	}
	mapped, err := c.MappedPort(ctx, s.port)
	if err != nil {
		t.Fatalf("%s port: %v", s.image, err)
	}
	return fmt.Sprintf(s.dsn, host, mapped.Port())
}
