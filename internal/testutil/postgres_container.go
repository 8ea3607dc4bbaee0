package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "intake"
	pgPassword = "intake"
	pgDatabase = "intake_test"
)

// PostgresDSN starts a PostgreSQL server and returns a DSN usable with the
// "pgx" database/sql driver.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	endpoint := run(t, "postgres:16",
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("ready to accept connections"),
				// The log line is printed twice during init; only a real
				// query proves the server is up.
				wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
					return dsn(fmt.Sprintf("%s:%s", host, port.Port()))
				}).WithQuery("SELECT 1"),
			).WithDeadline(2*time.Minute),
		),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		}),
	)
	return dsn(endpoint)
}

func dsn(hostPort string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, hostPort, pgDatabase)
}
