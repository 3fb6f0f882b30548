//go:build integration

// Package testhelpers starts the backing services in Docker containers for
// integration tests. Tests using it need a reachable Docker daemon and are
// built only with the integration tag:
//
//	go test -tags integration ./...
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"hobbyhub/migrations"
	"hobbyhub/pkg/config"
	"hobbyhub/pkg/database"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	minioImage    = "minio/minio:latest"
	startTimeout  = 90 * time.Second
)

// StartPostgres runs a migrated PostgreSQL container and returns a config
// pointing at it. The container is terminated when the test completes.
func StartPostgres(t *testing.T) *config.Config {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "hobbyhub",
			"POSTGRES_PASSWORD": "hobbyhub",
			"POSTGRES_DB":       "hobbyhub",
		},
		// postgres restarts once after init; the second ready line is the real one
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startTimeout),
	}

	container := start(t, ctx, req)
	host := containerHost(t, ctx, container)
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	port := mapped.Port()

	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port,
		DBUser:     "hobbyhub",
		DBPassword: "hobbyhub",
		DBName:     "hobbyhub",
		DBSSLMode:  "disable",
	}
	migrate(t, cfg)

	t.Logf("PostgreSQL started: %s:%s", host, port)
	return cfg
}

// StartMinIO runs an S3-compatible MinIO container and returns a config for
// pkg/s3 with its endpoint and credentials.
func StartMinIO(t *testing.T) *config.Config {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        minioImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "hobbyhub",
			"MINIO_ROOT_PASSWORD": "hobbyhub-secret",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startTimeout),
	}

	container := start(t, ctx, req)
	host := containerHost(t, ctx, container)
	mapped, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}
	port := mapped.Port()
	endpointURL := fmt.Sprintf("http://%s:%s", host, port)

	t.Logf("MinIO started: %s", endpointURL)
	return &config.Config{
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "hobbyhub",
		AWSSecretAccessKey: "hobbyhub-secret",
		AWSEndpoint:        endpointURL,
		S3UseSSL:           "false",
		S3BucketName:       "post-images",
		StoragePublicURL:   endpointURL,
	}
}

func start(t *testing.T, ctx context.Context, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", req.Image, err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s container: %v", req.Image, err)
		}
	})
	return container
}

func containerHost(t *testing.T, ctx context.Context, container testcontainers.Container) string {
	t.Helper()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	return host
}

func migrate(t *testing.T, cfg *config.Config) {
	t.Helper()

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}
