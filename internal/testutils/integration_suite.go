package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
)

// IntegrationSuite spins up the backing services the ingestion and
// chat features talk to: Postgres for users, history and run records,
// Weaviate for the chunk index, and nsqd for the ingest topics.
type IntegrationSuite struct {
	T        *testing.T
	DB       *sql.DB
	Weaviate *weaviate.Client
	NSQ      *nsq.Producer

	containers []testcontainers.Container
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	return &IntegrationSuite{T: t}
}

func (s *IntegrationSuite) Setup() {
	ctx := context.Background()
	s.startPostgres(ctx)
	s.startWeaviate(ctx)
	s.startNSQ(ctx)
}

func (s *IntegrationSuite) startPostgres(ctx context.Context) {
	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bookchat_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(s.T, err)
	s.containers = append(s.containers, pg)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T, err)

	s.DB, err = sql.Open("postgres", connStr)
	require.NoError(s.T, err)

	_, caller, _, _ := runtime.Caller(0)
	migrationPath := fmt.Sprintf("file://%s/../../migrations", filepath.Dir(caller))

	m, err := migrate.New(migrationPath, connStr)
	require.NoError(s.T, err)
	require.NoError(s.T, m.Up())
}

func (s *IntegrationSuite) startWeaviate(ctx context.Context) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "semitechnologies/weaviate:latest",
			ExposedPorts: []string{"8080/tcp", "50051/tcp"},
			Env: map[string]string{
				"AUTHENTICATION_ANONYMOUS_ACCESS_ENABLED": "true",
				"DEFAULT_VECTORIZER_MODULE":               "none",
				"PERSISTENCE_DATA_PATH":                   "/var/lib/weaviate",
			},
			WaitingFor: wait.ForHTTP("/v1/meta").WithPort("8080/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(s.T, err)
	s.containers = append(s.containers, c)

	host, err := c.Host(ctx)
	require.NoError(s.T, err)
	port, err := c.MappedPort(ctx, "8080")
	require.NoError(s.T, err)

	s.Weaviate, err = weaviate.NewClient(weaviate.Config{
		Host:   fmt.Sprintf("%s:%s", host, port.Port()),
		Scheme: "http",
	})
	require.NoError(s.T, err)
}

func (s *IntegrationSuite) startNSQ(ctx context.Context) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nsqio/nsq:v1.3.0",
			ExposedPorts: []string{"4150/tcp", "4151/tcp"},
			Cmd:          []string{"/nsqd", "--broadcast-address=localhost"},
			WaitingFor:   wait.ForLog("TCP: listening on").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(s.T, err)
	s.containers = append(s.containers, c)

	host, err := c.Host(ctx)
	require.NoError(s.T, err)
	port, err := c.MappedPort(ctx, "4150")
	require.NoError(s.T, err)

	s.NSQ, err = nsq.NewProducer(fmt.Sprintf("%s:%s", host, port.Port()), nsq.NewConfig())
	require.NoError(s.T, err)
}

// TruncateTables resets the relational state between test cases.
func (s *IntegrationSuite) TruncateTables() {
	_, err := s.DB.Exec(`TRUNCATE chat_history, auth_sessions, ingest_runs, users RESTART IDENTITY CASCADE`)
	require.NoError(s.T, err)
}

func (s *IntegrationSuite) Teardown() {
	ctx := context.Background()
	for _, c := range s.containers {
		if c != nil {
			c.Terminate(ctx)
		}
	}
}
