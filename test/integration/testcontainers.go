package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/centricity/ordersync/pkg/brightsites"
	"github.com/centricity/ordersync/pkg/config"
	"github.com/centricity/ordersync/pkg/server"
	"github.com/centricity/ordersync/pkg/server/endpoints"
	gormstore "github.com/centricity/ordersync/pkg/store/gorm"
	"github.com/centricity/ordersync/pkg/sweeper"
)

const (
	adminSecret = "integration-admin-secret"
	serverPort  = "18080"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	ServerURL   string
	DatabaseURL string
	HTTPClient  *http.Client
	Storefront  *fakeStorefront
	Server      *server.Server
	Sweeper     *sweeper.Sweeper
	Config      *config.Config
}

// NewTestContext starts a PostgreSQL testcontainer, runs migrations, spins
// up a fake storefront API and an in-process status server wired to both.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ordersync_test"),
		tcpostgres.WithUsername("ordersync"),
		tcpostgres.WithPassword("ordersync"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://ordersync:ordersync@%s:%s/ordersync_test?sslmode=disable", host, port.Port())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rawDB, err := db.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	if err := runMigrations(rawDB, migrationsDir); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Fake storefront API; clients are pointed at it via BaseURL
	storefront := newFakeStorefront()

	cfg := &config.Config{
		Stores: []config.Store{
			{Subdomain: "acme", APIKeyEnv: "ORDERSYNC_TEST_ACME_KEY"},
			{Subdomain: "bolt", APIKeyEnv: "ORDERSYNC_TEST_BOLT_KEY"},
		},
		APIDomain:          "mybrightsites.com",
		LookbackSeconds:    7200,
		HTTPTimeoutSeconds: 10,
		PerPage:            50,
	}
	_ = os.Setenv("ORDERSYNC_TEST_ACME_KEY", tokenFor("acme"))
	_ = os.Setenv("ORDERSYNC_TEST_BOLT_KEY", tokenFor("bolt"))
	_ = os.Setenv("ORDERSYNC_ADMIN_TOKEN_SECRET", adminSecret)

	sweeps := gormstore.NewSweepsStore(db)
	transitions := gormstore.NewTransitionsStore(db)
	health := gormstore.NewHealthStore(db)

	sw := sweeper.New(cfg, transitions, sweeps,
		sweeper.WithClientFactory(func(st config.Store) sweeper.OrdersClient {
			return brightsites.NewClient(brightsites.Config{
				Subdomain: st.Subdomain,
				Domain:    cfg.APIDomain,
				Token:     st.APIKey(),
				BaseURL:   storefront.URL(),
				Timeout:   cfg.HTTPTimeout(),
			})
		}),
	)

	srv := server.NewServer(cfg, db, sw, sweeps, transitions, health, "127.0.0.1", serverPort)
	endpoints.RegisterAll(srv)
	go func() {
		_ = srv.Start()
	}()

	serverURL := fmt.Sprintf("http://127.0.0.1:%s", serverPort)
	if err := waitForServer(serverURL, 30*time.Second); err != nil {
		storefront.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return &TestContext{
		DB:          db,
		RawDB:       rawDB,
		Container:   pgContainer,
		ServerURL:   serverURL,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Storefront:  storefront,
		Server:      srv,
		Sweeper:     sw,
		Config:      cfg,
	}, nil
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = tc.Server.Shutdown(shutdownCtx)

	if tc.Storefront != nil {
		tc.Storefront.Close()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations executes the up migration files in order
func runMigrations(db *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", filepath.Base(file), err)
		}
		log.Printf("Applied migration %s", filepath.Base(file))
	}

	return nil
}
