package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/evanm/mindlog/internal/api"
	"github.com/evanm/mindlog/internal/config"
	"github.com/evanm/mindlog/internal/domain"
	"github.com/evanm/mindlog/internal/events"
	"github.com/evanm/mindlog/internal/repository"
	repoPostgres "github.com/evanm/mindlog/internal/repository/postgres"
	"github.com/evanm/mindlog/internal/sentiment"
	"github.com/evanm/mindlog/internal/service"
	"github.com/evanm/mindlog/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_mindlog"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.JournalEntry{},
		&domain.SentimentCheck{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"sentiment_checks",
		"journals",
		"user_sessions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		GeminiAPIKey:       "test-api-key",
		AllowedOrigins:     []string{"http://localhost:3000"},
	}
}

// FakeClassifier is a controllable sentiment.Classifier for tests.
type FakeClassifier struct {
	mu    sync.Mutex
	label domain.SentimentLabel
	raw   []byte
	err   error
	block chan struct{}
	calls int
}

func NewFakeClassifier() *FakeClassifier {
	return &FakeClassifier{label: domain.SentimentNeutral}
}

func (f *FakeClassifier) Returns(label domain.SentimentLabel, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.label = label
	f.raw = raw
	f.err = nil
}

func (f *FakeClassifier) Fails(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// BlockOn makes Classify wait until ch is closed (or the context ends).
// Pass nil to stop blocking. Lets a test hold a classification open to
// exercise the in-flight submission guard.
func (f *FakeClassifier) BlockOn(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = ch
}

func (f *FakeClassifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeClassifier) Classify(ctx context.Context, text string) (sentiment.Result, error) {
	f.mu.Lock()
	f.calls++
	label, raw, err, block := f.label, f.raw, f.err, f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return sentiment.Result{}, ctx.Err()
		}
	}

	if err != nil {
		return sentiment.Result{}, err
	}
	return sentiment.Result{Label: label, Raw: raw}, nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server     *httptest.Server
	DB         *TestDB
	Repos      *repository.Repositories
	Services   *service.Services
	Classifier *FakeClassifier
	Bus        *events.Bus
	Hub        *websocket.Hub
	Config     *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	classifier := NewFakeClassifier()
	bus := events.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	services := service.NewServices(repos, classifier, bus, cfg)
	router := api.NewRouter(services, hub, nil, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:     server,
		DB:         testDB,
		Repos:      repos,
		Services:   services,
		Classifier: classifier,
		Bus:        bus,
		Hub:        hub,
		Config:     cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
