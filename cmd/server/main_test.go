package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var configKeys = []string{
	"APP_HOST", "APP_PORT", "APP_LOG_LEVEL", "APP_REQUEST_TIMEOUT",
	"STORAGE_BACKEND", "SQLITE_PATH",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"POSTGRES_MAX_OPEN_CONNS", "POSTGRES_MAX_IDLE_CONNS",
	"REDIS_HOST", "REDIS_PORT", "REDIS_DB", "REDIS_PASSWORD", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_CACHE_TTL",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"JWT_SECRET_KEY", "JWT_EXP_SECOND",
}

// resetEnv blanks every variable read by parseConfig for the duration of the test.
func resetEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

// resetFlags resets the global flag.CommandLine to avoid "flag redefined" panic
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	resetFlags()
	os.Args = []string{"cmd"}
	assert.Equal(t, "config.env", parseFlags())

	resetFlags()
	os.Args = []string{"cmd", "-c", "myconfig.env"}
	assert.Equal(t, "myconfig.env", parseFlags())
}

func TestPrintBuildInfo_Output(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	buildVersion = "v1.0.0"
	buildCommit = "abcd1234"
	buildDate = "2025-09-26"

	printBuildInfo()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	output := buf.String()
	assert.Contains(t, output, "version v1.0.0")
	assert.Contains(t, output, "commit abcd1234")
	assert.Contains(t, output, "build 2025-09-26")
}

func TestParseConfig_Defaults(t *testing.T) {
	resetEnv(t)

	cfg, err := parseConfig("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.AppHost)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)

	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.Equal(t, "expenses.db", cfg.SQLitePath)

	assert.Equal(t, "localhost", cfg.PGHost)
	assert.Equal(t, 5432, cfg.PGPort)
	assert.Equal(t, "user", cfg.PGUser)
	assert.Equal(t, "password", cfg.PGPassword)
	assert.Equal(t, "database", cfg.PGDB)
	assert.Equal(t, 16, cfg.PGMaxOpenConns)
	assert.Equal(t, 8, cfg.PGMaxIdleConns)

	assert.Empty(t, cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)

	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "expense-events", cfg.KafkaTopic)

	assert.Equal(t, "my_super_secret_key", cfg.JWTSecretKey)
	assert.Equal(t, time.Hour, cfg.JWTExp)
}

func TestParseConfig_CustomEnv(t *testing.T) {
	resetEnv(t)
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("APP_REQUEST_TIMEOUT", "5s")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("REDIS_HOST", "redis.example.com")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_CACHE_TTL", "1m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_TOPIC", "events")
	t.Setenv("JWT_SECRET_KEY", "supersecret")
	t.Setenv("JWT_EXP_SECOND", "300")

	cfg, err := parseConfig("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.AppHost)
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 5433, cfg.PGPort)
	assert.Equal(t, "redis.example.com", cfg.RedisHost)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "events", cfg.KafkaTopic)
	assert.Equal(t, "supersecret", cfg.JWTSecretKey)
	assert.Equal(t, 300*time.Second, cfg.JWTExp)
}

func TestParseConfig_FromFile(t *testing.T) {
	resetEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	os.Unsetenv("APP_PORT")
	os.Unsetenv("STORAGE_BACKEND")
	path := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=7070\nSTORAGE_BACKEND=sqlite\n"), 0o600))

	cfg, err := parseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"POSTGRES_PORT", "abc"},
		{"REDIS_DB", "x"},
		{"JWT_EXP_SECOND", "soon"},
		{"APP_REQUEST_TIMEOUT", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resetEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := parseConfig("nonexistent.env")
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T) config {
	return config{
		AppHost:        "127.0.0.1",
		AppPort:        freePort(t),
		LogLevel:       "error",
		RequestTimeout: 5 * time.Second,
		StorageBackend: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "server.db"),
		CacheTTL:       time.Minute,
		JWTSecretKey:   "testsecret",
		JWTExp:         time.Hour,
	}
}

// startRun runs the server in the background and waits until it answers.
func startRun(t *testing.T, cfg config) (baseURL string, stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx, cfg) }()

	baseURL = "http://" + net.JoinHostPort(cfg.AppHost, cfg.AppPort)
	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/swagger/doc.json")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 30*time.Second, 50*time.Millisecond)

	return baseURL, func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(15 * time.Second):
			return fmt.Errorf("run did not stop")
		}
	}
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// exerciseAPI walks through the public API of a running server.
func exerciseAPI(t *testing.T, baseURL string) {
	api := baseURL + "/api"

	status := doJSON(t, http.MethodPost, api+"/auth/register", "",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret"}, nil)
	require.Equal(t, http.StatusCreated, status)

	var errResp map[string]string
	status = doJSON(t, http.MethodPost, api+"/auth/register", "",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", errResp["error"])

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	status = doJSON(t, http.MethodPost, api+"/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "secret"}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "alice@example.com", login.User.Email)

	status = doJSON(t, http.MethodGet, api+"/expenses", "", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing token", errResp["error"])

	status = doJSON(t, http.MethodGet, api+"/expenses", "garbage", nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", errResp["error"])

	var created struct {
		ID     string  `json:"id"`
		UserID string  `json:"user_id"`
		Amount float64 `json:"amount"`
	}
	status = doJSON(t, http.MethodPost, api+"/expenses", login.Token,
		map[string]any{"title": "Coffee", "amount": 4.5, "type": "expense", "category": "Food"}, &created)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, login.User.ID, created.UserID)

	status = doJSON(t, http.MethodPost, api+"/expenses", login.Token,
		map[string]any{"title": "Coffee", "amount": -1, "type": "expense"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	var list []map[string]any
	status = doJSON(t, http.MethodGet, api+"/expenses", login.Token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0]["id"])

	status = doJSON(t, http.MethodDelete, api+"/expenses/not-a-uuid", login.Token, nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	var msg map[string]string
	status = doJSON(t, http.MethodDelete, api+"/expenses/"+created.ID, login.Token, nil, &msg)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Transaction deleted", msg["message"])

	status = doJSON(t, http.MethodGet, api+"/expenses", login.Token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}

func TestRun_SQLite(t *testing.T) {
	baseURL, stop := startRun(t, testConfig(t))

	var doc map[string]any
	status := doJSON(t, http.MethodGet, baseURL+"/swagger/doc.json", "", nil, &doc)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/api", doc["basePath"])

	exerciseAPI(t, baseURL)

	require.NoError(t, stop())
}

func TestRun_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageBackend = "mongo"
	assert.Error(t, run(t.Context(), cfg))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "loud"
	assert.Error(t, run(t.Context(), cfg))
}

func TestRun_PostgresRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "user"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: pgReq, Started: true})
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: redisReq, Started: true})
	require.NoError(t, err)
	defer redisContainer.Terminate(ctx)

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.StorageBackend = "postgres"
	cfg.PGHost = pgHost
	cfg.PGPort = pgPort.Int()
	cfg.PGUser = "user"
	cfg.PGPassword = "password"
	cfg.PGDB = "testdb"
	cfg.PGMaxOpenConns = 5
	cfg.PGMaxIdleConns = 2
	cfg.RedisHost = redisHost
	cfg.RedisPort = redisPort.Int()
	cfg.RedisPoolSize = 5
	cfg.RedisMinIdleConns = 1

	baseURL, stop := startRun(t, cfg)
	exerciseAPI(t, baseURL)
	require.NoError(t, stop())
}
