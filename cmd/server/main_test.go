package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/queue"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/platform/sqlite"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

// writeConfig writes a SQLite-backed config file and returns its path.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`server:
  port: 8080
  log_level: error
  log_format: json
  shutdown_timeout: 5s
database:
  driver: sqlite
  url: %s
auth:
  jwt_secret: %s
  token_lifetime_minutes: 30
engine:
  timezone: UTC
`, filepath.Join(dir, "review.db"), testSecret)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_ListsSubcommands(t *testing.T) {
	out, err := runCommand(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "migrate", "token"} {
		assert.Contains(t, out, name)
	}
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t)
	userID := uuid.New()

	out, err := runCommand(t, "token", "--config", path, "--user", userID.String())
	require.NoError(t, err)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 30})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenCommand_Errors(t *testing.T) {
	path := writeConfig(t)

	_, err := runCommand(t, "token", "--config", path, "--user", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid --user")

	_, err = runCommand(t, "token", "--config", path)
	assert.ErrorContains(t, err, "user")

	_, err = runCommand(t, "token", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--user", uuid.NewString())
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestMigrateCommand(t *testing.T) {
	path := writeConfig(t)

	for _, command := range []string{"up", "status", "version", "down", "up"} {
		_, err := runCommand(t, "migrate", command, "--config", path)
		require.NoError(t, err, "migrate %s", command)
	}

	_, err := runCommand(t, "migrate", "sideways", "--config", path)
	assert.Error(t, err)
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := openDatabase(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = migrationsFor("mysql")
	assert.Error(t, err)
}

func TestApplication_ServeEndToEnd(t *testing.T) {
	cfg, err := config.Load(writeConfig(t))
	require.NoError(t, err)

	_, log := logger.NewTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, cfg, log)
	require.NoError(t, err)
	defer app.cleanup()

	require.NoError(t, runMigrations(ctx, app.db, cfg.Database.Driver, "up", log))
	require.NoError(t, sqlite.NewQuestionStore(app.db, log).Insert(ctx,
		practice.Item{ID: "q1", Domain: "security", Difficulty: domain.DifficultyEasy, Concept: "tls"},
		practice.Item{ID: "q2", Domain: "security", Difficulty: domain.DifficultyMedium, Concept: "tls"},
		practice.Item{ID: "q3", Domain: "networking", Difficulty: domain.DifficultyHard, Concept: "dns"},
	))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, listener) }()

	userID := uuid.New()
	token, err := app.jwtService.GenerateToken(ctx, userID)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	base := "http://" + listener.Addr().String()
	call := func(method, path string, body any, out any) int {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequestWithContext(ctx, method, base+path, &buf)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		if out != nil && resp.StatusCode < 300 {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		}
		return resp.StatusCode
	}

	var created domain.ReviewState
	status := call(http.MethodPost, "/api/items", map[string]string{
		"content_id": "card-tls-1",
		"type":       "flashcard",
		"concept":    "tls",
		"module_id":  "security",
	}, &created)
	require.Equal(t, http.StatusCreated, status)

	var counts queue.Counts
	require.Equal(t, http.StatusOK, call(http.MethodGet, "/api/queue/counts", nil, &counts))
	assert.Equal(t, 1, counts.Flashcards)

	require.Equal(t, http.StatusOK,
		call(http.MethodPost, "/api/items/"+created.ItemID+"/ratings", map[string]any{"rating": "good"}, nil))

	require.Equal(t, http.StatusOK, call(http.MethodGet, "/api/queue/counts", nil, &counts))
	assert.Zero(t, counts.Total)

	assert.Equal(t, http.StatusNotFound,
		call(http.MethodPost, "/api/items/"+uuid.NewString()+"/ratings", map[string]any{"rating": "good"}, nil))

	var sample struct {
		Items []practice.Item `json:"items"`
	}
	require.Equal(t, http.StatusOK,
		call(http.MethodPost, "/api/practice/sample", map[string]any{"target_count": 2}, &sample))
	assert.LessOrEqual(t, len(sample.Items), 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
