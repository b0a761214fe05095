package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/race-photo-sync/internal/config"
)

// TestConfigEnv names the config file used by integration tests
const TestConfigEnv = "PHOTO_SYNC_TEST_CONFIG"

// SetupTestDB connects to the integration database and applies the schema.
// The test is skipped when PHOTO_SYNC_TEST_CONFIG is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigEnv)
	if path == "" {
		t.Skipf("Integration test - set %s to a config file with a test database", TestConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
