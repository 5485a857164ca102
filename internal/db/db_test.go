package db

import (
	"io/fs"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/diewo77/proposal-desk/internal/config"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "drafts.db")}
	db, err := Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Migrate(db, cfg, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !db.Migrator().HasTable("drafts") {
		t.Fatal("drafts table missing")
	}
	// Running twice is harmless.
	if err := Migrate(db, cfg, false); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	ups, _ := fs.Glob(migrationFiles, "migrations/*.up.sql")
	downs, _ := fs.Glob(migrationFiles, "migrations/*.down.sql")
	if len(ups) == 0 || len(ups) != len(downs) {
		t.Fatalf("up=%v down=%v", ups, downs)
	}
}
