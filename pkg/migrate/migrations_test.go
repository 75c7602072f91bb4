package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumenworks/vision-cms-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price NUMERIC(12,2) NOT NULL CHECK (price >= 0)",
		"CREATE INDEX IF NOT EXISTS idx_products_category",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("products migration missing %q", check)
		}
	}
}

func TestPendingUploadsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_pending_uploads.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pending_uploads",
		"CONSTRAINT pending_uploads_object_key_unique UNIQUE (object_key)",
		"idx_pending_uploads_created_at",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("pending_uploads migration missing %q", check)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Category Index!")
	if err != nil {
		t.Fatalf("CreateSQLMigration failed: %v", err)
	}
	if !strings.HasSuffix(path, "_add_category_index.sql") {
		t.Fatalf("unexpected filename %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration does not validate: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "not_versioned.sql"), []byte("-- +goose Up"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}
