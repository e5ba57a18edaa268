package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_SortsByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "010_later.sql", "SELECT 10;")
	writeFile(t, dir, "001_init.sql", "SELECT 1;")
	writeFile(t, dir, "002_more.sql", "SELECT 2;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 || migs[2].Version != 10 {
		t.Errorf("migrations not sorted: %v %v %v", migs[0].Version, migs[1].Version, migs[2].Version)
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_init.sql", "SELECT 1;")
	writeFile(t, dir, "readme.md", "not a migration")
	writeFile(t, dir, "notes_001.sql", "SELECT 0;")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migs) != 1 {
		t.Errorf("expected 1 migration, got %d", len(migs))
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, filepath.Join(t.TempDir(), "missing"))
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil transaction for empty context")
	}
}
