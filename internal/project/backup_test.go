package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/BlockPack/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultFeedRate = 2000.0
	cfg.Theme = "dark"

	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatal(err)
	}
	run := testRun("C1_1", 0.75, 0)
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	backup, err := CollectBackup(ctx, cfg, testProfiles(), store)
	if err != nil {
		t.Fatalf("CollectBackup failed: %v", err)
	}
	if err := ExportAllData(path, backup); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	restored, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if restored.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, restored.Version)
	}
	if restored.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if restored.Config.DefaultFeedRate != 2000.0 {
		t.Errorf("expected DefaultFeedRate=2000.0, got %f", restored.Config.DefaultFeedRate)
	}
	if len(restored.Profiles) != 2 {
		t.Errorf("expected 2 profiles, got %d", len(restored.Profiles))
	}
	if len(restored.Runs) != 1 || restored.Runs[0].ID != run.ID {
		t.Fatalf("expected run %s in backup, got %+v", run.ID, restored.Runs)
	}

	target := NewMemoryStore()
	if err := target.Init(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := RestoreRuns(ctx, restored, target)
	if err != nil || n != 1 {
		t.Fatalf("RestoreRuns: n=%d err=%v", n, err)
	}
	got, ok, err := target.GetRun(ctx, run.ID)
	if err != nil || !ok {
		t.Fatalf("restored run missing: %v", err)
	}
	if got.Efficiency != 0.75 {
		t.Errorf("expected efficiency 0.75, got %f", got.Efficiency)
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(bad); err == nil {
		t.Fatal("expected error for invalid JSON")
	}

	noVersion := filepath.Join(dir, "noversion.json")
	if err := os.WriteFile(noVersion, []byte(`{"config":{}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(noVersion); err == nil {
		t.Fatal("expected error for missing version")
	}
}
