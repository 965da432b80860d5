package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/BlockPack/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for exporting and restoring all
// application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Config    model.AppConfig      `json:"config"`
	Profiles  []model.GCodeProfile `json:"profiles,omitempty"`
	Runs      []RunRecord          `json:"runs,omitempty"`
}

// CollectBackup gathers config, custom profiles and, when store is not nil,
// the whole run history.
func CollectBackup(ctx context.Context, config model.AppConfig, profiles []model.GCodeProfile, store Store) (BackupData, error) {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Profiles:  profiles,
	}
	if store != nil {
		runs, err := store.ListRuns(ctx, "", 0)
		if err != nil {
			return BackupData{}, fmt.Errorf("failed to list runs: %w", err)
		}
		backup.Runs = runs
	}
	return backup, nil
}

// ExportAllData writes a backup to exportPath as JSON.
func ExportAllData(exportPath string, backup BackupData) error {
	if backup.Version == "" {
		backup.Version = BackupVersion
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller applies its contents.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProblems == nil {
		backup.Config.RecentProblems = []string{}
	}
	return backup, nil
}

// RestoreRuns saves every run of backup into store, returning how many were
// written.
func RestoreRuns(ctx context.Context, backup BackupData, store Store) (int, error) {
	for i, r := range backup.Runs {
		if err := store.SaveRun(ctx, r); err != nil {
			return i, err
		}
	}
	return len(backup.Runs), nil
}
