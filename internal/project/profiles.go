package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/BlockPack/internal/model"
)

// DefaultProfilesPath returns the file holding user-defined GCode profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles writes custom profiles to path as JSON.
func SaveCustomProfiles(path string, profiles []model.GCodeProfile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles reads custom profiles from path. A missing file yields
// an empty list.
func LoadCustomProfiles(path string) ([]model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.GCodeProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.GCodeProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, model.WrapError(model.ErrCodeInvalidConfig, err, "failed to parse %s", path)
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// RegisterCustomProfiles loads the profiles at path and makes them available
// through model.GetProfile. Profiles named like a built-in are skipped.
func RegisterCustomProfiles(path string) ([]model.GCodeProfile, error) {
	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		return nil, err
	}

	builtIn := make(map[string]bool, len(model.GCodeProfiles))
	for _, p := range model.GCodeProfiles {
		builtIn[p.Name] = true
	}
	var accepted []model.GCodeProfile
	for _, p := range profiles {
		if p.Name == "" || builtIn[p.Name] {
			continue
		}
		accepted = append(accepted, p)
	}
	model.CustomProfiles = accepted
	return accepted, nil
}

// ExportProfile writes a single profile to path for sharing.
func ExportProfile(path string, profile model.GCodeProfile) error {
	profile.IsBuiltIn = false
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile reads a single profile from path.
func ImportProfile(path string) (model.GCodeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GCodeProfile{}, err
	}

	var profile model.GCodeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.GCodeProfile{}, model.WrapError(model.ErrCodeInvalidConfig, err, "failed to parse %s", path)
	}
	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.GCodeProfile{}, model.NewError(model.ErrCodeInvalidConfig, "imported profile has no name")
	}
	if profile.RapidMove == "" || profile.FeedMove == "" {
		return model.GCodeProfile{}, model.NewError(model.ErrCodeInvalidConfig, "profile %q needs rapid and feed move commands", profile.Name)
	}
	return profile, nil
}

// ProfileSummary is a one-line description used by listings.
func ProfileSummary(p model.GCodeProfile) string {
	kind := "router"
	if p.IsPen() {
		kind = "pen"
	}
	origin := "custom"
	if p.IsBuiltIn {
		origin = "built-in"
	}
	return fmt.Sprintf("%s (%s, %s): %s", p.Name, kind, origin, p.Description)
}
