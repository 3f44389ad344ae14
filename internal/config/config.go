// Package config loads engine and benchmark profiles from TOML into a
// value the caller owns, rather than a package-level global, since this
// engine's search core has no process-wide state to configure.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Profile bundles every knob a long-running harness or CLI would want to
// tune without recompiling: difficulty depth/time policy, root-policy
// constants, and logging verbosity.
type Profile struct {
	Difficulty DifficultyProfile `toml:"difficulty"`
	RootPolicy RootPolicyProfile `toml:"root_policy"`
	Log        LogProfile        `toml:"log"`
}

// DifficultyProfile holds the depth/time budget for each difficulty tier.
type DifficultyProfile struct {
	EasyDepth   int `toml:"easy_depth"`
	MediumDepth int `toml:"medium_depth"`
	HardDepth   int `toml:"hard_depth"`
	MaxDepth    int `toml:"max_depth"`
	MaxTimeMs   int `toml:"max_time_ms"`
}

// RootPolicyProfile holds the tunable constants behind the anti-repetition
// root policy.
type RootPolicyProfile struct {
	TopWindow          int `toml:"top_window"`
	FairnessWindow     int `toml:"fairness_window"`
	RepeatBanWindowCp  int `toml:"repeat_ban_window_hard_cp"`
	RepeatBanWindowMax int `toml:"repeat_ban_window_max_cp"`
	ContemptHardCp     int `toml:"contempt_hard_cp"`
	ContemptMaxCp      int `toml:"contempt_max_cp"`
	DrawHoldThreshold  int `toml:"draw_hold_threshold"`
	TwoPlyPenalty      int `toml:"two_ply_penalty"`
	TwoPlyTopN         int `toml:"two_ply_top_n"`
}

// LogProfile configures internal/logging's verbosity.
type LogProfile struct {
	Level string `toml:"level"`
}

// Default returns the engine's built-in tuning, used whenever no TOML file
// overrides a field.
func Default() *Profile {
	return &Profile{
		Difficulty: DifficultyProfile{
			EasyDepth:   1,
			MediumDepth: 2,
			HardDepth:   3,
			MaxDepth:    7,
			MaxTimeMs:   10000,
		},
		RootPolicy: RootPolicyProfile{
			TopWindow:          10,
			FairnessWindow:     25,
			RepeatBanWindowCp:  60,
			RepeatBanWindowMax: 100,
			ContemptHardCp:     10,
			ContemptMaxCp:      20,
			DrawHoldThreshold:  -80,
			TwoPlyPenalty:      20,
			TwoPlyTopN:         6,
		},
		Log: LogProfile{Level: "info"},
	}
}

// Load reads path as TOML into a copy of Default, so a profile file only
// needs to specify the fields it wants to override.
func Load(path string) (*Profile, error) {
	profile := Default()
	if _, err := toml.DecodeFile(path, profile); err != nil {
		return nil, fmt.Errorf("config: failed to load %q: %w", path, err)
	}
	return profile, nil
}
