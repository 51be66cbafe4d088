// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for every configuration section.

package config

func applyDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("font", Section{
		"name":      "",
		"wide_name": "",
		"size":      12.0,
	})
	cfg.RegisterDefaults("cursor", Section{
		// Fallback blink timings for modes that omit them. Zero keeps the
		// cursor steady, matching the editor default.
		"blink_on_ms":   0,
		"blink_off_ms":  0,
		"blink_wait_ms": 0,
	})
	cfg.RegisterDefaults("render", Section{
		"fps_cap":              60,
		"invalidate_window_ms": 20,
		"ambiguous_wide":       false,
	})
	cfg.RegisterDefaults("bell", Section{
		"audible":      true,
		"volume":       0.4,
		"frequency_hz": 880,
	})
	cfg.RegisterDefaults("session", Section{
		"db_path":          "",
		"autosave":         true,
		"autosave_wait_ms": 1000,
	})
}
