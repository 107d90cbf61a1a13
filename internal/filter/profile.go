package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FilterProfile holds the per-kind minimum thresholds and the daily
// action quota. Immutable once loaded.
type FilterProfile struct {
	Name                string  `json:"name"`
	MinLiquiditySol     float64 `json:"min_liquidity_sol"`     // lp_add: minimum SOL added
	MinLiquidityUSD     float64 `json:"min_liquidity_usd"`     // lp_add: alternative USD minimum
	MinRemovePct        float64 `json:"min_remove_pct"`        // lp_remove: minimum % of baseline removed
	MinVolumeMultiplier float64 `json:"min_volume_multiplier"` // volume_spike: minimum baseline multiple
	DailyActionQuota    int     `json:"daily_action_quota"`
}

// Built-in profile names.
const (
	ProfileConservative = "conservative"
	ProfileBalanced     = "balanced"
	ProfileAggressive   = "aggressive"
	ProfileDegensOnly   = "degens_only"
)

// builtinProfiles are the stock risk profiles, strictest first.
var builtinProfiles = map[string]FilterProfile{
	ProfileConservative: {
		Name:                ProfileConservative,
		MinLiquiditySol:     2000,
		MinLiquidityUSD:     300_000,
		MinRemovePct:        70,
		MinVolumeMultiplier: 5,
		DailyActionQuota:    1,
	},
	ProfileBalanced: {
		Name:                ProfileBalanced,
		MinLiquiditySol:     500,
		MinLiquidityUSD:     50_000,
		MinRemovePct:        50,
		MinVolumeMultiplier: 3,
		DailyActionQuota:    2,
	},
	ProfileAggressive: {
		Name:                ProfileAggressive,
		MinLiquiditySol:     100,
		MinLiquidityUSD:     5_000,
		MinRemovePct:        30,
		MinVolumeMultiplier: 2,
		DailyActionQuota:    5,
	},
	ProfileDegensOnly: {
		Name:                ProfileDegensOnly,
		MinLiquiditySol:     50,
		MinLiquidityUSD:     1_000,
		MinRemovePct:        20,
		MinVolumeMultiplier: 1.5,
		DailyActionQuota:    10,
	},
}

// BuiltinProfile returns a copy of the named built-in profile.
func BuiltinProfile(name string) (*FilterProfile, error) {
	p, ok := builtinProfiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return &p, nil
}

// BuiltinProfileNames lists the built-in profiles, strictest first.
func BuiltinProfileNames() []string {
	return []string{ProfileConservative, ProfileBalanced, ProfileAggressive, ProfileDegensOnly}
}

// LoadProfile reads a custom profile document from a JSON file.
func LoadProfile(path string) (*FilterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter profile: %w", err)
	}

	var p FilterProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse filter profile %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("filter profile %s: %w", path, err)
	}
	return &p, nil
}

// Validate checks the profile for unusable values.
func (p *FilterProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.MinLiquiditySol < 0 || p.MinLiquidityUSD < 0 {
		return fmt.Errorf("liquidity minimums must not be negative")
	}
	if p.MinRemovePct < 0 || p.MinRemovePct > 100 {
		return fmt.Errorf("min_remove_pct must be within [0, 100]")
	}
	if p.MinVolumeMultiplier < 1 {
		return fmt.Errorf("min_volume_multiplier must be at least 1")
	}
	if p.DailyActionQuota < 0 {
		return fmt.Errorf("daily_action_quota must not be negative")
	}
	return nil
}

// ActiveProfileRecord is the persisted selection of the current
// profile and when it was switched, used by the guardrail cooldown.
type ActiveProfileRecord struct {
	Name       string    `json:"name"`
	SwitchedAt time.Time `json:"switched_at"`
}

// LoadActiveProfile reads the active-profile record. A missing file
// yields the balanced default with a zero switch time, so a fresh
// install can switch immediately.
func LoadActiveProfile(path string) (ActiveProfileRecord, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ActiveProfileRecord{Name: ProfileBalanced}, nil
	}
	if err != nil {
		return ActiveProfileRecord{}, fmt.Errorf("read active profile record: %w", err)
	}

	var rec ActiveProfileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ActiveProfileRecord{}, fmt.Errorf("parse active profile record %s: %w", path, err)
	}
	return rec, nil
}

// SaveActiveProfile writes the active-profile record atomically.
func SaveActiveProfile(path string, rec ActiveProfileRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active profile record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write active profile record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace active profile record: %w", err)
	}
	return nil
}
