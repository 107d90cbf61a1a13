// Package filter applies layered accept/reject policy to enriched
// liquidity events: hard-reject rules from an immutable template,
// magnitude thresholds from the active profile, and the multi-signal
// confirmation gate.
package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// FilterTemplate is the immutable hard-reject configuration.
// Loaded once per process lifetime; swapped only by whole reference,
// never mutated while evaluations may be reading it.
type FilterTemplate struct {
	Name                    string   `json:"name"`
	MaxPairAgeHours         float64  `json:"max_pair_age_hours"`
	PreferredPairAgeMinutes float64  `json:"preferred_pair_age_minutes"`
	HardRejectMarketCapUSD  float64  `json:"hard_reject_market_cap_usd"`
	HardRejectBaselineSol   float64  `json:"hard_reject_baseline_sol"`
	LegacySymbols           []string `json:"legacy_symbols"`
}

// Default early-stage template values.
const (
	DefaultMaxPairAgeHours        = 24
	DefaultPreferredAgeMinutes    = 30
	DefaultHardRejectMarketCapUSD = 20_000_000
	DefaultHardRejectBaselineSol  = 20
)

// defaultLegacySymbols are established meme tokens whose pools are
// never early-stage opportunities regardless of magnitude.
var defaultLegacySymbols = []string{
	"BONK", "WIF", "DOGE", "SHIB", "PEPE", "FLOKI",
	"BABYDOGE", "MOON", "SAMO", "KING", "MONKY",
}

// DefaultTemplate returns the built-in early-stage template.
func DefaultTemplate() *FilterTemplate {
	legacy := make([]string, len(defaultLegacySymbols))
	copy(legacy, defaultLegacySymbols)

	return &FilterTemplate{
		Name:                    "early_stage",
		MaxPairAgeHours:         DefaultMaxPairAgeHours,
		PreferredPairAgeMinutes: DefaultPreferredAgeMinutes,
		HardRejectMarketCapUSD:  DefaultHardRejectMarketCapUSD,
		HardRejectBaselineSol:   DefaultHardRejectBaselineSol,
		LegacySymbols:           legacy,
	}
}

// LoadTemplate reads a template document from a JSON file.
func LoadTemplate(path string) (*FilterTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter template: %w", err)
	}

	var tpl FilterTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse filter template %s: %w", path, err)
	}

	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("filter template %s: %w", path, err)
	}
	return &tpl, nil
}

// Validate checks the template for unusable values.
func (t *FilterTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.MaxPairAgeHours <= 0 {
		return fmt.Errorf("max_pair_age_hours must be positive")
	}
	if t.HardRejectMarketCapUSD <= 0 {
		return fmt.Errorf("hard_reject_market_cap_usd must be positive")
	}
	if t.HardRejectBaselineSol <= 0 {
		return fmt.Errorf("hard_reject_baseline_sol must be positive")
	}
	return nil
}

// MaxPairAge returns the hard-reject age cap as a duration.
func (t *FilterTemplate) MaxPairAge() time.Duration {
	return time.Duration(t.MaxPairAgeHours * float64(time.Hour))
}

// IsLegacySymbol reports whether the base symbol is in the exclusion
// set. Matching is case-insensitive.
func (t *FilterTemplate) IsLegacySymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	upper := strings.ToUpper(symbol)
	for _, s := range t.LegacySymbols {
		if strings.ToUpper(s) == upper {
			return true
		}
	}
	return false
}
