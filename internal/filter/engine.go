package filter

import (
	"fmt"
	"math"
	"time"

	"lp-radar/internal/domain"
	"lp-radar/internal/signals"
)

// Verdict outcomes.
const (
	OutcomeAccepted            = "accepted"
	OutcomeRejected            = "rejected"
	OutcomePendingConfirmation = "pending_confirmation"
)

// Priority tier boundaries on pair age.
const (
	highPriorityAge   = 30 * time.Minute
	mediumPriorityAge = 2 * time.Hour
)

// Enrichment carries the best-effort market context for an event.
// Each field has a Known flag; unknown fields degrade individual
// checks instead of failing the evaluation.
type Enrichment struct {
	PairAge      time.Duration
	PairAgeKnown bool

	MarketCapUSD      float64
	MarketCapUSDKnown bool

	BaselineSol      float64
	BaselineSolKnown bool

	SolPriceUSD float64
	BaseSymbol  string
}

// Verdict is the outcome of evaluating one event against the active
// template and profile.
type Verdict struct {
	Outcome   string
	Reason    string
	Priority  string
	Magnitude float64
}

func (v Verdict) Accepted() bool {
	return v.Outcome == OutcomeAccepted
}

// Engine evaluates events against an immutable template and the
// currently active profile. The evaluation itself is pure; callers
// own enrichment and window state.
type Engine struct {
	template *FilterTemplate
	profile  *FilterProfile
}

// NewEngine creates a filter engine. Nil template or profile falls
// back to the built-in defaults.
func NewEngine(template *FilterTemplate, profile *FilterProfile) *Engine {
	if template == nil {
		template = DefaultTemplate()
	}
	if profile == nil {
		p := builtinProfiles[ProfileBalanced]
		profile = &p
	}
	return &Engine{template: template, profile: profile}
}

// Profile returns the active profile.
func (e *Engine) Profile() *FilterProfile { return e.profile }

// Template returns the hard-reject template.
func (e *Engine) Template() *FilterTemplate { return e.template }

// Evaluate runs the layered checks in fixed order: hard rejects,
// profile magnitude thresholds, then the multi-signal gate. Hard
// rejects dominate regardless of magnitude.
func (e *Engine) Evaluate(event *domain.LiquidityEvent, enr Enrichment, window signals.Status) Verdict {
	if reason, rejected := e.hardReject(event, enr); rejected {
		return Verdict{Outcome: OutcomeRejected, Reason: reason}
	}

	magnitude, reason, passed := e.profileCheck(event, enr)
	if !passed {
		return Verdict{Outcome: OutcomeRejected, Reason: reason, Magnitude: magnitude}
	}

	// New pools are inherently corroborated by their own creation;
	// established pools need a second signal kind inside the window.
	if e.needsCorroboration(event) && window != signals.StatusConfirmed {
		return Verdict{
			Outcome:   OutcomePendingConfirmation,
			Reason:    "awaiting corroborating signal",
			Magnitude: magnitude,
		}
	}

	return Verdict{
		Outcome:   OutcomeAccepted,
		Reason:    reason,
		Priority:  priorityFor(enr),
		Magnitude: magnitude,
	}
}

// hardReject applies the template's non-negotiable exclusions.
func (e *Engine) hardReject(event *domain.LiquidityEvent, enr Enrichment) (string, bool) {
	symbol := event.BaseSymbol
	if symbol == "" {
		symbol = enr.BaseSymbol
	}
	if e.template.IsLegacySymbol(symbol) {
		return fmt.Sprintf("legacy token %s excluded", symbol), true
	}

	if enr.PairAgeKnown && enr.PairAge > e.template.MaxPairAge() {
		return fmt.Sprintf("pair age %.1fh exceeds %.1fh cap",
			enr.PairAge.Hours(), e.template.MaxPairAgeHours), true
	}

	if enr.MarketCapUSDKnown && enr.MarketCapUSD >= e.template.HardRejectMarketCapUSD {
		return fmt.Sprintf("market cap $%.0f at or above $%.0f cap",
			enr.MarketCapUSD, e.template.HardRejectMarketCapUSD), true
	}

	if enr.BaselineSolKnown && enr.BaselineSol > e.template.HardRejectBaselineSol {
		return fmt.Sprintf("baseline liquidity %.1f SOL exceeds %.1f SOL cap",
			enr.BaselineSol, e.template.HardRejectBaselineSol), true
	}

	return "", false
}

// profileCheck applies the per-kind magnitude thresholds of the
// active profile. Returns the computed magnitude alongside the
// pass/fail reason.
func (e *Engine) profileCheck(event *domain.LiquidityEvent, enr Enrichment) (float64, string, bool) {
	switch event.Kind {
	case domain.EventLPAdd:
		solAdded := event.SolAmount()
		if solAdded >= e.profile.MinLiquiditySol {
			return solAdded, fmt.Sprintf("%.1f SOL added", solAdded), true
		}
		if enr.SolPriceUSD > 0 {
			usd := solAdded * enr.SolPriceUSD
			if usd >= e.profile.MinLiquidityUSD {
				return solAdded, fmt.Sprintf("$%.0f added", usd), true
			}
		}
		return solAdded, fmt.Sprintf("%.1f SOL below %.1f SOL minimum",
			solAdded, e.profile.MinLiquiditySol), false

	case domain.EventLPRemove:
		removed := math.Abs(event.SolAmount())
		if !enr.BaselineSolKnown || enr.BaselineSol <= 0 {
			// Unknown baseline: a removal we cannot size against the
			// pool is still worth surfacing.
			return removed, fmt.Sprintf("%.1f SOL removed, baseline unknown", removed), true
		}
		pct := removed / enr.BaselineSol * 100
		if pct >= e.profile.MinRemovePct {
			return pct, fmt.Sprintf("%.0f%% of liquidity removed", pct), true
		}
		return pct, fmt.Sprintf("%.0f%% removed below %.0f%% minimum",
			pct, e.profile.MinRemovePct), false

	case domain.EventVolumeSpike:
		if event.SpikeMultiplier >= e.profile.MinVolumeMultiplier {
			return event.SpikeMultiplier,
				fmt.Sprintf("%.1fx volume spike", event.SpikeMultiplier), true
		}
		return event.SpikeMultiplier, fmt.Sprintf("%.1fx spike below %.1fx minimum",
			event.SpikeMultiplier, e.profile.MinVolumeMultiplier), false

	default:
		return 0, fmt.Sprintf("unknown event kind %q", event.Kind), false
	}
}

// needsCorroboration reports whether the event kind must be backed by
// a second signal kind in the pool's window. Removals always alert on
// their own; new-pool events bypass the gate.
func (e *Engine) needsCorroboration(event *domain.LiquidityEvent) bool {
	if event.NewPool {
		return false
	}
	return event.Kind == domain.EventLPAdd || event.Kind == domain.EventVolumeSpike
}

// priorityFor tiers an accepted event by pair age. Unknown age lands
// in the lowest tier.
func priorityFor(enr Enrichment) string {
	if !enr.PairAgeKnown {
		return domain.PriorityLow
	}
	switch {
	case enr.PairAge < highPriorityAge:
		return domain.PriorityHigh
	case enr.PairAge < mediumPriorityAge:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
