package domain

// Alert is the persisted decision record for a liquidity event that
// reached the alert boundary. Corresponds to alerts table in PostgreSQL.
// Never mutated after creation; a corrected decision is a new Alert.
type Alert struct {
	AlertID        string  // deterministic SHA256 id, see idhash.ComputeAlertID
	EventID        string  // FK to liquidity_events
	Pool           string  // pool account address
	Pair           string  // "BASE/QUOTE" label at decision time
	Kind           string  // event kind
	Magnitude      float64 // SOL added, pct removed, or spike multiplier
	Passed         bool    // early-stage checks passed
	Dispatched     bool    // forwarded to the notifier
	QuotaExhausted bool    // daily action quota was exhausted at decision time
	Priority       string  // "high" | "medium" | "low" | ""
	Reason         string  // reject/hold reason, empty when accepted
	CreatedAt      int64   // decision timestamp (ms), derived from block time
}

// Alert priority tiers derived from pair age.
const (
	PriorityHigh   = "high"   // pair younger than 30 minutes
	PriorityMedium = "medium" // 30 minutes to 2 hours
	PriorityLow    = "low"    // 2 to 24 hours
)
