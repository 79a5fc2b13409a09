package model

// VerdictStatus is the structured status emitted by the external
// qualitative-judgment collaborator. It is untrusted, bounded-influence
// input: the integrator caps how far any status can move the score.
type VerdictStatus string

const (
	StatusStrongPass  VerdictStatus = "STRONG_PASS"
	StatusSoftPass    VerdictStatus = "SOFT_PASS"
	StatusMonitorOnly VerdictStatus = "MONITOR_ONLY"
	StatusAvoid       VerdictStatus = "AVOID"
)

// Valid reports whether the status is a member of the closed set.
func (s VerdictStatus) Valid() bool {
	switch s {
	case StatusStrongPass, StatusSoftPass, StatusMonitorOnly, StatusAvoid:
		return true
	}
	return false
}

// QualitativeVerdict is the structured triple consumed from the external
// judgment provider. Free-text fields (thesis, bull/bear prose) are not
// read by the engine.
type QualitativeVerdict struct {
	Status     VerdictStatus `json:"status"`
	Tier       string        `json:"tier"`
	Conviction float64       `json:"conviction"` // 0-100
}

// NeutralVerdict is the conservative default substituted when the
// judgment provider fails, times out, or returns a malformed response.
func NeutralVerdict() QualitativeVerdict {
	return QualitativeVerdict{Status: StatusMonitorOnly, Conviction: 0}
}

// DataQuality marks whether a data point is genuinely sourced, estimated,
// or unavailable. Unavailable fields still carry a zero value so reports
// serialize without null/NaN. The zero value reads as unavailable:
// scorers must gate on Known, never on != QualityUnavailable.
type DataQuality string

const (
	QualityReal        DataQuality = "real"
	QualityEstimated   DataQuality = "estimated"
	QualityUnavailable DataQuality = "unavailable"
)

// Known reports whether the data point was actually sourced. An unset
// quality marker means the value was never populated and must not score.
func (q DataQuality) Known() bool {
	return q == QualityReal || q == QualityEstimated
}

// AsymmetryLevel grades the asymmetry of outcomes for the catalysts
// pillar, sourced from the qualitative collaborator.
type AsymmetryLevel string

const (
	AsymmetryHigh    AsymmetryLevel = "high"
	AsymmetryMedium  AsymmetryLevel = "medium"
	AsymmetryLow     AsymmetryLevel = "low"
	AsymmetryUnknown AsymmetryLevel = "unknown"
)

// InsiderBuy is a single open-market insider purchase.
type InsiderBuy struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD
}

// QualitativeInputs carries the non-statement signals consumed by the
// alignment, quality, and catalysts pillars. Fields the upstream fetchers
// could not source are marked via their DataQuality companion.
type QualitativeInputs struct {
	FounderLed            bool           `json:"founder_led"`
	InsiderOwnershipPct   float64        `json:"insider_ownership_pct"`
	InsiderBuys           []InsiderBuy   `json:"insider_buys,omitempty"`
	InstitutionalPct      float64        `json:"institutional_pct"`
	InstitutionalQuality  DataQuality    `json:"institutional_quality"`
	ShortInterestPct      float64        `json:"short_interest_pct"`
	ShortInterestQuality  DataQuality    `json:"short_interest_quality"`
	NetDollarRetentionPct float64        `json:"net_dollar_retention_pct"`
	RecurringRevenue      bool           `json:"recurring_revenue"`
	TAMPenetrationPct     float64        `json:"tam_penetration_pct"`
	TAMQuality            DataQuality    `json:"tam_quality"`
	CatalystCount         int            `json:"catalyst_count"`
	Asymmetry             AsymmetryLevel `json:"asymmetry"`
}
