package board

// Tier buckets elapsed waiting time for styling and aggregate counts.
type Tier string

const (
	TierFresh    Tier = "fresh"
	TierWaiting  Tier = "waiting"
	TierUrgent   Tier = "urgent"
	TierCritical Tier = "critical"
)

// Thresholds holds the tier boundaries in minutes. Each boundary is
// inclusive: elapsed >= Critical is critical, and so on downwards.
type Thresholds struct {
	Waiting  int
	Urgent   int
	Critical int
	// Overdue is the coarser pickup-board boundary for the very-urgent
	// flag, independent of the tier ladder.
	Overdue int
}

// DefaultThresholds match the shipped kitchen display configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Waiting:  5,
		Urgent:   10,
		Critical: 15,
		Overdue:  20,
	}
}

// Classify maps elapsed minutes to a tier.
func (t Thresholds) Classify(elapsedMinutes int) Tier {
	switch {
	case elapsedMinutes >= t.Critical:
		return TierCritical
	case elapsedMinutes >= t.Urgent:
		return TierUrgent
	case elapsedMinutes >= t.Waiting:
		return TierWaiting
	default:
		return TierFresh
	}
}

// IsOverdue reports whether elapsed minutes crossed the pickup boundary.
func (t Thresholds) IsOverdue(elapsedMinutes int) bool {
	return elapsedMinutes >= t.Overdue
}

// Label converts a tier to a human-readable badge text.
func (tier Tier) Label() string {
	switch tier {
	case TierFresh:
		return "Fresh"
	case TierWaiting:
		return "Waiting"
	case TierUrgent:
		return "Urgent"
	case TierCritical:
		return "Critical"
	default:
		return string(tier)
	}
}

// Class returns the CSS class for a tier badge.
func (tier Tier) Class() string {
	switch tier {
	case TierFresh:
		return "urgency-fresh"
	case TierWaiting:
		return "urgency-waiting"
	case TierUrgent:
		return "urgency-urgent"
	case TierCritical:
		return "urgency-critical"
	default:
		return ""
	}
}
