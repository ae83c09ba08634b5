package risk

import (
	"fmt"
	"time"

	"github.com/linnemanlabs/claimgate/internal/claim"
)

// Rule names, part of the persisted signal contract.
const (
	RuleCoverageDateConsistency = "CoverageDateConsistency"
	RuleCriticalFieldPresence   = "CriticalFieldCompleteness"
	RuleDataInconsistency       = "DataInconsistencyDetection"
	RuleLossTypeCoverage        = "LossTypeCoverage"
)

// criticalFields must all be present in the verified set for the
// completeness rule to pass.
var criticalFields = []string{"lossDate", "lossLocation", "lossType", "lossDescription"}

// Inputs is everything the deterministic pass consumes. Fields maps
// verified field names to their effective values; unverified and
// rejected data never appears here.
type Inputs struct {
	Claim    *claim.Claim
	Snapshot *claim.PolicySnapshot
	Fields   map[string]string
}

// verifiedLossDate returns the parsed verified loss date, falling back
// to the claim's submitted loss date when the verified value is missing
// or unparseable. The completeness and inconsistency rules flag those
// cases separately.
func (in Inputs) verifiedLossDate() time.Time {
	if raw, ok := in.Fields["lossDate"]; ok {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			return d.UTC()
		}
	}
	return in.Claim.LossDate
}

// EvaluateRules runs every deterministic rule and returns one signal per
// rule, triggered or not. Rule order carries no meaning.
func EvaluateRules(in Inputs) []Signal {
	return []Signal{
		coverageDateConsistency(in),
		criticalFieldCompleteness(in),
		dataInconsistency(in),
		lossTypeCoverage(in),
	}
}

func coverageDateConsistency(in Inputs) Signal {
	s := Signal{RuleName: RuleCoverageDateConsistency, Severity: SeverityCritical}
	lossDate := in.verifiedLossDate()
	if in.Snapshot.WithinCoverageWindow(lossDate) {
		s.Description = "loss date falls within the policy coverage period"
		return s
	}
	s.Triggered = true
	s.Description = fmt.Sprintf("loss date %s is outside the policy coverage period %s to %s",
		lossDate.Format("2006-01-02"),
		in.Snapshot.EffectiveDate.Format("2006-01-02"),
		in.Snapshot.ExpirationDate.Format("2006-01-02"))
	return s
}

func criticalFieldCompleteness(in Inputs) Signal {
	s := Signal{RuleName: RuleCriticalFieldPresence, Severity: SeverityMajor}
	var missing []string
	for _, name := range criticalFields {
		if v, ok := in.Fields[name]; !ok || v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		s.Description = "all critical fields are present in the verified set"
		return s
	}
	s.Triggered = true
	s.Description = fmt.Sprintf("critical fields missing from the verified set: %v", missing)
	return s
}

func dataInconsistency(in Inputs) Signal {
	s := Signal{RuleName: RuleDataInconsistency, Severity: SeverityMajor}
	raw, ok := in.Fields["lossDate"]
	if !ok {
		s.Description = "no verified loss date to compare against the submission"
		return s
	}
	verified, err := time.Parse("2006-01-02", raw)
	if err != nil {
		s.Triggered = true
		s.Description = fmt.Sprintf("verified loss date %q is not a valid date", raw)
		return s
	}
	diff := verified.UTC().Sub(in.Claim.LossDate)
	if diff < 0 {
		diff = -diff
	}
	if diff <= 24*time.Hour {
		s.Description = "verified loss date matches the submitted loss date"
		return s
	}
	s.Triggered = true
	s.Description = fmt.Sprintf("verified loss date %s differs from submitted loss date %s by more than one day",
		verified.Format("2006-01-02"), in.Claim.LossDate.Format("2006-01-02"))
	return s
}

func lossTypeCoverage(in Inputs) Signal {
	s := Signal{RuleName: RuleLossTypeCoverage, Severity: SeverityCritical}
	lossType := in.Claim.LossType
	if v, ok := in.Fields["lossType"]; ok && v != "" {
		lossType = v
	}
	if in.Snapshot.Covers(lossType) {
		s.Description = fmt.Sprintf("loss type %q is covered by the policy", lossType)
		return s
	}
	s.Triggered = true
	s.Description = fmt.Sprintf("loss type %q is not among the policy's covered loss types", lossType)
	return s
}

// RuleLevel derives the rule-based risk level from triggered signals:
// any Critical or two Majors mean High, one Major or three Minors mean
// Medium, anything less is Low.
func RuleLevel(signals []Signal) Level {
	var critical, major, minor int
	for _, s := range signals {
		if !s.Triggered {
			continue
		}
		switch s.Severity {
		case SeverityCritical:
			critical++
		case SeverityMajor:
			major++
		case SeverityMinor:
			minor++
		}
	}
	switch {
	case critical >= 1 || major >= 2:
		return LevelHigh
	case major == 1 || minor >= 3:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Fuse applies the escalate-only law to the rule-based level. A High
// stays High no matter what the AI said. A Medium escalates to High on
// any narrative or completeness concern. A Low escalates to Medium when
// the AI produced three or more observations of any category.
func Fuse(ruleLevel Level, observations []Observation) Level {
	switch ruleLevel {
	case LevelHigh:
		return LevelHigh
	case LevelMedium:
		for _, o := range observations {
			if o.Category == CategoryNarrativeConcern || o.Category == CategoryCompletenessConcern {
				return LevelHigh
			}
		}
		return LevelMedium
	case LevelLow:
		if len(observations) >= 3 {
			return LevelMedium
		}
		return LevelLow
	default:
		return ruleLevel
	}
}

// Score computes the overall 0..100 score: 30 per triggered Critical,
// 15 per Major, 5 per Minor, plus 10 per observation capped at 30,
// the whole capped at 100.
func Score(signals []Signal, observations []Observation) int {
	score := 0
	for _, s := range signals {
		if !s.Triggered {
			continue
		}
		switch s.Severity {
		case SeverityCritical:
			score += 30
		case SeverityMajor:
			score += 15
		case SeverityMinor:
			score += 5
		}
	}
	obs := 10 * len(observations)
	if obs > 30 {
		obs = 30
	}
	score += obs
	if score > 100 {
		score = 100
	}
	return score
}
