package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linnemanlabs/go-core/log"
	"github.com/sony/gobreaker/v2"

	"github.com/linnemanlabs/claimgate/internal/claim"
	"github.com/linnemanlabs/claimgate/internal/llm"
)

const advisorSystemPrompt = `You are a claims review assistant. You analyze verified claim data and provide qualitative observations that may be relevant for adjuster review.

RULES:
1. Provide observations only, not recommendations or decisions.
2. Never assign risk levels, fraud scores, or approval recommendations.
3. Focus on language clarity, narrative consistency, and completeness.
4. Describe potential concerns factually, without judgment.
5. Return observations as structured JSON.
6. If no concerns are observed, return an empty observations array.`

const advisorUserPromptTemplate = `Analyze the following verified claim data and provide qualitative observations.

Claim Data:
%s

Return a JSON object with this structure:
{
  "observations": [
    {
      "category": "language_ambiguity | unusual_phrasing | narrative_concern | completeness_concern",
      "description": "Factual description of the observation",
      "relevantField": "Field name where the observation was made"
    }
  ]
}

Remember: observations only. Do not make recommendations or assign risk levels.`

// Advisor runs the advisory AI pass behind a circuit breaker. Every
// failure mode, from transport errors to an open breaker to unparseable
// output, degrades to an empty observation list. The rules alone always
// produce a valid assessment.
type Advisor struct {
	completer llm.Completer
	breaker   *gobreaker.CircuitBreaker[*llm.Completion]
	logger    log.Logger
}

// NewAdvisor creates an advisor around the given completer.
func NewAdvisor(completer llm.Completer, logger log.Logger) *Advisor {
	if logger == nil {
		logger = log.Nop()
	}
	a := &Advisor{completer: completer, logger: logger}
	a.breaker = gobreaker.NewCircuitBreaker[*llm.Completion](gobreaker.Settings{
		Name:        "risk-advisor",
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "advisor breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return a
}

// Observations asks the model for qualitative remarks about the verified
// data. The returned model name is empty when the pass was skipped or
// failed.
func (a *Advisor) Observations(ctx context.Context, c *claim.Claim, fields map[string]string) ([]Observation, string) {
	if a.completer == nil {
		return nil, ""
	}

	payload, err := json.MarshalIndent(struct {
		LossDescription string            `json:"lossDescription"`
		VerifiedFields  map[string]string `json:"verifiedFields"`
	}{c.LossDescription, fields}, "", "  ")
	if err != nil {
		a.logger.Error(ctx, err, "advisor payload marshal failed", "claim_id", c.ID)
		return nil, ""
	}

	completion, err := a.breaker.Execute(func() (*llm.Completion, error) {
		return a.completer.Complete(ctx, advisorSystemPrompt, fmt.Sprintf(advisorUserPromptTemplate, payload))
	})
	if err != nil {
		a.logger.Warn(ctx, "advisory pass unavailable, continuing with rules only",
			"claim_id", c.ID, "error", err.Error())
		return nil, ""
	}

	observations, err := parseObservations(completion.Content)
	if err != nil {
		a.logger.Warn(ctx, "advisory response unparseable, continuing with rules only",
			"claim_id", c.ID, "error", err.Error())
		return nil, completion.Model
	}
	return observations, completion.Model
}

func parseObservations(content string) ([]Observation, error) {
	raw := strings.TrimSpace(content)
	if i := strings.Index(raw, "{"); i > 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var decoded struct {
		Observations []struct {
			Category      string `json:"category"`
			Description   string `json:"description"`
			RelevantField string `json:"relevantField"`
		} `json:"observations"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("parse advisory response: %w", err)
	}

	observations := make([]Observation, 0, len(decoded.Observations))
	for _, o := range decoded.Observations {
		if o.Category == "" && o.Description == "" {
			continue
		}
		observations = append(observations, Observation{
			Category:      o.Category,
			Description:   o.Description,
			RelevantField: o.RelevantField,
		})
	}
	return observations, nil
}
