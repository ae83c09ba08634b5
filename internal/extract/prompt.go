package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt and schema versions recorded on every extracted field so a
// reviewer can tell exactly which instructions produced a value.
const (
	SystemPromptVersion = "v1"
	UserPromptVersion   = "v1"
	SchemaVersion       = "v1"
)

const systemPrompt = `You are a claims intake extraction assistant. You read First-Notice-of-Loss documents and extract structured fields.

RULES:
1. Extract only information explicitly present in the document.
2. Never infer, estimate, or fabricate values.
3. Use null for any field the document does not state.
4. Dates must be formatted as YYYY-MM-DD.
5. Return a single JSON object conforming to the provided schema, with no surrounding prose.`

const userPromptTemplate = `Extract the claim fields defined by this schema from the document below.

Schema:
%s

Document:
%s

Return only the JSON object.`

// schemaJSON is the closed field schema injected into the user prompt.
// Keys here are the only field names extraction may produce.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "lossDate": {"type": ["string", "null"], "description": "Date of loss, YYYY-MM-DD"},
    "lossLocation": {"type": ["string", "null"], "description": "Where the loss occurred"},
    "lossType": {"type": ["string", "null"], "description": "Category of loss, e.g. PropertyDamage"},
    "lossDescription": {"type": ["string", "null"], "description": "Narrative of what happened"},
    "estimatedDamageAmount": {"type": ["number", "null"], "description": "Claimed damage amount"},
    "claimantName": {"type": ["string", "null"], "description": "Name of the claimant"},
    "contactPhone": {"type": ["string", "null"], "description": "Claimant phone number"}
  },
  "additionalProperties": false
}`

func buildUserPrompt(documentContent string) string {
	return fmt.Sprintf(userPromptTemplate, schemaJSON, documentContent)
}

// allowedFields is derived from schemaJSON's property set.
var allowedFields = func() map[string]struct{} {
	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		panic(fmt.Sprintf("extract: invalid embedded schema: %v", err))
	}
	set := make(map[string]struct{}, len(schema.Properties))
	for name := range schema.Properties {
		set[name] = struct{}{}
	}
	return set
}()

// parseExtraction decodes the model's JSON answer and enforces the closed
// schema: unknown keys are a hard failure, null values are dropped.
func parseExtraction(content string) (map[string]string, error) {
	raw := strings.TrimSpace(content)

	// Models occasionally wrap JSON in a code fence despite instructions.
	if i := strings.Index(raw, "{"); i > 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	values := make(map[string]string, len(decoded))
	for name, v := range decoded {
		if _, ok := allowedFields[name]; !ok {
			return nil, fmt.Errorf("extraction response does not conform to schema: unknown field %q", name)
		}
		if v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			values[name] = t
		case float64:
			values[name] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
		default:
			return nil, fmt.Errorf("extraction response does not conform to schema: field %q has unsupported type", name)
		}
	}
	return values, nil
}
