package annotate

import (
	"encoding/json"

	"github.com/jonathan/resume-curator/internal/schemas"
)

// Tier classifies how strongly a phrase supports a requirement.
type Tier string

// Tiers requested from the text service. Other values are passed through.
const (
	TierStrong   Tier = "strong"
	TierModerate Tier = "moderate"
	TierWeak     Tier = "weak"
)

// Triple is one highlight descriptor: the literal text to find, the evidence
// shown for it, and its tier.
type Triple struct {
	Text     string `json:"text"`
	Evidence string `json:"match"`
	Tier     Tier   `json:"tier"`
}

// ParseTriples decodes a JSON array of triples. Anything that is not an array
// of objects with string text, match and tier fields is a
// *MalformedInputError.
func ParseTriples(raw []byte) ([]Triple, error) {
	if err := schemas.ValidateBytes(schemas.AnnotationTriples, raw); err != nil {
		return nil, &MalformedInputError{Message: "triples failed validation", Cause: err}
	}
	var triples []Triple
	if err := json.Unmarshal(raw, &triples); err != nil {
		return nil, &MalformedInputError{Message: "failed to decode triples", Cause: err}
	}
	return triples, nil
}
