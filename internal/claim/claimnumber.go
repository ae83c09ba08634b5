package claim

import (
	"fmt"
	"regexp"
	"time"
)

// numberRe matches the business claim number format YYYY-NNNNNN.
var numberRe = regexp.MustCompile(`^\d{4}-\d{6}$`)

const maxSequence = 999999

// ParseNumber validates a business claim number (e.g. "2026-000001")
// and returns it unchanged.
func ParseNumber(value string) (string, error) {
	if value == "" {
		return "", Errorf(ErrValidation, "claim number cannot be empty")
	}
	if !numberRe.MatchString(value) {
		return "", Errorf(ErrValidation, "claim number must be in format YYYY-NNNNNN, got %q", value)
	}
	return value, nil
}

// GenerateNumber builds a claim number for the current year from a
// database-issued sequence value.
func GenerateNumber(sequence int64) (string, error) {
	if sequence < 1 || sequence > maxSequence {
		return "", Errorf(ErrValidation, "claim sequence %d out of range 1..%d", sequence, maxSequence)
	}
	return fmt.Sprintf("%d-%06d", time.Now().UTC().Year(), sequence), nil
}
