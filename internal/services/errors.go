package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks duplicate-feed records that reference
	// unresolvable metadata or collapse below two members.
	ErrMalformedInput = errors.New("malformed input")
	// ErrLookup marks a referenced track with no matching database row.
	ErrLookup = errors.New("library lookup failed")
	// ErrAmbiguous marks a group the cascade could not reduce to one keeper.
	ErrAmbiguous = errors.New("ambiguous group")
	// ErrPersistence marks a failed group transaction.
	ErrPersistence = errors.New("persistence failure")
	// ErrFatalStorage marks a failed pre-run backup. It is the only marker
	// that aborts the whole run.
	ErrFatalStorage = errors.New("fatal storage failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Outcome is the report category an error (or its absence) maps to.
type Outcome string

const (
	OutcomeMerged      Outcome = "merged"
	OutcomeSkipped     Outcome = "skipped"
	OutcomePlanned     Outcome = "planned"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeLookup      Outcome = "lookup"
	OutcomeAmbiguous   Outcome = "ambiguous"
	OutcomePersistence Outcome = "persistence"
	OutcomeFatal       Outcome = "fatal"
)

// Classify maps a pipeline error to the report outcome it belongs to.
// A nil error classifies as merged.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeMerged
	case errors.Is(err, ErrFatalStorage):
		return OutcomeFatal
	case errors.Is(err, ErrMalformedInput):
		return OutcomeMalformed
	case errors.Is(err, ErrLookup):
		return OutcomeLookup
	case errors.Is(err, ErrAmbiguous):
		return OutcomeAmbiguous
	default:
		return OutcomePersistence
	}
}

// IsFatal reports whether err must abort the run before any write.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalStorage)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
