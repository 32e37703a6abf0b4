// Package oracle makes the final OFFICIAL/PERSONAL call for a document.
// The primary implementation asks a Groq-hosted LLM; a deterministic
// rule-based fallback covers deployments without an API key.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ouslabs/docclass/internal/booster"
	"github.com/ouslabs/docclass/internal/retrieval"
)

const (
	ClassificationOfficial = "OFFICIAL"
	ClassificationPersonal = "PERSONAL"
)

// Payload carries everything a decider may need: the rendered prompt for
// LLM deciders, plus the structured evidence for rule-based ones.
type Payload struct {
	Prompt         string
	Excerpt        string
	MandatoryFound bool
	Booster        booster.Result
	Similar        []retrieval.Match
}

// Verdict is a decider's answer.
type Verdict struct {
	Classification string  // OFFICIAL or PERSONAL.
	Confidence     float64 // In [0,1].
	Reasoning      string
	Raw            string // Unparsed decider output, for debugging.
}

// Decider produces the final verdict for a document.
type Decider interface {
	Decide(ctx context.Context, p Payload) (Verdict, error)
	Name() string
}

// ParseVerdict extracts a verdict from LLM response text. The model is
// asked to answer in CLASSIFICATION/CONFIDENCE/REASONING lines; anything
// missing or malformed falls back to a conservative default rather than
// failing the call.
func ParseVerdict(text string) Verdict {
	v := Verdict{
		Classification: ClassificationPersonal,
		Confidence:     0.5,
		Raw:            text,
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "CLASSIFICATION:"):
			c := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "CLASSIFICATION:")))
			if c == ClassificationOfficial || c == ClassificationPersonal {
				v.Classification = c
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f <= 1 {
				v.Confidence = f
			}
		case strings.HasPrefix(line, "REASONING:"):
			v.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		}
	}
	return v
}

// RetryableError indicates a transient decider failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err wraps a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
