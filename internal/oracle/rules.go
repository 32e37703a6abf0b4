package oracle

import (
	"context"
	"fmt"
)

// RuleDecider is a deterministic fallback used when no Groq API key is
// configured. It trusts the booster score directly: the mandatory-phrase
// gate has already passed by the time a decider runs, so the document is
// OFFICIAL and the additive confidence is the best local estimate.
type RuleDecider struct{}

func NewRuleDecider() *RuleDecider { return &RuleDecider{} }

func (d *RuleDecider) Name() string { return "rules" }

func (d *RuleDecider) Decide(_ context.Context, p Payload) (Verdict, error) {
	reasoning := fmt.Sprintf(
		"Mandatory university phrase present; %d high, %d medium, %d low booster categories matched.",
		p.Booster.HighCount, p.Booster.MediumCount, p.Booster.LowCount)

	return Verdict{
		Classification: ClassificationOfficial,
		Confidence:     p.Booster.Confidence,
		Reasoning:      reasoning,
	}, nil
}
