package classify

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ouslabs/docclass/internal/oracle"
)

const (
	excerptLimit = 1500
	previewLimit = 300
	maxSimilar   = 3
)

// truncate cuts s to at most limit bytes without splitting a rune,
// appending an ellipsis when anything was removed.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// excerpt trims document text to the size the prompt embeds.
func excerpt(text string) string {
	return truncate(text, excerptLimit)
}

// BuildPrompt renders the full classification prompt: the mandatory thumb
// rule, the three booster tiers, this document's booster analysis, the
// top similar training chunks and the document excerpt.
func BuildPrompt(p oracle.Payload) string {
	var ctx strings.Builder
	ctx.WriteString("Similar documents from training data:\n\n")
	for i, m := range p.Similar {
		if i >= maxSimilar {
			break
		}
		preview := truncate(m.Text, previewLimit)
		fmt.Fprintf(&ctx, "%d. [%s] (similarity: %.2f)\n%s\n\n", i+1, strings.ToUpper(m.Label), m.Similarity, preview)
	}

	var b strings.Builder
	b.WriteString(`You are a document classifier for The Open University of Sri Lanka (OUSL).

**MANDATORY CLASSIFICATION RULE (THUMB RULE):**
A document is OFFICIAL **IF AND ONLY IF** it contains at least ONE of these:
1. "The Open University of Sri Lanka" (any capitalization)
2. "THE OPEN UNIVERSITY OF SRI LANKA" (all caps)

This is ABSOLUTELY REQUIRED. If neither phrase is found, the document is PERSONAL regardless of any other content.

**OPTIONAL CONFIDENCE BOOSTERS:**

HIGH CONFIDENCE BOOSTERS (+15-20% each):
- Faculty names (e.g., FACULTY OF NATURAL SCIENCE, Faculty of Engineering Technology)
- Degree programmes (e.g., BACHELOR OF SCIENCE DEGREE PROGRAMME)
- Department names (e.g., Department of Computer Science)
- Course codes (CSU series: CSU3200, CSU3301, etc.)
- Official markers (University seal, Official letterhead)

MEDIUM CONFIDENCE BOOSTERS (+8-15% each):
- Full OUSL address (PO Box 21, Nawala, Nugegoda)
- Course codes (other series: BYU, CYU, PHU, ZYU, ADU, PEU, etc.)
- Academic terms (2024/2025, Semester 1, CAT 1, MARKS, PRACTICAL, etc.)
- Document types (Syllabus, Transcript, Certificate, Assignment)
- Staff affiliation (Lecturer, Professor with OUSL)

LOW CONFIDENCE BOOSTERS (+1-7% each):
- General faculty mentions
- General programme mentions

`)
	fmt.Fprintf(&b, `**ANALYSIS FOR THIS DOCUMENT:**
- Mandatory phrase found: %t
- HIGH boosters found: %d
- MEDIUM boosters found: %d
- LOW boosters found: %d
- Suggested confidence: %.0f%%

`, p.MandatoryFound, p.Booster.HighCount, p.Booster.MediumCount, p.Booster.LowCount, p.Booster.Confidence*100)

	b.WriteString(ctx.String())

	fmt.Fprintf(&b, `
**DOCUMENT TO CLASSIFY:**
%s

**INSTRUCTIONS:**
Based on the MANDATORY RULE and similar documents above, classify this document as either OFFICIAL or PERSONAL.
Provide your response in this exact format:

CLASSIFICATION: [OFFICIAL or PERSONAL]
CONFIDENCE: [0.0 to 1.0]
REASONING: [Brief explanation of your decision]
`, p.Excerpt)

	return b.String()
}
