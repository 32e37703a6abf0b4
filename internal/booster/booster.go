// Package booster scores a document's likelihood of being an official
// institutional document with a deterministic, explainable three-tier rule
// system. Matching is plain substring search over curated phrase tables;
// the score is additive per matched category and capped at 1.0.
package booster

import (
	"fmt"
	"strings"
)

// HighMatches records matched phrases per HIGH-tier category.
type HighMatches struct {
	Faculty         []string `json:"faculty"`
	DegreeProgramme []string `json:"degree_programme"`
	Department      []string `json:"department"`
	CourseCodes     []string `json:"course_codes_csu"`
	OfficialMarkers []string `json:"official_markers"`
}

// MediumMatches records matched phrases per MEDIUM-tier category.
type MediumMatches struct {
	FullAddress      []string `json:"full_address"`
	CourseCodes      []string `json:"course_codes_other"`
	AcademicTerms    []string `json:"academic_terms"`
	DocumentTypes    []string `json:"document_types"`
	StaffAffiliation []string `json:"staff_affiliation"`
}

// LowMatches records matched phrases per LOW-tier category.
type LowMatches struct {
	GeneralFaculties  []string `json:"general_faculties"`
	GeneralProgrammes []string `json:"general_programmes"`
}

// Result is the outcome of one scoring pass.
type Result struct {
	High   HighMatches   `json:"high_boosters"`
	Medium MediumMatches `json:"medium_boosters"`
	Low    LowMatches    `json:"low_boosters"`

	// Every course code found in the text, in list order.
	CourseCodesFound []string `json:"course_codes_found"`

	// Number of categories (not occurrences) with at least one match.
	HighCount   int `json:"high_booster_count"`
	MediumCount int `json:"medium_booster_count"`
	LowCount    int `json:"low_booster_count"`
	TotalCount  int `json:"total_booster_count"`

	Confidence float64 `json:"confidence"`
}

// Engine evaluates text against its Tables. Safe for concurrent use: the
// tables are never mutated after construction.
type Engine struct {
	tables Tables
}

// NewEngine validates the tables and returns an Engine.
func NewEngine(t Tables) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("booster tables: %w", err)
	}
	return &Engine{tables: t}, nil
}

// Tables returns the engine's configuration.
func (e *Engine) Tables() Tables {
	return e.tables
}

// CheckMandatoryPhrase reports whether the text contains the institution
// name in either configured form, case-insensitively. Documents failing
// this gate are never classified OFFICIAL.
func (e *Engine) CheckMandatoryPhrase(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, strings.ToLower(e.tables.MandatoryPhrase)) ||
		strings.Contains(lower, strings.ToLower(e.tables.MandatoryPhraseAlt))
}

// Score runs the three-tier booster pass over the text.
func (e *Engine) Score(text string) Result {
	t := e.tables
	lower := strings.ToLower(text)

	var r Result

	// HIGH tier, course codes handled separately below.
	r.High.Faculty = matchFold(t.HighFaculty, lower)
	r.High.DegreeProgramme = matchFold(t.HighDegreeProgramme, lower)
	r.High.Department = matchFold(t.HighDepartment, lower)
	r.High.OfficialMarkers = matchFold(t.HighOfficialMarkers, lower)

	// MEDIUM tier. Academic terms are matched case-insensitively only; the
	// remaining categories also accept a verbatim case-sensitive hit.
	r.Medium.FullAddress = matchFoldOrExact(t.MediumFullAddress, text, lower)
	r.Medium.AcademicTerms = matchFold(t.MediumAcademicTerms, lower)
	r.Medium.DocumentTypes = matchFoldOrExact(t.MediumDocumentTypes, text, lower)
	r.Medium.StaffAffiliation = matchFoldOrExact(t.MediumStaffAffiliation, text, lower)

	// LOW tier.
	r.Low.GeneralFaculties = matchFold(t.LowGeneralFaculties, lower)
	r.Low.GeneralProgrammes = matchFold(t.LowGeneralProgrammes, lower)

	// Course codes are matched case-sensitively against the full list.
	var found []string
	for _, code := range t.AllCourseCodes {
		if strings.Contains(text, code) {
			found = append(found, code)
		}
	}
	r.CourseCodesFound = found

	majorityCount := int(float64(len(t.AllCourseCodes)) * t.MajorityThreshold)
	if len(found) >= majorityCount {
		// Comprehensive course catalog: one HIGH credit, MEDIUM stays empty.
		r.High.CourseCodes = []string{
			fmt.Sprintf("MAJORITY_CODES (%d/%d)", len(found), len(t.AllCourseCodes)),
		}
	} else {
		// One booster credit per tier-category, first code in list order.
		if code := firstIn(found, t.CourseCodesCSU); code != "" {
			r.High.CourseCodes = []string{code}
		}
		if code := firstIn(found, t.CourseCodesOther); code != "" {
			r.Medium.CourseCodes = []string{code}
		}
	}

	r.HighCount = countNonEmpty(
		r.High.Faculty, r.High.DegreeProgramme, r.High.Department,
		r.High.CourseCodes, r.High.OfficialMarkers,
	)
	r.MediumCount = countNonEmpty(
		r.Medium.FullAddress, r.Medium.CourseCodes, r.Medium.AcademicTerms,
		r.Medium.DocumentTypes, r.Medium.StaffAffiliation,
	)
	r.LowCount = countNonEmpty(r.Low.GeneralFaculties, r.Low.GeneralProgrammes)
	r.TotalCount = r.HighCount + r.MediumCount + r.LowCount

	confidence := t.BaseConfidence +
		float64(r.HighCount)*t.HighIncrement +
		float64(r.MediumCount)*t.MediumIncrement +
		float64(r.LowCount)*t.LowIncrement
	if confidence > 1.0 {
		confidence = 1.0
	}
	r.Confidence = confidence

	return r
}

// matchFold returns the phrases found case-insensitively in lowerText.
// Duplicate config entries are kept: each is a separate table entry.
func matchFold(phrases []string, lowerText string) []string {
	var out []string
	for _, p := range phrases {
		if strings.Contains(lowerText, strings.ToLower(p)) {
			out = append(out, p)
		}
	}
	return out
}

// matchFoldOrExact matches case-insensitively or as a verbatim substring.
func matchFoldOrExact(phrases []string, text, lowerText string) []string {
	var out []string
	for _, p := range phrases {
		if strings.Contains(lowerText, strings.ToLower(p)) || strings.Contains(text, p) {
			out = append(out, p)
		}
	}
	return out
}

// firstIn returns the first element of found that is a member of set.
func firstIn(found, set []string) string {
	members := make(map[string]struct{}, len(set))
	for _, s := range set {
		members[s] = struct{}{}
	}
	for _, f := range found {
		if _, ok := members[f]; ok {
			return f
		}
	}
	return ""
}

func countNonEmpty(lists ...[]string) int {
	n := 0
	for _, l := range lists {
		if len(l) > 0 {
			n++
		}
	}
	return n
}
