package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ouslabs/docclass/internal/booster"
	"github.com/ouslabs/docclass/internal/oracle"
	"github.com/ouslabs/docclass/internal/retrieval"
)

type fakeSearcher struct {
	matches []retrieval.Match
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]retrieval.Match, error) {
	f.calls++
	return f.matches, f.err
}

type fakeDecider struct {
	verdicts []oracle.Verdict
	errs     []error
	calls    int
	payloads []oracle.Payload
}

func (f *fakeDecider) Name() string { return "fake" }

func (f *fakeDecider) Decide(_ context.Context, p oracle.Payload) (oracle.Verdict, error) {
	i := f.calls
	f.calls++
	f.payloads = append(f.payloads, p)
	if i < len(f.errs) && f.errs[i] != nil {
		return oracle.Verdict{}, f.errs[i]
	}
	if i < len(f.verdicts) {
		return f.verdicts[i], nil
	}
	return oracle.Verdict{Classification: oracle.ClassificationOfficial, Confidence: 0.9}, nil
}

func newClassifier(t *testing.T, s retrieval.Searcher, d oracle.Decider) *Classifier {
	t.Helper()
	engine, err := booster.NewEngine(booster.DefaultTables())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return New(engine, s, d, 5, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassify_GateShortCircuitsWithoutOracle(t *testing.T) {
	searcher := &fakeSearcher{}
	decider := &fakeDecider{}
	c := newClassifier(t, searcher, decider)

	r := c.Classify(context.Background(), "Dear John, greetings from the Faculty of Engineering CSU3200")

	if r.Category != CategoryPersonal {
		t.Errorf("category = %q, want PERSONAL", r.Category)
	}
	if r.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", r.Confidence)
	}
	if r.MandatoryPhraseFound {
		t.Error("mandatory phrase should not be found")
	}
	if decider.calls != 0 {
		t.Errorf("oracle called %d times, want 0", decider.calls)
	}
	if searcher.calls != 0 {
		t.Errorf("searcher called %d times, want 0", searcher.calls)
	}
	// Booster analysis still computed for the explanation.
	if r.Booster.HighCount == 0 {
		t.Error("expected booster matches in short-circuit result")
	}
}

func TestClassify_OfficialVerdictPassesThrough(t *testing.T) {
	searcher := &fakeSearcher{matches: []retrieval.Match{
		{Text: "exam timetable", Label: "official", Similarity: 0.91},
	}}
	decider := &fakeDecider{verdicts: []oracle.Verdict{
		{Classification: oracle.ClassificationOfficial, Confidence: 0.95, Reasoning: "University letterhead."},
	}}
	c := newClassifier(t, searcher, decider)

	r := c.Classify(context.Background(), "The Open University of Sri Lanka examination timetable CSU3200")

	if r.Category != CategoryOfficial {
		t.Errorf("category = %q, want OFFICIAL", r.Category)
	}
	if r.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", r.Confidence)
	}
	if !r.MandatoryPhraseFound {
		t.Error("mandatory phrase should be found")
	}
	if len(r.SimilarDocuments) != 1 {
		t.Errorf("similar documents = %d, want 1", len(r.SimilarDocuments))
	}
	if decider.calls != 1 {
		t.Errorf("oracle calls = %d, want 1", decider.calls)
	}
}

func TestClassify_RetrievalFailureProceedsWithoutContext(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("index unavailable")}
	decider := &fakeDecider{verdicts: []oracle.Verdict{
		{Classification: oracle.ClassificationOfficial, Confidence: 0.8},
	}}
	c := newClassifier(t, searcher, decider)

	r := c.Classify(context.Background(), "The Open University of Sri Lanka notice")

	if r.Category != CategoryOfficial {
		t.Errorf("category = %q, want OFFICIAL despite retrieval failure", r.Category)
	}
	if len(r.SimilarDocuments) != 0 {
		t.Errorf("expected no similar documents, got %d", len(r.SimilarDocuments))
	}
	if decider.calls != 1 {
		t.Errorf("oracle calls = %d, want 1", decider.calls)
	}
}

func TestClassify_OracleFailureFailsClosed(t *testing.T) {
	decider := &fakeDecider{errs: []error{errors.New("model unavailable")}}
	c := newClassifier(t, &fakeSearcher{}, decider)

	r := c.Classify(context.Background(), "The Open University of Sri Lanka notice")

	if r.Category != CategoryPersonal {
		t.Errorf("category = %q, want PERSONAL on oracle failure", r.Category)
	}
	if r.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", r.Confidence)
	}
	if !strings.Contains(r.Reasoning, "model unavailable") {
		t.Errorf("reasoning should carry the cause, got %q", r.Reasoning)
	}
	if !r.MandatoryPhraseFound {
		t.Error("gate result should still be reported")
	}
}

func TestClassify_RetriesOnceOnTransientFailure(t *testing.T) {
	decider := &fakeDecider{
		errs: []error{&oracle.RetryableError{StatusCode: 429, Message: "rate limited"}},
		verdicts: []oracle.Verdict{
			{}, // consumed by the failing first call
			{Classification: oracle.ClassificationOfficial, Confidence: 0.85},
		},
	}
	c := newClassifier(t, &fakeSearcher{}, decider)

	r := c.Classify(context.Background(), "The Open University of Sri Lanka notice")

	if decider.calls != 2 {
		t.Fatalf("oracle calls = %d, want 2", decider.calls)
	}
	if r.Category != CategoryOfficial {
		t.Errorf("category = %q, want OFFICIAL after retry", r.Category)
	}
}

func TestClassify_NoSecondRetryOnRepeatedTransientFailure(t *testing.T) {
	decider := &fakeDecider{errs: []error{
		&oracle.RetryableError{StatusCode: 503, Message: "down"},
		&oracle.RetryableError{StatusCode: 503, Message: "still down"},
		nil,
	}}
	c := newClassifier(t, &fakeSearcher{}, decider)

	r := c.Classify(context.Background(), "The Open University of Sri Lanka notice")

	if decider.calls != 2 {
		t.Fatalf("oracle calls = %d, want exactly 2", decider.calls)
	}
	if r.Category != CategoryPersonal || r.Confidence != 0.0 {
		t.Errorf("expected fail-closed result, got %q/%v", r.Category, r.Confidence)
	}
}

func TestClassify_PromptCarriesEvidence(t *testing.T) {
	long := strings.Repeat("x", 400)
	searcher := &fakeSearcher{matches: []retrieval.Match{
		{Text: long, Label: "official", Similarity: 0.88},
		{Text: "second", Label: "personal", Similarity: 0.75},
		{Text: "third", Label: "official", Similarity: 0.72},
		{Text: "fourth should be dropped", Label: "official", Similarity: 0.71},
	}}
	decider := &fakeDecider{}
	c := newClassifier(t, searcher, decider)

	doc := "The Open University of Sri Lanka " + strings.Repeat("body text ", 300)
	c.Classify(context.Background(), doc)

	if len(decider.payloads) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(decider.payloads))
	}
	prompt := decider.payloads[0].Prompt

	for _, want := range []string{
		"THUMB RULE",
		"Mandatory phrase found: true",
		"[OFFICIAL] (similarity: 0.88)",
		long[:300] + "...",
		"CLASSIFICATION: [OFFICIAL or PERSONAL]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "fourth should be dropped") {
		t.Error("prompt should include at most 3 similar documents")
	}
	if strings.Contains(prompt, strings.Repeat("body text ", 300)) {
		t.Error("document excerpt should be truncated")
	}
}

func TestExcerpt(t *testing.T) {
	short := "short text"
	if got := excerpt(short); got != short {
		t.Errorf("excerpt(%q) = %q", short, got)
	}

	long := strings.Repeat("a", 2000)
	got := excerpt(long)
	if len(got) != excerptLimit+len("...") {
		t.Errorf("excerpt length = %d, want %d", len(got), excerptLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated excerpt should end with ellipsis")
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// One ASCII byte shifts the three-byte Sinhala runes so the byte limit
	// lands inside a rune.
	long := "x" + strings.Repeat("අ", 600)

	for _, limit := range []int{excerptLimit, previewLimit} {
		got := truncate(long, limit)
		if !utf8.ValidString(got) {
			t.Errorf("truncate(limit=%d) produced invalid UTF-8", limit)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncate(limit=%d) should end with ellipsis", limit)
		}
		if len(got) > limit+len("...") {
			t.Errorf("truncate(limit=%d) length = %d, want at most %d", limit, len(got), limit+3)
		}
	}

	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate below limit = %q, want unchanged", got)
	}
}
