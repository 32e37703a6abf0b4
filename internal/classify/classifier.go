// Package classify runs the full classification pipeline for one document:
// mandatory-phrase gate, similar-document retrieval, booster scoring and
// the oracle's final verdict.
package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ouslabs/docclass/internal/booster"
	"github.com/ouslabs/docclass/internal/oracle"
	"github.com/ouslabs/docclass/internal/retrieval"
)

const (
	CategoryOfficial = oracle.ClassificationOfficial
	CategoryPersonal = oracle.ClassificationPersonal
)

// Result is the complete classification outcome returned to callers.
type Result struct {
	Category             string            `json:"classification"`
	Confidence           float64           `json:"confidence"`
	Reasoning            string            `json:"reasoning"`
	MandatoryPhraseFound bool              `json:"mandatory_phrase_found"`
	Booster              booster.Result    `json:"booster_analysis"`
	SimilarDocuments     []retrieval.Match `json:"similar_documents"`
}

// Classifier wires the gate, retrieval and oracle stages together.
type Classifier struct {
	engine   *booster.Engine
	searcher retrieval.Searcher
	decider  oracle.Decider
	topK     int
	logger   *slog.Logger
}

func New(engine *booster.Engine, searcher retrieval.Searcher, decider oracle.Decider, topK int, logger *slog.Logger) *Classifier {
	if topK <= 0 {
		topK = 5
	}
	return &Classifier{
		engine:   engine,
		searcher: searcher,
		decider:  decider,
		topK:     topK,
		logger:   logger,
	}
}

// Classify never returns an error: every failure path degrades to a
// PERSONAL verdict with zero confidence and the cause in the reasoning.
// Misclassifying an official document as personal is recoverable by a
// human; the reverse leaks a personal document into official routing.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	mandatory := c.engine.CheckMandatoryPhrase(text)
	score := c.engine.Score(text)

	if !mandatory {
		c.logger.Info("mandatory phrase absent, short-circuiting",
			"high_count", score.HighCount,
			"medium_count", score.MediumCount)
		return Result{
			Category:             CategoryPersonal,
			Confidence:           0.0,
			Reasoning:            "Document does not contain the required university identification phrase.",
			MandatoryPhraseFound: false,
			Booster:              score,
		}
	}

	similar, err := c.searcher.Search(ctx, text, c.topK)
	if err != nil {
		c.logger.Warn("similar-document search failed, proceeding without context", "error", err)
		similar = nil
	}

	payload := oracle.Payload{
		Excerpt:        excerpt(text),
		MandatoryFound: true,
		Booster:        score,
		Similar:        similar,
	}
	payload.Prompt = BuildPrompt(payload)

	verdict, err := c.decide(ctx, payload)
	if err != nil {
		c.logger.Error("oracle call failed, failing closed", "decider", c.decider.Name(), "error", err)
		return Result{
			Category:             CategoryPersonal,
			Confidence:           0.0,
			Reasoning:            fmt.Sprintf("Classification error: %v", err),
			MandatoryPhraseFound: true,
			Booster:              score,
			SimilarDocuments:     similar,
		}
	}

	c.logger.Info("document classified",
		"classification", verdict.Classification,
		"confidence", verdict.Confidence,
		"decider", c.decider.Name(),
		"similar_docs", len(similar))

	return Result{
		Category:             verdict.Classification,
		Confidence:           verdict.Confidence,
		Reasoning:            verdict.Reasoning,
		MandatoryPhraseFound: true,
		Booster:              score,
		SimilarDocuments:     similar,
	}
}

// decide calls the oracle, retrying once on a transient failure.
func (c *Classifier) decide(ctx context.Context, p oracle.Payload) (oracle.Verdict, error) {
	verdict, err := c.decider.Decide(ctx, p)
	if err == nil {
		return verdict, nil
	}
	if !oracle.IsRetryable(err) {
		return oracle.Verdict{}, err
	}

	c.logger.Warn("transient oracle failure, retrying once", "error", err)
	verdict, retryErr := c.decider.Decide(ctx, p)
	if retryErr != nil {
		return oracle.Verdict{}, retryErr
	}
	return verdict, nil
}
