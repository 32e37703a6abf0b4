package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ouslabs/docclass/internal/parser"
	"github.com/ouslabs/docclass/internal/retrieval"
)

// Worker processes a single training document job.
type Worker struct {
	index       *retrieval.Index
	log         *slog.Logger
	pdfFallback bool
}

func NewWorker(index *retrieval.Index, log *slog.Logger, pdfFallback bool) *Worker {
	return &Worker{
		index:       index,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full training ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "label", job.Label)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}
	if w.index == nil {
		job.AddError("training requires a local index, not remote search")
		job.SetStatus(StatusFailed, "indexing")
		return
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	doc.Label = job.Label

	// Hash the parsed text, not the raw upload: the same content in two
	// formats is still a duplicate.
	hash := ContentHashHex([]byte(doc.Text))
	job.SetContentHash(hash)
	job.DocID = hash[:16]

	// Phase 1.5: Dedup check
	if existingID, ok := w.index.HasContent(hash); ok {
		log.Info("duplicate document, skipping", "existing_doc_id", existingID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2+3: Chunk and index
	job.SetStatus(StatusChunking, "chunking")
	job.SetStatus(StatusIndexing, "indexing")
	added, err := w.index.AddDocument(doc, job.DocID, hash)
	if err != nil {
		log.Error("indexing failed", "error", err)
		job.AddError(fmt.Sprintf("index: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}
	job.SetChunksIndexed(added)
	log.Info("document indexed", "chunks", added)

	if err := w.index.Save(); err != nil {
		log.Error("index save failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}

	job.SetStatus(StatusCompleted, "done")
}
