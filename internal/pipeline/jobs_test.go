package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ouslabs/docclass/internal/chunker"
	"github.com/ouslabs/docclass/internal/config"
	"github.com/ouslabs/docclass/internal/retrieval"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing document"},
		{StatusChunking, "splitting into chunks"},
		{StatusIndexing, "indexing chunks"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parse failed")
	job.AddError("index failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "parse failed" {
		t.Errorf("expected first error %q, got %q", "parse failed", snap.Progress.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func testWorker(t *testing.T) (*Worker, *retrieval.Index) {
	t.Helper()
	ix := retrieval.NewIndex(
		filepath.Join(t.TempDir(), "index.json"),
		chunker.New(chunker.DefaultConfig()),
		0.3,
	)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(ix, log, false), ix
}

func TestWorker_IngestsLabeledTextFile(t *testing.T) {
	w, ix := testWorker(t)

	job := &Job{
		ID:        "w-1",
		Status:    StatusQueued,
		Filename:  "timetable.txt",
		Label:     "OFFICIAL",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte("The Open University of Sri Lanka examination timetable."))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed (errors: %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.ChunksIndexed != 1 {
		t.Errorf("chunks indexed = %d, want 1", snap.Progress.ChunksIndexed)
	}
	if snap.DocID == "" {
		t.Error("expected a doc ID derived from the content hash")
	}
	if ix.Stats().TotalChunks != 1 {
		t.Errorf("index chunks = %d, want 1", ix.Stats().TotalChunks)
	}
}

func TestWorker_SkipsDuplicateContent(t *testing.T) {
	w, ix := testWorker(t)

	text := []byte("The Open University of Sri Lanka admission notice.")

	first := &Job{ID: "dup-1", Filename: "a.txt", Label: "OFFICIAL", UpdatedAt: time.Now()}
	first.SetFileData(text)
	w.Process(context.Background(), first)
	if first.Snapshot().Status != StatusCompleted {
		t.Fatalf("first ingest failed: %+v", first.Snapshot())
	}

	second := &Job{ID: "dup-2", Filename: "b.txt", Label: "OFFICIAL", UpdatedAt: time.Now()}
	second.SetFileData(text)
	w.Process(context.Background(), second)

	if got := second.Snapshot().Status; got != StatusDupSkipped {
		t.Errorf("status = %q, want duplicate_skipped", got)
	}
	if ix.Stats().TotalChunks != 1 {
		t.Errorf("duplicate must not grow the index, got %d chunks", ix.Stats().TotalChunks)
	}
}

func TestWorker_FailsOnUnsupportedFormat(t *testing.T) {
	w, _ := testWorker(t)

	job := &Job{ID: "bad-1", Filename: "binary.exe", Label: "OFFICIAL", UpdatedAt: time.Now()}
	job.SetFileData([]byte{0x4d, 0x5a})
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected a recorded error")
	}
}

func TestWorker_FailsOnMissingLabel(t *testing.T) {
	w, _ := testWorker(t)

	job := &Job{ID: "nolabel-1", Filename: "doc.txt", UpdatedAt: time.Now()}
	job.SetFileData([]byte("some training text"))
	w.Process(context.Background(), job)

	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("status = %q, want failed for unlabeled document", got)
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	ix := retrieval.NewIndex("", chunker.New(chunker.DefaultConfig()), 0.3)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(config.Config{
		WorkerCount:  2,
		MaxQueueSize: 10,
		JobTTL:       time.Hour,
	}, ix, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	job := o.NewJob("notice.txt", "OFFICIAL", []byte("The Open University of Sri Lanka notice."))
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap := o.GetJob(job.ID).Snapshot()
		if snap.Status == StatusCompleted {
			break
		}
		if snap.Status == StatusFailed {
			t.Fatalf("job failed: %v", snap.Progress.Errors)
		}
		select {
		case <-deadline:
			t.Fatalf("timed out in status %q", snap.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	o.Stop()
	if ix.Stats().TotalChunks == 0 {
		t.Error("expected indexed chunks after completed job")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	ix := retrieval.NewIndex("", chunker.New(chunker.DefaultConfig()), 0.3)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// No workers started: the queue never drains.
	o := NewOrchestrator(config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, ix, log)

	first := o.NewJob("a.txt", "OFFICIAL", []byte("x"))
	if err := o.Submit(first); err != nil {
		t.Fatalf("first submit should succeed: %v", err)
	}

	second := o.NewJob("b.txt", "OFFICIAL", []byte("y"))
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue-full error")
	}
	if got := second.Snapshot().Status; got != StatusFailed {
		t.Errorf("status = %q, want failed", got)
	}
	if !strings.Contains(second.Snapshot().Phase, "queue_full") {
		t.Errorf("phase = %q, want queue_full", second.Snapshot().Phase)
	}
}
