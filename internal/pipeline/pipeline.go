// Package pipeline orchestrates a review run: locate notes, parse them,
// analyze each one, and compose the review document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/munin/internal/analyze"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/review"
	"github.com/starford/munin/internal/vault"
)

// Options tune a pipeline. Zero values mean sequential analysis with
// no per-note deadline.
type Options struct {
	// Concurrency is the number of parallel analyzer calls.
	Concurrency int
	// CallTimeout bounds each analyzer call.
	CallTimeout time.Duration
}

// Pipeline wires the stages of a review run together.
type Pipeline struct {
	vault       *vault.Vault
	analyzer    analyze.Analyzer
	composer    *review.Composer
	logger      *slog.Logger
	concurrency int
	callTimeout time.Duration
}

func New(v *vault.Vault, a analyze.Analyzer, c *review.Composer, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		vault:       v,
		analyzer:    a,
		composer:    c,
		logger:      logger,
		concurrency: concurrency,
		callTimeout: opts.CallTimeout,
	}
}

// Result reports what a run did.
type Result struct {
	RunID        string        `json:"run_id"`
	Review       models.Review `json:"review"`
	Document     string        `json:"document"`
	Path         string        `json:"path,omitempty"`
	NotesLocated int           `json:"notes_located"`
	NotesSkipped int           `json:"notes_skipped"`
	Failures     int           `json:"failures"`
}

// Run renders a review for the window and persists it. A cancelled run
// writes nothing.
func (p *Pipeline) Run(ctx context.Context, window models.ReviewWindow) (*Result, error) {
	res, err := p.Render(ctx, window)
	if err != nil {
		return nil, err
	}
	rel, err := p.composer.Write(res.Review)
	if err != nil {
		return nil, err
	}
	res.Path = rel
	p.logger.Info("review written",
		"run_id", res.RunID,
		"path", rel,
		"entries", len(res.Review.Entries),
		"failed", res.Failures,
		"skipped", res.NotesSkipped)
	return res, nil
}

// Render performs every stage except persistence.
func (p *Pipeline) Render(ctx context.Context, window models.ReviewWindow) (*Result, error) {
	// Pin the reference time so every stage resolves the same bounds.
	if window.Reference.IsZero() {
		window.Reference = time.Now()
	}
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID, "window", window.Describe())

	files, err := p.vault.Locate(window)
	if err != nil {
		return nil, err
	}
	log.Info("located observation notes", "count", len(files))

	notes := make([]models.Note, 0, len(files))
	skipped := 0
	for _, f := range files {
		note, err := p.vault.LoadNote(f)
		if err != nil {
			skipped++
			log.Warn("skipping unreadable note", "path", f.Path, "error", err)
			continue
		}
		notes = append(notes, note)
	}

	entries, err := p.analyzeAll(ctx, log, notes)
	if err != nil {
		return nil, err
	}

	rev := models.Review{
		Window:      window,
		Entries:     entries,
		GeneratedAt: time.Now(),
	}
	return &Result{
		RunID:        runID,
		Review:       rev,
		Document:     review.Render(rev),
		NotesLocated: len(files),
		NotesSkipped: skipped,
		Failures:     rev.Failures(),
	}, nil
}

// analyzeAll fans the notes out to the analyzer. Entries come back in
// note order regardless of completion order. A failed analysis is data,
// not an error; only cancellation aborts the run.
func (p *Pipeline) analyzeAll(ctx context.Context, log *slog.Logger, notes []models.Note) ([]models.Analysis, error) {
	entries := make([]models.Analysis, len(notes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, note := range notes {
		g.Go(func() error {
			// Stop issuing new calls once the run is cancelled.
			if err := gctx.Err(); err != nil {
				return err
			}
			callCtx := gctx
			if p.callTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, p.callTimeout)
				defer cancel()
			}
			entries[i] = p.analyzer.Analyze(callCtx, note)
			if entries[i].Failed() {
				log.Warn("analysis failed", "path", note.Path, "reason", entries[i].FailReason)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: run cancelled: %w", err)
	}
	return entries, nil
}
