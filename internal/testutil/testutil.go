// Package testutil provides shared test helpers for setting up vaults
// and fake analyzers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// SeedNote writes a note under the vault root and pins its mtime.
func SeedNote(t *testing.T, root, rel, content string, mod time.Time) {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(abs, mod, mod); err != nil {
		t.Fatal(err)
	}
}

// StubAnalyzer is a deterministic Analyzer for tests. FailWith marks
// matching paths as failed; Delay simulates slow model calls.
type StubAnalyzer struct {
	FailWith map[string]string
	Delay    time.Duration
}

func (s *StubAnalyzer) Analyze(ctx context.Context, note models.Note) models.Analysis {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
		}
	}
	a := models.Analysis{
		NotePath:  note.Path,
		NoteTitle: note.Title,
		WordCount: note.WordCount,
	}
	if reason, ok := s.FailWith[note.Path]; ok {
		a.Status = models.AnalysisFailed
		a.FailReason = reason
		return a
	}
	if err := ctx.Err(); err != nil {
		a.Status = models.AnalysisFailed
		a.FailReason = err.Error()
		return a
	}
	a.Status = models.AnalysisSucceeded
	a.Summary = "Summary of " + note.Title + "."
	a.Hypothesis = "Hypothesis from " + note.Title + "."
	a.FollowUp = "Follow-up for " + note.Title + "?"
	return a
}
