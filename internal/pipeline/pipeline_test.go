package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/review"
	"github.com/starford/munin/internal/testutil"
	"github.com/starford/munin/internal/vault"
)

func newTestPipeline(t *testing.T, a *testutil.StubAnalyzer, opts Options) (*Pipeline, string) {
	t.Helper()
	root, store := testutil.TestVault(t)
	v, err := vault.New(store, vault.Layout{
		Observations: "observations",
		Reviews:      "reviews",
		Templates:    "templates",
	})
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}
	c := review.NewComposer(store, "reviews")
	return New(v, a, c, nil, opts), root
}

func seedObservations(t *testing.T, root string, names ...string) {
	t.Helper()
	now := time.Now()
	for _, name := range names {
		testutil.SeedNote(t, root,
			filepath.Join("observations", name),
			"# "+strings.TrimSuffix(name, ".md")+"\nSome body text here.\n",
			now.Add(-time.Hour))
	}
}

func TestRun_WritesReview(t *testing.T) {
	p, root := newTestPipeline(t, &testutil.StubAnalyzer{}, Options{})
	seedObservations(t, root, "a-note.md", "b-note.md")

	res, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NotesLocated != 2 || len(res.Review.Entries) != 2 {
		t.Errorf("located %d, entries %d, want 2 and 2", res.NotesLocated, len(res.Review.Entries))
	}
	if res.Path == "" {
		t.Fatal("expected a persisted path")
	}
	data, err := os.ReadFile(filepath.Join(root, res.Path))
	if err != nil {
		t.Fatalf("read review: %v", err)
	}
	doc := string(data)
	if doc != res.Document {
		t.Error("persisted document differs from rendered document")
	}
	if !strings.Contains(doc, "Summary of a-note.") {
		t.Errorf("document missing entry content:\n%s", doc)
	}
	// Entries follow path order.
	if res.Review.Entries[0].NotePath != "observations/a-note.md" {
		t.Errorf("first entry = %s", res.Review.Entries[0].NotePath)
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	stub := &testutil.StubAnalyzer{
		FailWith: map[string]string{"observations/b-note.md": "model exploded"},
	}
	p, root := newTestPipeline(t, stub, Options{})
	seedObservations(t, root, "a-note.md", "b-note.md", "c-note.md")

	res, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Review.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(res.Review.Entries))
	}
	if res.Failures != 1 {
		t.Errorf("failures = %d, want 1", res.Failures)
	}
	if !strings.Contains(res.Document, "⚠️ Analysis failed: model exploded") {
		t.Error("document missing failure marker")
	}
	// The other entries are intact.
	if !strings.Contains(res.Document, "Summary of a-note.") || !strings.Contains(res.Document, "Summary of c-note.") {
		t.Error("healthy entries missing")
	}
}

func TestRender_SkipsUnreadableNote(t *testing.T) {
	p, root := newTestPipeline(t, &testutil.StubAnalyzer{}, Options{})
	seedObservations(t, root, "good.md")
	// A dangling symlink lists fine but cannot be read.
	if err := os.Symlink(filepath.Join(root, "missing-target"),
		filepath.Join(root, "observations", "broken.md")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	res, err := p.Render(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.NotesSkipped != 1 {
		t.Errorf("skipped = %d, want 1", res.NotesSkipped)
	}
	if len(res.Review.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(res.Review.Entries))
	}
}

func TestRun_MissingObservationsDir(t *testing.T) {
	p, _ := newTestPipeline(t, &testutil.StubAnalyzer{}, Options{})
	_, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("want ErrConfiguration, got %v", err)
	}
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	stub := &testutil.StubAnalyzer{Delay: 50 * time.Millisecond}
	p, root := newTestPipeline(t, stub, Options{Concurrency: 2})
	seedObservations(t, root, "a.md", "b.md", "c.md", "d.md")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, models.ReviewWindow{Days: 7})
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	entries, _ := os.ReadDir(filepath.Join(root, "reviews"))
	if len(entries) != 0 {
		t.Errorf("cancelled run wrote files: %v", entries)
	}
}

func TestRun_ConcurrentOrderStable(t *testing.T) {
	stub := &testutil.StubAnalyzer{Delay: 10 * time.Millisecond}
	p, root := newTestPipeline(t, stub, Options{Concurrency: 4})
	seedObservations(t, root, "e.md", "a.md", "c.md", "b.md", "d.md", "f.md")

	res, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"observations/a.md",
		"observations/b.md",
		"observations/c.md",
		"observations/d.md",
		"observations/e.md",
		"observations/f.md",
	}
	for i, e := range res.Review.Entries {
		if e.NotePath != want[i] {
			t.Fatalf("entry %d = %s, want %s", i, e.NotePath, want[i])
		}
	}
}

func TestRun_EmptyWindowStillWrites(t *testing.T) {
	p, root := newTestPipeline(t, &testutil.StubAnalyzer{}, Options{})
	if err := os.MkdirAll(filepath.Join(root, "observations"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Review.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(res.Review.Entries))
	}
	if !strings.Contains(res.Document, "**Notes analyzed:** 0") {
		t.Error("empty review missing zero count")
	}
	if _, err := os.Stat(filepath.Join(root, res.Path)); err != nil {
		t.Errorf("review file not written: %v", err)
	}
}

func TestRun_PerCallTimeout(t *testing.T) {
	stub := &testutil.StubAnalyzer{Delay: 200 * time.Millisecond}
	p, root := newTestPipeline(t, stub, Options{CallTimeout: 20 * time.Millisecond})
	seedObservations(t, root, "slow.md")

	res, err := p.Run(context.Background(), models.ReviewWindow{Days: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failures != 1 {
		t.Errorf("failures = %d, want 1: %+v", res.Failures, res.Review.Entries)
	}
}
