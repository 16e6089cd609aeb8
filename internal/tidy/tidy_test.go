package tidy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/munin/internal/parser"
	"github.com/starford/munin/internal/testutil"
	"github.com/starford/munin/internal/vault"
)

func newTestTidier(t *testing.T, dryRun bool) (*Tidier, string) {
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
	return New(v, nil, dryRun), root
}

func TestRun_AddsFrontmatter(t *testing.T) {
	td, root := newTestTidier(t, false)
	mod := time.Date(2026, 2, 10, 12, 0, 0, 0, time.Local)
	testutil.SeedNote(t, root, "observations/2026-02-10--bare.md", "Just text, no frontmatter.\n", mod)

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.FrontmatterAdded != 1 {
		t.Errorf("frontmatter added = %d, want 1", st.FrontmatterAdded)
	}

	data, err := os.ReadFile(filepath.Join(root, "observations/2026-02-10--bare.md"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Frontmatter["date"] != "2026-02-10" {
		t.Errorf("date = %v", res.Frontmatter["date"])
	}
	if res.Frontmatter["type"] != "observation" {
		t.Errorf("type = %v", res.Frontmatter["type"])
	}
	if res.Frontmatter["status"] != "active" {
		t.Errorf("status = %v", res.Frontmatter["status"])
	}
	if res.Body != "Just text, no frontmatter.\n" {
		t.Errorf("body changed: %q", res.Body)
	}
}

func TestRun_MergesInlineTags(t *testing.T) {
	td, root := newTestTidier(t, false)
	content := "---\ndate: 2026-02-10\ntags:\n  - sleep\n---\nNotes about #energy and #sleep.\n"
	testutil.SeedNote(t, root, "observations/2026-02-10--tags.md", content, time.Now())

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.TagsMerged != 1 {
		t.Errorf("tags merged = %d, want 1", st.TagsMerged)
	}

	data, _ := os.ReadFile(filepath.Join(root, "observations/2026-02-10--tags.md"))
	res, _ := parser.Parse(data)
	tags := parser.FrontmatterTags(res.Frontmatter)
	if len(tags) != 2 || tags[0] != "energy" || tags[1] != "sleep" {
		t.Errorf("tags = %v, want [energy sleep]", tags)
	}
}

func TestRun_RenamesToConvention(t *testing.T) {
	td, root := newTestTidier(t, false)
	content := "---\ndate: 2026-02-08\n---\nbody\n"
	testutil.SeedNote(t, root, "observations/Morning Energy Dip!.md", content, time.Now())

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.FilesRenamed != 1 {
		t.Errorf("renamed = %d, want 1", st.FilesRenamed)
	}
	if _, err := os.Stat(filepath.Join(root, "observations/2026-02-08--morning-energy-dip.md")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "observations/Morning Energy Dip!.md")); err == nil {
		t.Error("old name still present")
	}
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	td, root := newTestTidier(t, true)
	original := "No frontmatter here.\n"
	testutil.SeedNote(t, root, "observations/Messy Name.md", original, time.Now())

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.FrontmatterAdded != 1 || st.FilesRenamed != 1 {
		t.Errorf("stats = %+v, want changes counted", st)
	}

	data, err := os.ReadFile(filepath.Join(root, "observations/Messy Name.md"))
	if err != nil {
		t.Fatalf("original file gone: %v", err)
	}
	if string(data) != original {
		t.Errorf("dry run modified content: %q", data)
	}
}

func TestRun_SecondPassIdempotent(t *testing.T) {
	td, root := newTestTidier(t, false)
	testutil.SeedNote(t, root, "observations/Raw Note.md", "Body with #tag.\n", time.Now())

	if _, err := td.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if st.FrontmatterAdded != 0 || st.TagsMerged != 0 || st.FilesRenamed != 0 {
		t.Errorf("second pass changed things: %+v", st)
	}
}

func TestRun_SkipsReviewsAndTemplates(t *testing.T) {
	td, root := newTestTidier(t, false)
	review := "# Weekly Review\n\nGenerated content.\n"
	testutil.SeedNote(t, root, "reviews/weekly-review--2026-02-10.md", review, time.Now())
	tmpl := "---\ndate: {{date}}\n---\n# {{title}}\n"
	testutil.SeedNote(t, root, "templates/daily-observation.md", tmpl, time.Now())

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.FilesProcessed != 0 {
		t.Errorf("processed = %d, want 0", st.FilesProcessed)
	}
	data, _ := os.ReadFile(filepath.Join(root, "reviews/weekly-review--2026-02-10.md"))
	if string(data) != review {
		t.Error("review document was modified")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Morning Energy Dip!": "morning-energy-dip",
		"  spaced  out  ":     "spaced-out",
		"already-fine":        "already-fine",
		"Füße & Hände":        "f-e-h-nde",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun_BrokenFileCountedNotFatal(t *testing.T) {
	td, root := newTestTidier(t, false)
	testutil.SeedNote(t, root, "observations/2026-02-10--good.md", "---\ndate: 2026-02-10\n---\nok\n", time.Now())
	if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "observations", "2026-02-10--dangling.md")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	st, err := td.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Errors != 1 {
		t.Errorf("errors = %d, want 1", st.Errors)
	}
	if st.FilesProcessed != 2 {
		t.Errorf("processed = %d, want 2", st.FilesProcessed)
	}
}
