// Package review renders and persists review documents.
package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// Filename returns the document name for a window, keyed by the
// window's end date.
func Filename(w models.ReviewWindow) string {
	return fmt.Sprintf("weekly-review--%s.md", w.EndDate())
}

// Composer writes rendered reviews into the reviews directory.
type Composer struct {
	store storage.Provider
	dir   string
}

func NewComposer(store storage.Provider, dir string) *Composer {
	return &Composer{store: store, dir: dir}
}

// Write renders the review and persists it, overwriting any document
// already present for the same date. It returns the vault-relative path.
func (c *Composer) Write(r models.Review) (string, error) {
	rel := filepath.Join(c.dir, Filename(r.Window))
	if err := c.store.Write(rel, []byte(Render(r))); err != nil {
		return "", fmt.Errorf("review: write %s: %v: %w", rel, err, apperr.ErrPersistence)
	}
	return rel, nil
}

// Render produces the full Markdown document. The same review value
// always renders to identical bytes.
func Render(r models.Review) string {
	start, end := r.Window.Resolve()
	var b strings.Builder

	b.WriteString("# Weekly Review\n\n")
	fmt.Fprintf(&b, "**Period:** %s\n", r.Window.Describe())
	if r.Window.AllTime {
		fmt.Fprintf(&b, "**Date range:** all notes through %s\n", end.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "**Date range:** %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "**Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Notes analyzed:** %d\n\n", len(r.Entries))

	b.WriteString("## Overview\n\n")
	writeOverview(&b, r)

	b.WriteString("## Individual Note Summaries\n\n")
	if len(r.Entries) == 0 {
		b.WriteString("_No notes in this period._\n\n")
	}
	for _, e := range r.Entries {
		writeEntry(&b, e)
	}

	b.WriteString("## Overall Insights\n\n")
	writeList(&b, "### Key Themes", collect(r.Entries, func(e models.Analysis) string { return e.Hypothesis }))
	writeList(&b, "### Research Questions", collect(r.Entries, func(e models.Analysis) string { return e.FollowUp }))
	b.WriteString("### Next Steps\n")
	b.WriteString("- [ ] Pick one research question above and design a small experiment\n")
	b.WriteString("- [ ] Add observations for anything the summaries missed\n")
	b.WriteString("- [ ] Revisit last week's next steps and log outcomes\n")

	return b.String()
}

func writeOverview(b *strings.Builder, r models.Review) {
	n := len(r.Entries)
	if n == 0 {
		fmt.Fprintf(b, "No observation notes were modified in the %s.\n\n", r.Window.Describe())
		return
	}
	fmt.Fprintf(b, "Analyzed %d observation note%s from the %s.", n, plural(n), r.Window.Describe())
	if failed := r.Failures(); failed > 0 {
		fmt.Fprintf(b, " %d could not be analyzed; the entries are marked below.", failed)
	}
	b.WriteString("\n\n")
}

func writeEntry(b *strings.Builder, e models.Analysis) {
	fmt.Fprintf(b, "### %s\n", e.NoteTitle)
	fmt.Fprintf(b, "*%s, %d word%s*\n\n", e.NotePath, e.WordCount, plural(e.WordCount))

	if e.Failed() {
		fmt.Fprintf(b, "⚠️ Analysis failed: %s\n\n", e.FailReason)
		return
	}
	if e.Summary != "" {
		fmt.Fprintf(b, "**Summary:** %s\n", e.Summary)
	}
	if e.Hypothesis != "" {
		fmt.Fprintf(b, "**Hypothesis:** %s\n", e.Hypothesis)
	}
	if e.FollowUp != "" {
		fmt.Fprintf(b, "**Follow-up:** %s\n", e.FollowUp)
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString(heading + "\n")
	if len(items) == 0 {
		b.WriteString("_None captured this period._\n\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

// collect gathers one field across successful entries, deduplicated,
// in entry order.
func collect(entries []models.Analysis, field func(models.Analysis) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		if e.Failed() {
			continue
		}
		v := field(e)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
