// Package tidy normalizes vault notes: missing frontmatter, stray
// inline tags, and unconventional file names.
package tidy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/starford/munin/internal/links"
	"github.com/starford/munin/internal/parser"
	"github.com/starford/munin/internal/storage"
	"github.com/starford/munin/internal/vault"
)

// conventionalName matches files already named YYYY-MM-DD--slug.md.
var conventionalName = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}--`)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Stats counts what a tidy pass changed.
type Stats struct {
	FilesProcessed   int `json:"files_processed"`
	FrontmatterAdded int `json:"frontmatter_added"`
	TagsMerged       int `json:"tags_merged"`
	FilesRenamed     int `json:"files_renamed"`
	Errors           int `json:"errors"`
}

// Tidier walks the vault and applies the normalization passes. With
// DryRun set it reports what would change without writing.
type Tidier struct {
	vault  *vault.Vault
	logger *slog.Logger
	dryRun bool
}

func New(v *vault.Vault, logger *slog.Logger, dryRun bool) *Tidier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tidier{vault: v, logger: logger, dryRun: dryRun}
}

// Run tidies every note in the vault. Per-file errors are counted and
// logged, never fatal. Generated and scaffold directories are left alone.
func (t *Tidier) Run(ctx context.Context) (Stats, error) {
	files, err := t.vault.Store().List("")
	if err != nil {
		return Stats{}, fmt.Errorf("tidy: list vault: %w", err)
	}

	var st Stats
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if t.skip(f.Path) {
			continue
		}
		st.FilesProcessed++
		if err := t.tidyFile(f, &st); err != nil {
			st.Errors++
			t.logger.Warn("tidy failed", "path", f.Path, "error", err)
		}
	}
	return st, nil
}

func (t *Tidier) skip(rel string) bool {
	if t.vault.Ignored(rel) {
		return true
	}
	// Generated reports are not notes.
	if filepath.ToSlash(rel) == links.ReportFile {
		return true
	}
	for _, dir := range []string{t.vault.ReviewsDir(), t.vault.TemplatesDir()} {
		if dir != "" && strings.HasPrefix(filepath.ToSlash(rel), filepath.ToSlash(dir)+"/") {
			return true
		}
	}
	return false
}

func (t *Tidier) tidyFile(f storage.FileInfo, st *Stats) error {
	store := t.vault.Store()
	data, err := store.Read(f.Path)
	if err != nil {
		return err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	fm := res.Frontmatter
	changed := false

	if fm == nil {
		fm = t.defaultFrontmatter(f)
		st.FrontmatterAdded++
		changed = true
	}

	if merged, ok := mergeInlineTags(fm, res.Body); ok {
		fm["tags"] = merged
		st.TagsMerged++
		changed = true
	}

	if changed && !t.dryRun {
		out, err := parser.Render(fm, res.Body)
		if err != nil {
			return err
		}
		if err := store.Write(f.Path, out); err != nil {
			return err
		}
	}

	return t.rename(f, fm, st)
}

func (t *Tidier) defaultFrontmatter(f storage.FileInfo) map[string]interface{} {
	kind := "note"
	obs := filepath.ToSlash(t.vault.ObservationsDir())
	if obs != "" && strings.HasPrefix(filepath.ToSlash(f.Path), obs+"/") {
		kind = "observation"
	}
	return map[string]interface{}{
		"date":   f.ModifiedAt.Format("2006-01-02"),
		"type":   kind,
		"status": "active",
		"tags":   []string{},
	}
}

// mergeInlineTags unions body #tags into the frontmatter tag list,
// sorted and deduplicated. It reports whether the list changed.
func mergeInlineTags(fm map[string]interface{}, body string) ([]string, bool) {
	existing := parser.FrontmatterTags(fm)
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing))
	for _, tag := range append(append([]string(nil), existing...), parser.InlineTags(body)...) {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	sort.Strings(merged)
	if len(merged) == 0 {
		return nil, false
	}
	return merged, !slices.Equal(merged, existing)
}

func (t *Tidier) rename(f storage.FileInfo, fm map[string]interface{}, st *Stats) error {
	base := filepath.Base(f.Path)
	if conventionalName.MatchString(base) {
		return nil
	}

	date := noteDate(fm, f.ModifiedAt)
	slug := slugify(strings.TrimSuffix(base, ".md"))
	if slug == "" {
		return nil
	}
	newBase := date + "--" + slug + ".md"
	if newBase == base {
		return nil
	}

	newRel := filepath.Join(filepath.Dir(f.Path), newBase)
	if _, err := t.vault.Store().Stat(newRel); err == nil {
		t.logger.Warn("rename target exists, leaving file in place", "path", f.Path, "target", newRel)
		return nil
	}

	st.FilesRenamed++
	if t.dryRun {
		return nil
	}
	return t.vault.Store().Move(f.Path, newRel)
}

// noteDate prefers the frontmatter date field over the file mtime.
func noteDate(fm map[string]interface{}, mod time.Time) string {
	if fm != nil {
		switch v := fm["date"].(type) {
		case string:
			if ts, err := time.Parse("2006-01-02", strings.TrimSpace(v)); err == nil {
				return ts.Format("2006-01-02")
			}
		case time.Time:
			return v.Format("2006-01-02")
		}
	}
	return mod.Format("2006-01-02")
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
