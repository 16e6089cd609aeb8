// Package links scans the vault for wikilinks that point at notes
// which do not exist.
package links

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/munin/internal/parser"
	"github.com/starford/munin/internal/vault"
)

// ReportFile is where the rendered report lands, relative to the
// vault root.
const ReportFile = "broken-links-report.md"

// Broken is one unresolvable wikilink.
type Broken struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report summarises a link scan.
type Report struct {
	FilesScanned int      `json:"files_scanned"`
	LinksChecked int      `json:"links_checked"`
	Broken       []Broken `json:"broken"`
}

// Checker resolves wikilinks against the set of note names in the vault.
type Checker struct {
	vault  *vault.Vault
	logger *slog.Logger
}

func New(v *vault.Vault, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{vault: v, logger: logger}
}

// Run scans every note. A link resolves when some note in the vault has
// the linked stem as its file name, wherever it lives.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	files, err := c.vault.Store().List("")
	if err != nil {
		return nil, fmt.Errorf("links: list vault: %w", err)
	}

	stems := make(map[string]struct{}, len(files))
	for _, f := range files {
		stems[strings.TrimSuffix(filepath.Base(f.Path), ".md")] = struct{}{}
	}

	rep := &Report{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.vault.Ignored(f.Path) {
			continue
		}
		data, err := c.vault.Store().Read(f.Path)
		if err != nil {
			c.logger.Warn("skipping unreadable note", "path", f.Path, "error", err)
			continue
		}
		res, err := parser.Parse(data)
		if err != nil {
			c.logger.Warn("skipping unparseable note", "path", f.Path, "error", err)
			continue
		}
		rep.FilesScanned++
		for _, target := range res.Links {
			rep.LinksChecked++
			if _, ok := stems[resolveStem(target)]; !ok {
				rep.Broken = append(rep.Broken, Broken{Source: f.Path, Target: target})
			}
		}
	}
	return rep, nil
}

// resolveStem reduces a wikilink target to the note stem it names:
// folders and heading anchors are stripped.
func resolveStem(target string) string {
	if i := strings.Index(target, "#"); i >= 0 {
		target = target[:i]
	}
	target = strings.TrimSpace(target)
	return path.Base(strings.TrimSuffix(target, ".md"))
}

// Render produces the Markdown report.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString("# Broken Links Report\n\n")
	fmt.Fprintf(&b, "**Files scanned:** %d\n", r.FilesScanned)
	fmt.Fprintf(&b, "**Links checked:** %d\n\n", r.LinksChecked)

	if len(r.Broken) == 0 {
		b.WriteString("✅ No broken links found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d broken link%s.\n\n", len(r.Broken), plural(len(r.Broken)))
	var last string
	for _, bl := range r.Broken {
		if bl.Source != last {
			fmt.Fprintf(&b, "## %s\n", bl.Source)
			last = bl.Source
		}
		fmt.Fprintf(&b, "- [[%s]]\n", bl.Target)
	}
	return b.String()
}

// Write persists the report at the vault root and returns its path.
func (c *Checker) Write(rep *Report) (string, error) {
	if err := c.vault.Store().Write(ReportFile, []byte(rep.Render())); err != nil {
		return "", fmt.Errorf("links: write report: %w", err)
	}
	return ReportFile, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
