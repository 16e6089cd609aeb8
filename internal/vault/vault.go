// Package vault knows the layout of an observation vault and locates
// the notes a review run should look at.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/parser"
	"github.com/starford/munin/internal/storage"
)

// Layout names the directories a vault is expected to have, relative to
// the vault root. Ignore patterns are vault-root-relative globs.
type Layout struct {
	Observations string
	Reviews      string
	Templates    string
	Ignore       []string
}

// Vault wraps a storage provider with layout knowledge.
type Vault struct {
	store  storage.Provider
	layout Layout
	ignore []glob.Glob
}

// New builds a Vault. Ignore patterns are compiled up front; a bad
// pattern is a configuration error.
func New(store storage.Provider, layout Layout) (*Vault, error) {
	v := &Vault{store: store, layout: layout}
	for _, p := range layout.Ignore {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("vault: invalid ignore pattern %q: %w", p, apperr.ErrConfiguration)
		}
		v.ignore = append(v.ignore, g)
	}
	return v, nil
}

// Store exposes the underlying provider.
func (v *Vault) Store() storage.Provider { return v.store }

// ObservationsDir returns the observations directory, vault-relative.
func (v *Vault) ObservationsDir() string { return v.layout.Observations }

// ReviewsDir returns the reviews directory, vault-relative.
func (v *Vault) ReviewsDir() string { return v.layout.Reviews }

// TemplatesDir returns the templates directory, vault-relative.
func (v *Vault) TemplatesDir() string { return v.layout.Templates }

// Ignored reports whether a vault-relative path matches an ignore pattern.
func (v *Vault) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range v.ignore {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Locate lists the observation notes whose modification time falls
// inside the window, ordered by path. The observations directory must
// exist; a vault without one is misconfigured, not empty.
func (v *Vault) Locate(window models.ReviewWindow) ([]storage.FileInfo, error) {
	info, err := v.store.Stat(v.layout.Observations)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("vault: observations directory %q does not exist: %w", v.layout.Observations, apperr.ErrConfiguration)
		}
		return nil, fmt.Errorf("vault: observations directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: observations path %q is not a directory: %w", v.layout.Observations, apperr.ErrConfiguration)
	}

	files, err := v.store.List(v.layout.Observations)
	if err != nil {
		return nil, fmt.Errorf("vault: list observations: %w", err)
	}

	start, end := window.Resolve()
	var out []storage.FileInfo
	for _, f := range files {
		if v.Ignored(f.Path) {
			continue
		}
		if !window.AllTime {
			if f.ModifiedAt.Before(start) || f.ModifiedAt.After(end) {
				continue
			}
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// LoadNote reads and parses a located file into a Note. The title falls
// back to the file name stem when neither frontmatter nor an H1 names it.
func (v *Vault) LoadNote(fi storage.FileInfo) (models.Note, error) {
	data, err := v.store.Read(fi.Path)
	if err != nil {
		return models.Note{}, fmt.Errorf("vault: load note: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Note{}, fmt.Errorf("vault: parse note %s: %w", fi.Path, err)
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(fi.Path), ".md")
	}
	return models.Note{
		Path:        fi.Path,
		Title:       title,
		Frontmatter: res.Frontmatter,
		Body:        res.Body,
		WordCount:   len(strings.Fields(res.Body)),
		ModifiedAt:  fi.ModifiedAt,
	}, nil
}

// ReadObservation returns the raw bytes of one observation note. Paths
// may be given relative to the vault root or to the observations dir.
func (v *Vault) ReadObservation(path string) ([]byte, error) {
	rel := filepath.ToSlash(path)
	if !strings.HasPrefix(rel, filepath.ToSlash(v.layout.Observations)+"/") {
		rel = filepath.Join(v.layout.Observations, path)
	}
	data, err := v.store.Read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("vault: observation %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// EnsureStructure creates the observations, reviews, and templates
// directories if they are missing.
func (v *Vault) EnsureStructure() error {
	for _, dir := range []string{v.layout.Observations, v.layout.Reviews, v.layout.Templates} {
		if dir == "" {
			continue
		}
		if err := v.store.MkdirAll(dir); err != nil {
			return fmt.Errorf("vault: ensure structure: %w", err)
		}
	}
	return nil
}
