package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Starter templates for manual note taking. Placeholders use the
// double-brace syntax Obsidian's templater plugins understand.
var templates = map[string]string{
	"daily-observation.md": `---
date: {{date}}
type: observation
tags: []
---

# {{title}}

## What happened

## Context
Sleep, food, stress, anything unusual.

## Severity (1-10)

## Initial thoughts
`,
	"insight-note.md": `---
date: {{date}}
type: insight
tags: []
related: []
---

# {{title}}

## Insight

## Supporting observations

## What to try next
`,
	"weekly-reflection.md": `---
date: {{date}}
type: reflection
tags: []
---

# Week of {{date}}

## Wins

## Patterns noticed

## Adjustments for next week
`,
}

// WriteTemplates writes the starter templates into the templates
// directory, skipping any that already exist. It returns the paths of
// the files it created.
func (v *Vault) WriteTemplates() ([]string, error) {
	if err := v.store.MkdirAll(v.layout.Templates); err != nil {
		return nil, fmt.Errorf("vault: templates dir: %w", err)
	}
	var created []string
	for name, content := range templates {
		rel := filepath.Join(v.layout.Templates, name)
		if _, err := v.store.Stat(rel); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return created, fmt.Errorf("vault: stat template %s: %w", rel, err)
		}
		if err := v.store.Write(rel, []byte(content)); err != nil {
			return created, fmt.Errorf("vault: write template %s: %w", rel, err)
		}
		created = append(created, rel)
	}
	sort.Strings(created)
	return created, nil
}
