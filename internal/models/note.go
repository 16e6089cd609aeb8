// Package models defines the domain types for Munin.
package models

import "time"

// Note represents a parsed observation note from the vault.
type Note struct {
	Path        string                 `json:"path"`
	Title       string                 `json:"title,omitempty"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Body        string                 `json:"body"`
	WordCount   int                    `json:"word_count"`
	ModifiedAt  time.Time              `json:"modified_at"`
}
