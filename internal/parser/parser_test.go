package parser

import (
	"bytes"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - sleep\n  - energy\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) < 2 || r.Tags[0] != "sleep" || r.Tags[1] != "energy" {
		t.Errorf("tags = %v, want [sleep energy]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Body != string(input) {
		t.Errorf("body = %q, want the full input", r.Body)
	}
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Hello\nno closing delimiter\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter without a closing delimiter")
	}
	if r.Body != string(input) {
		t.Errorf("body = %q, want the full input", r.Body)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	fm := map[string]interface{}{
		"title": "Morning walk",
		"date":  "2026-02-10",
		"tags":  []interface{}{"energy"},
	}
	body := "# Morning walk\nFelt sharper afterwards.\n"

	out, err := Render(fm, body)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	r, err := Parse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Title != "Morning walk" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Frontmatter["date"] != "2026-02-10" {
		t.Errorf("date = %v", r.Frontmatter["date"])
	}
	if r.Body != body {
		t.Errorf("body = %q, want %q", r.Body, body)
	}

	// Same inputs render to identical bytes.
	again, err := Render(fm, body)
	if err != nil {
		t.Fatalf("render again: %v", err)
	}
	if !bytes.Equal(out, again) {
		t.Errorf("render is not deterministic:\n%s\nvs\n%s", out, again)
	}
}

func TestRender_NoFrontmatter(t *testing.T) {
	out, err := Render(nil, "plain body\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "plain body\n" {
		t.Errorf("out = %q", out)
	}
}

func TestExtractLinks_Basic(t *testing.T) {
	body := "See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again."
	links := extractLinks(body)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0] != "Note A" || links[1] != "Note B" {
		t.Errorf("links = %v", links)
	}
}

func TestExtractLinks_EmptyTarget(t *testing.T) {
	links := extractLinks("see [[ ]] and [[|alias]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestTags_InlineAndFrontmatter(t *testing.T) {
	input := []byte("---\ntags:\n  - alpha\n---\nSome text #beta and #alpha again.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// alpha from frontmatter, beta from body; alpha not duplicated.
	if len(r.Tags) != 2 || r.Tags[0] != "alpha" || r.Tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", r.Tags)
	}
}

func TestFrontmatterTags_StringValue(t *testing.T) {
	tags := FrontmatterTags(map[string]interface{}{"tags": "solo"})
	if len(tags) != 1 || tags[0] != "solo" {
		t.Errorf("tags = %v, want [solo]", tags)
	}
}

func TestInlineTags_Dedup(t *testing.T) {
	tags := InlineTags("#focus then #sleep then #focus")
	if len(tags) != 2 || tags[0] != "focus" || tags[1] != "sleep" {
		t.Errorf("tags = %v, want [focus sleep]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	body := "# H1 Title\ntext"
	title := deriveTitle(fm, body)
	if title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(nil, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}
