package mcpserver

// ObservationFormatContract describes the canonical observation note
// format that LLM consumers should follow when referencing notes.
const ObservationFormatContract = `# Munin Observation Note Format

Every observation note in the vault follows this structure.

## Structure

` + "```" + `markdown
---
date: 2026-08-20                    # ISO-8601 date of the observation
type: observation                   # observation | insight | reflection
status: active                      # OPTIONAL - lifecycle marker
tags:                               # OPTIONAL - YAML list
  - sleep
  - caffeine
---

# Short descriptive title

Free-form Markdown describing what was observed: symptoms, context,
severity, anything unusual. Use [[wikilinks]] to reference related notes.
` + "```" + `

## Rules

1. **File names** follow ` + "`" + `YYYY-MM-DD--slug.md` + "`" + ` (the tidy command enforces this).
2. **Frontmatter is optional.** A note without it is still analyzed; the
   whole file is treated as body.
3. **The body is what gets analyzed.** The weekly review summarizes it,
   infers a hypothesis, and asks one follow-up question per note.
4. **Tags** are lowercase, kebab-case.
5. **Encoding** is UTF-8 with a trailing newline.
`
