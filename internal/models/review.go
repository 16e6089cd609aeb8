package models

import (
	"fmt"
	"time"
)

// AnalysisStatus marks whether a note made it through analysis.
type AnalysisStatus string

const (
	AnalysisSucceeded AnalysisStatus = "succeeded"
	AnalysisFailed    AnalysisStatus = "failed"
)

// Analysis is the per-note outcome of a review run. A failed analysis
// still carries the note identity so the review can report it.
type Analysis struct {
	NotePath   string         `json:"note_path"`
	NoteTitle  string         `json:"note_title"`
	Summary    string         `json:"summary,omitempty"`
	Hypothesis string         `json:"hypothesis,omitempty"`
	FollowUp   string         `json:"follow_up,omitempty"`
	WordCount  int            `json:"word_count"`
	Status     AnalysisStatus `json:"status"`
	FailReason string         `json:"fail_reason,omitempty"`
}

// Failed reports whether the analysis did not complete.
func (a Analysis) Failed() bool { return a.Status == AnalysisFailed }

// Review is the aggregate handed to the composer. Entries keep the
// order the notes were located in.
type Review struct {
	Window      ReviewWindow `json:"window"`
	Entries     []Analysis   `json:"entries"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Failures counts entries that did not analyze.
func (r Review) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}

// ReviewWindow selects which notes a run looks at. Reference is the
// point the window counts back from; the zero value means "now".
type ReviewWindow struct {
	Days      int       `json:"days"`
	AllTime   bool      `json:"all_time"`
	Reference time.Time `json:"reference,omitempty"`
}

// Resolve returns the concrete [start, end] bounds of the window.
// For an all-time window start is the zero time.
func (w ReviewWindow) Resolve() (start, end time.Time) {
	end = w.Reference
	if end.IsZero() {
		end = time.Now()
	}
	if w.AllTime {
		return time.Time{}, end
	}
	return end.AddDate(0, 0, -w.Days), end
}

// EndDate returns the window end formatted as an ISO date. It names
// the review file for the run.
func (w ReviewWindow) EndDate() string {
	_, end := w.Resolve()
	return end.Format("2006-01-02")
}

// Describe renders the window for humans, e.g. "last 7 days".
func (w ReviewWindow) Describe() string {
	if w.AllTime {
		return "all time"
	}
	if w.Days == 1 {
		return "last 1 day"
	}
	return fmt.Sprintf("last %d days", w.Days)
}
