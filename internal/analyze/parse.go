package analyze

import "strings"

// Response holds the three labelled sections of a model reply.
type Response struct {
	Summary    string
	Hypothesis string
	FollowUp   string
}

// ParseResponse extracts the SUMMARY / HYPOTHESIS / FOLLOW_UP sections.
// Unlabelled continuation lines attach to the last seen label. A reply
// with no labels at all is kept whole as the summary rather than lost.
func ParseResponse(text string) Response {
	var r Response
	var cur *string

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SUMMARY:"):
			r.Summary = strings.TrimSpace(strings.TrimPrefix(trimmed, "SUMMARY:"))
			cur = &r.Summary
		case strings.HasPrefix(trimmed, "HYPOTHESIS:"):
			r.Hypothesis = strings.TrimSpace(strings.TrimPrefix(trimmed, "HYPOTHESIS:"))
			cur = &r.Hypothesis
		case strings.HasPrefix(trimmed, "FOLLOW_UP:"):
			r.FollowUp = strings.TrimSpace(strings.TrimPrefix(trimmed, "FOLLOW_UP:"))
			cur = &r.FollowUp
		default:
			if cur != nil && trimmed != "" {
				if *cur != "" {
					*cur += " "
				}
				*cur += trimmed
			}
		}
	}

	if r.Summary == "" && r.Hypothesis == "" && r.FollowUp == "" {
		r.Summary = strings.TrimSpace(text)
	}
	return r
}
