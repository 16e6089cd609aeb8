package analyze

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert at analyzing personal observation notes " +
	"and identifying patterns, insights, and areas for further exploration."

// buildUserPrompt formats the instruction block the model responds to.
// The labelled output format is what ParseResponse expects back.
func buildUserPrompt(title, body string) string {
	var b strings.Builder
	b.WriteString("Please analyze the following observation note and provide:\n")
	b.WriteString("1. A concise summary of the key observations\n")
	b.WriteString("2. A hypothesis about patterns or underlying causes\n")
	b.WriteString("3. A follow-up question for deeper investigation\n\n")
	if title != "" {
		fmt.Fprintf(&b, "Note title: %s\n\n", title)
	}
	b.WriteString("Observation note:\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\nFormat your response exactly as:\n")
	b.WriteString("SUMMARY: [your summary]\n")
	b.WriteString("HYPOTHESIS: [your hypothesis]\n")
	b.WriteString("FOLLOW_UP: [your follow-up question]\n")
	return b.String()
}
