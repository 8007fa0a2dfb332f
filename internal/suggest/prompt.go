package suggest

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an editor who rewrites resume content. You never invent employers, titles, dates, degrees or metrics that are not in the input. You answer with JSON only.`

const rolePrompt = `Rewrite the bullet points of the job role below so they read as concise, results-focused accomplishments.

Rules:
- Keep every fact from the original bullets; do not add employers, titles, dates or numbers
- Start each bullet with a strong past-tense verb (present tense for a current role)
- One accomplishment per bullet, at most 200 characters each
- Return between 3 and 8 bullets
- Do NOT repeat the job heading line
- When a target job description is given, favour the skills it asks for that the original already shows

Respond with ONLY a JSON object of the form {"bullets": ["...", "..."]}, no other text.`

const summaryPrompt = `Write a professional summary for the resume described below.

Rules:
- Two to four sentences, at most 600 characters
- Third person implied; no "I" and no name
- Use only facts present in the input
- When a target job description is given, lead with the experience most relevant to it

Respond with ONLY a JSON object of the form {"summary": "..."}, no other text.`

// BuildRolePrompt asks for rewritten bullets for one job role.
func BuildRolePrompt(heading string, bullets []string, jobDescription string) string {
	var sb strings.Builder
	sb.WriteString(rolePrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("Role: %q\n", heading))
	writeJobDescription(&sb, jobDescription)
	sb.WriteString("---\n")
	for _, b := range bullets {
		sb.WriteString("- ")
		sb.WriteString(b)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildSummaryPrompt asks for a summary given the current one (possibly
// empty) and the role headings of the resume.
func BuildSummaryPrompt(current string, roles []string, jobDescription string) string {
	var sb strings.Builder
	sb.WriteString(summaryPrompt)
	sb.WriteString("\n\n---\n")
	if len(roles) > 0 {
		sb.WriteString("Roles:\n")
		for _, r := range roles {
			sb.WriteString("- ")
			sb.WriteString(r)
			sb.WriteString("\n")
		}
	}
	writeJobDescription(&sb, jobDescription)
	sb.WriteString("---\n")
	sb.WriteString(strings.TrimSpace(current))
	return sb.String()
}

func writeJobDescription(sb *strings.Builder, jd string) {
	if jd = strings.TrimSpace(jd); jd == "" {
		return
	}
	sb.WriteString("Target job description:\n")
	sb.WriteString(truncate(jd, 4000))
	sb.WriteString("\n")
}
