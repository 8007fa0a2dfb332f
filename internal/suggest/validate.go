package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/resumedoc/internal/markup"
)

// Suggestion is the model's answer: bullets for a role or a summary text.
type Suggestion struct {
	Bullets []string `json:"bullets,omitempty"`
	Summary string   `json:"summary,omitempty"`
}

// HTML renders the suggestion as a content fragment.
func (s Suggestion) HTML() string {
	if len(s.Bullets) > 0 {
		items := make([]string, len(s.Bullets))
		for i, b := range s.Bullets {
			items[i] = markup.Escape(b)
		}
		return markup.List(items)
	}
	var out strings.Builder
	for _, p := range strings.Split(s.Summary, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out.WriteString(markup.Paragraph(markup.Escape(p)))
		}
	}
	return out.String()
}

// ParseSuggestion decodes model output. A bare JSON array is read as bullets.
func ParseSuggestion(text string) (Suggestion, error) {
	text = stripCodeBlock(text)
	var s Suggestion
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &s.Bullets); err != nil {
			return s, fmt.Errorf("parse bullets json: %w (raw: %s)", err, truncate(text, 200))
		}
		return s, nil
	}
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return s, fmt.Errorf("parse suggestion json: %w (raw: %s)", err, truncate(text, 200))
	}
	return s, nil
}

const (
	maxBullets    = 8
	minBulletLen  = 3
	maxBulletLen  = 300
	minSummaryLen = 20
	maxSummaryLen = 1200
)

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// ValidateSuggestion drops bullets that are too short, too long, or look
// like prompt injection, strips stray bullet markers, and keeps at most
// eight. It returns false when nothing usable remains.
func ValidateSuggestion(s *Suggestion) bool {
	if s == nil {
		return false
	}
	kept := s.Bullets[:0]
	for _, b := range s.Bullets {
		b, _ = markup.StripBullet(b)
		n := utf8.RuneCountInString(b)
		if n < minBulletLen || n > maxBulletLen || injectionPattern.MatchString(b) {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) > maxBullets {
		kept = kept[:maxBullets]
	}
	s.Bullets = kept

	s.Summary = strings.TrimSpace(s.Summary)
	if s.Summary != "" {
		n := utf8.RuneCountInString(s.Summary)
		if n < minSummaryLen || n > maxSummaryLen || injectionPattern.MatchString(s.Summary) {
			s.Summary = ""
		}
	}
	return len(s.Bullets) > 0 || s.Summary != ""
}
