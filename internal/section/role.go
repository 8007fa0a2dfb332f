package section

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TitleMatcher reports whether a line reads like a job title.
type TitleMatcher func(line string) bool

// DefaultTitleKeywords is the stock job-title vocabulary. Parser rule files
// may extend it.
var DefaultTitleKeywords = []string{
	"engineer", "developer", "programmer", "architect", "manager", "director",
	"lead", "head of", "chief", "officer", "president", "analyst", "scientist",
	"consultant", "designer", "specialist", "coordinator", "administrator",
	"supervisor", "executive", "associate", "assistant", "intern", "technician",
	"representative", "accountant", "researcher", "advisor", "strategist",
	"principal", "senior", "junior", "staff", "owner", "partner", "teacher",
	"instructor", "nurse", "sre", "devops",
}

// KeywordMatcher matches lines containing any keyword at a word start,
// case-insensitively.
func KeywordMatcher(keywords []string) TitleMatcher {
	var quoted []string
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(k)))
	}
	if len(quoted) == 0 {
		return func(string) bool { return false }
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
	return func(line string) bool {
		return re.MatchString(line)
	}
}

// DefaultTitleMatcher matches DefaultTitleKeywords.
var DefaultTitleMatcher = KeywordMatcher(DefaultTitleKeywords)

var dateLike = regexp.MustCompile(`(?i)\b(?:19|20)\d{2}\b|\b(?:present|current|now|ongoing)\b|\b\d{1,2}/\d{2,4}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s*['’]?\d{2,4}\b`)

// LooksLikeDateRange reports whether s reads like a date or date range.
func LooksLikeDateRange(s string) bool {
	return dateLike.MatchString(s)
}

// HasDateSeparator reports whether line has a "|" separated segment that reads
// like a date range.
func HasDateSeparator(line string) bool {
	if !strings.Contains(line, "|") {
		return false
	}
	for _, part := range strings.Split(line, "|") {
		if LooksLikeDateRange(part) {
			return true
		}
	}
	return false
}

// IsMetaLine reports whether a line after a role heading reads as its
// company/date line.
func IsMetaLine(text string) bool {
	return strings.Contains(text, "|") || LooksLikeDateRange(text)
}

// IsCompanyLine reports whether a bare line after a serialized role heading
// reads as the company name rather than prose.
func IsCompanyLine(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || strings.Contains(t, "\n") || utf8.RuneCountInString(t) > 80 {
		return false
	}
	return !strings.HasSuffix(t, ".") || len(strings.Fields(t)) <= 3
}

// RoleLine is the decomposed heading of a job role.
type RoleLine struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	DateRange string `json:"date_range"`
}

// Heading renders the canonical "Title, Company | DateRange" line, omitting
// empty parts and their separators.
func (r RoleLine) Heading() string {
	var left []string
	if r.Title != "" {
		left = append(left, r.Title)
	}
	if r.Company != "" {
		left = append(left, r.Company)
	}
	head := strings.Join(left, ", ")
	switch {
	case r.DateRange == "":
		return head
	case head == "":
		return r.DateRange
	default:
		return head + " | " + r.DateRange
	}
}

// SplitRoleLine decomposes a role heading such as
// "Senior Engineer, Acme Corp | Jan 2020 – Present". The line is split on "|"
// first; a two-part line whose first part holds a comma is read as
// "Title, Company | Date". Otherwise the date-like segment becomes the date
// range, and of the remaining segments the one isTitle accepts is the title.
// Without a match the first segment is the title.
func SplitRoleLine(line string, isTitle TitleMatcher) RoleLine {
	var parts []string
	for _, p := range strings.Split(line, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return RoleLine{}
	}

	if len(parts) == 2 && strings.Contains(parts[0], ",") {
		title, company := splitComma(parts[0])
		return RoleLine{Title: title, Company: company, DateRange: parts[1]}
	}

	var r RoleLine
	rest := parts[:0:0]
	for i := len(parts) - 1; i >= 0; i-- {
		if r.DateRange == "" && len(parts) > 1 && LooksLikeDateRange(parts[i]) {
			r.DateRange = parts[i]
			continue
		}
		rest = append([]string{parts[i]}, rest...)
	}

	switch len(rest) {
	case 0:
	case 1:
		r.Title, r.Company = splitComma(rest[0])
	default:
		ti := 0
		if strings.Contains(rest[0], ",") {
			r.Title, r.Company = splitComma(rest[0])
			if extra := strings.Join(rest[1:], ", "); r.Company == "" {
				r.Company = extra
			} else {
				r.Company += ", " + extra
			}
			return r
		}
		if isTitle != nil {
			for i, p := range rest {
				if isTitle(p) {
					ti = i
					break
				}
			}
		}
		r.Title = rest[ti]
		var others []string
		for i, p := range rest {
			if i != ti {
				others = append(others, p)
			}
		}
		r.Company = strings.Join(others, ", ")
	}
	return r
}

// SplitMetaLine reads a company/date line that follows a role heading, such as
// "Acme Corp | 2020 – 2023".
func SplitMetaLine(line string) (company, dateRange string) {
	var others []string
	for _, p := range strings.Split(line, "|") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if dateRange == "" && LooksLikeDateRange(p) {
			dateRange = p
			continue
		}
		others = append(others, p)
	}
	return strings.Join(others, ", "), dateRange
}

// DescribeRole combines a role heading with its optional meta line. Parts the
// heading already carries win over the meta line.
func DescribeRole(heading, meta string, isTitle TitleMatcher) RoleLine {
	r := SplitRoleLine(heading, isTitle)
	if strings.TrimSpace(meta) == "" {
		return r
	}
	company, date := SplitMetaLine(meta)
	if r.Company == "" {
		r.Company = company
	}
	if r.DateRange == "" {
		r.DateRange = date
	}
	return r
}

// DescribeSlottedRole reads the serialized role form: a heading whose date
// sits in its own slot, followed by an optional company line. The heading
// wins over the slot, and the slot over the company line.
func DescribeSlottedRole(heading, date, company string, isTitle TitleMatcher) RoleLine {
	r := SplitRoleLine(heading, isTitle)
	if r.DateRange == "" {
		r.DateRange = strings.TrimSpace(date)
	}
	if strings.TrimSpace(company) == "" {
		return r
	}
	c, d := SplitMetaLine(company)
	if r.Company == "" {
		r.Company = c
	}
	if r.DateRange == "" {
		r.DateRange = d
	}
	return r
}

func splitComma(s string) (string, string) {
	before, after, ok := strings.Cut(s, ",")
	if !ok {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
