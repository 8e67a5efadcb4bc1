package screening

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"recruit-backend/internal/applications"
)

// Parser turns resume text into structured fields. knownSkills extends the
// parser's own vocabulary, typically with the job's skill list.
type Parser interface {
	Parse(ctx context.Context, text string, knownSkills []string) (applications.ParsedResume, error)
}

// DefaultSkills is the vocabulary TextParser scans for when no other skills are given.
var DefaultSkills = []string{
	"go", "golang", "java", "python", "javascript", "typescript", "ruby", "php", "c#", "c++", "rust", "kotlin", "swift",
	"sql", "postgresql", "mysql", "mongodb", "redis", "kafka", "elasticsearch",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure", "linux",
	"react", "vue", "angular", "node.js", "django", "rails", "spring",
	"rest", "graphql", "grpc", "ci/cd", "git", "agile", "scrum",
	"figma", "excel", "salesforce", "seo", "accounting",
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{7,}\d`)
	linkPattern  = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"')]+`)
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
	eduPattern   = regexp.MustCompile(`(?i)\b(bachelor|master|ph\.?d|doctorate|b\.?sc|m\.?sc|mba|b\.?a\.|m\.?a\.|associate degree|diploma)\b`)
)

const summaryLimit = 280

// TextParser is a regex field scanner over extracted text.
type TextParser struct {
	Vocabulary []string
	Now        func() time.Time
}

func NewTextParser() *TextParser {
	return &TextParser{
		Vocabulary: DefaultSkills,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

func (p *TextParser) Parse(ctx context.Context, text string, knownSkills []string) (applications.ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return applications.ParsedResume{}, err
	}
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}

	lines := nonEmptyLines(text)
	out := applications.ParsedResume{
		Email:           emailPattern.FindString(text),
		Phone:           strings.TrimSpace(phonePattern.FindString(text)),
		Links:           uniqueStrings(linkPattern.FindAllString(text, -1)),
		Skills:          findSkills(text, append(append([]string{}, p.Vocabulary...), knownSkills...)),
		Education:       educationLines(lines),
		ExperienceYears: experienceYears(text),
		Summary:         summarize(lines),
		ParsedAt:        now,
	}
	if len(lines) > 0 && !strings.Contains(lines[0], "@") && len(lines[0]) <= 60 {
		out.Name = lines[0]
	}
	return out, nil
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// findSkills matches vocabulary terms on token boundaries, case-insensitively.
// The result keeps the vocabulary's spelling, sorted and deduplicated.
func findSkills(text string, vocabulary []string) []string {
	haystack := " " + normalizeText(text) + " "
	seen := map[string]bool{}
	var out []string
	for _, skill := range vocabulary {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			continue
		}
		if strings.Contains(haystack, " "+normalizeText(key)+" ") {
			seen[key] = true
			out = append(out, strings.TrimSpace(skill))
		}
	}
	sort.Strings(out)
	return out
}

// normalizeText lowercases and replaces separators so terms like "node.js"
// and "ci/cd" survive as single tokens.
func normalizeText(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '#', r == '+', r == '.', r == '/', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	for i, f := range fields {
		fields[i] = strings.TrimRight(f, ".")
	}
	return strings.Join(fields, " ")
}

func educationLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if eduPattern.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}

func experienceYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best && n <= 50 {
			best = n
		}
	}
	return best
}

func summarize(lines []string) string {
	joined := strings.Join(lines, " ")
	if len(joined) <= summaryLimit {
		return joined
	}
	cut := strings.LastIndex(joined[:summaryLimit], " ")
	if cut <= 0 {
		cut = summaryLimit
	}
	return joined[:cut] + "..."
}

func uniqueStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
