package profile

import (
	"regexp"
	"strings"

	"formfill/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-]?)?(?:\(?\d{3,5}\)?[\s\-]?)?\d{3}[\s\-]?\d{4,6}`)

	sectionPattern = regexp.MustCompile(`(?im)^\s*(technical skills|skills|work experience|experience|employment history|education|academics|projects)\s*:?\s*$`)

	ctcPattern    = regexp.MustCompile(`(?i)(?:current|present)\s*ctc\s*[:\-]?\s*([\d.]+\s*(?:lpa|lakhs?|l)\b[^\n,]*)`)
	expCtcPattern = regexp.MustCompile(`(?i)expected\s*ctc\s*[:\-]?\s*([\d.]+\s*(?:lpa|lakhs?|l)\b[^\n,]*)`)
	noticePattern = regexp.MustCompile(`(?i)notice\s*period\s*[:\-]?\s*([\w\s]{1,30}?(?:days?|weeks?|months?|immediate(?:ly)?))`)

	experienceLinePattern = regexp.MustCompile(`(?m)^\s*(.{2,60}?)\s*(?:[-–@]|\bat\b)\s*(.{2,60}?)\s*\(([^)]{4,40})\)\s*$`)
	educationLinePattern  = regexp.MustCompile(`(?i)(b\.?\s?tech|m\.?\s?tech|bachelor[^\n,]{0,40}|master[^\n,]{0,40}|b\.?e\.?|m\.?s\.?|ph\.?d\.?|mba)[\s,in]*([^\n,(]{0,50})`)
	yearPattern           = regexp.MustCompile(`(19|20)\d{2}`)
)

// ParseResumeText extracts a best-effort profile from raw resume text using
// regex heuristics. It never errors: unparseable sections simply stay empty.
func ParseResumeText(text string) types.Profile {
	var p types.Profile
	if strings.TrimSpace(text) == "" {
		return p
	}

	p.Email = emailPattern.FindString(text)
	p.Phone = findPhone(text)
	p.Name = guessName(text)
	p.Skills = parseSkills(text)
	p.Experience = parseExperience(text)
	p.Education = parseEducation(text)

	if m := ctcPattern.FindStringSubmatch(text); m != nil {
		p.CurrentCTC = strings.TrimSpace(m[1])
	}
	if m := expCtcPattern.FindStringSubmatch(text); m != nil {
		p.ExpectedCTC = strings.TrimSpace(m[1])
	}
	if m := noticePattern.FindStringSubmatch(text); m != nil {
		p.NoticePeriod = strings.TrimSpace(m[1])
	}

	return p
}

// findPhone returns the first match with enough digits to be a real number.
// The loose pattern also matches years and zip codes, so short hits are
// discarded.
func findPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, 10) {
		digits := 0
		for _, r := range candidate {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 10 {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// guessName takes the first non-empty line that is not an email, URL, or
// heading and looks like a human name.
func guessName(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "-_=*"))
		if line == "" {
			continue
		}
		if strings.Contains(line, "@") || strings.Contains(line, "http") {
			continue
		}
		if sectionPattern.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 1 || len(words) > 4 || len(line) > 60 {
			continue
		}
		if yearPattern.MatchString(line) {
			continue
		}
		return line
	}
	return ""
}

// sectionBody returns the text between a heading matching name and the next
// recognized heading.
func sectionBody(text string, names ...string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ":")))
		for _, name := range names {
			if trimmed == name {
				start = i + 1
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return ""
	}

	var body []string
	for _, line := range lines[start:] {
		if sectionPattern.MatchString(line) {
			break
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n")
}

func parseSkills(text string) []string {
	body := sectionBody(text, "skills", "technical skills")
	if body == "" {
		return nil
	}

	var skills []string
	seen := make(map[string]bool)
	for field := range strings.SplitSeq(body, "\n") {
		for skill := range strings.SplitSeq(strings.ReplaceAll(field, "・", ","), ",") {
			skill = strings.TrimSpace(strings.Trim(skill, "-•*"))
			if skill == "" || len(skill) > 40 {
				continue
			}
			key := strings.ToLower(skill)
			if !seen[key] {
				seen[key] = true
				skills = append(skills, skill)
			}
		}
	}
	return skills
}

func parseExperience(text string) []types.ExperienceEntry {
	body := sectionBody(text, "experience", "work experience", "employment history")
	if body == "" {
		body = text
	}

	var entries []types.ExperienceEntry
	for _, m := range experienceLinePattern.FindAllStringSubmatch(body, 20) {
		entries = append(entries, types.ExperienceEntry{
			Title:    strings.TrimSpace(m[1]),
			Company:  strings.TrimSpace(m[2]),
			Duration: strings.TrimSpace(m[3]),
		})
	}
	return entries
}

func parseEducation(text string) []types.EducationEntry {
	body := sectionBody(text, "education", "academics")
	if body == "" {
		body = text
	}

	var entries []types.EducationEntry
	for _, m := range educationLinePattern.FindAllStringSubmatch(body, 10) {
		entry := types.EducationEntry{
			Degree: strings.TrimSpace(m[1]),
			Field:  strings.TrimSpace(m[2]),
		}
		if entry.Degree == "" {
			continue
		}
		entries = append(entries, entry)
		if len(entries) >= 5 {
			break
		}
	}
	return entries
}
