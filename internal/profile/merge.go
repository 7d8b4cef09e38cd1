package profile

import (
	"strings"

	"formfill/internal/types"
)

// Merge combines a directly supplied profile with one parsed from a resume.
// Supplied fields always win; parsed values only fill gaps. Skill lists are
// unioned case-insensitively with the supplied order kept first.
func Merge(supplied, parsed types.Profile) types.Profile {
	merged := supplied

	if merged.Name == "" {
		merged.Name = parsed.Name
	}
	if merged.Email == "" {
		merged.Email = parsed.Email
	}
	if merged.Phone == "" {
		merged.Phone = parsed.Phone
	}
	if merged.Location == "" {
		merged.Location = parsed.Location
	}
	if merged.CurrentCTC == "" {
		merged.CurrentCTC = parsed.CurrentCTC
	}
	if merged.ExpectedCTC == "" {
		merged.ExpectedCTC = parsed.ExpectedCTC
	}
	if merged.NoticePeriod == "" {
		merged.NoticePeriod = parsed.NoticePeriod
	}

	merged.Skills = unionSkills(supplied.Skills, parsed.Skills)

	if len(merged.Experience) == 0 {
		merged.Experience = parsed.Experience
	}
	if len(merged.Education) == 0 {
		merged.Education = parsed.Education
	}

	return merged
}

// Resolve produces the effective profile for a request: the supplied profile
// merged with whatever can be scraped from the resume text.
func Resolve(supplied types.Profile, resumeText string) types.Profile {
	if strings.TrimSpace(resumeText) == "" {
		return supplied
	}
	return Merge(supplied, ParseResumeText(resumeText))
}

func unionSkills(first, second []string) []string {
	if len(first) == 0 {
		return second
	}
	if len(second) == 0 {
		return first
	}

	seen := make(map[string]bool, len(first))
	union := make([]string, 0, len(first)+len(second))
	for _, skill := range first {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		union = append(union, skill)
	}
	for _, skill := range second {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		union = append(union, skill)
	}
	return union
}
