package profile

import (
	"testing"

	"formfill/internal/types"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 415 555 2671

Skills:
Go, Python, Kubernetes
PostgreSQL, Redis

Experience:
Senior Engineer - Acme Corp (3 years)
Engineer at Widget Inc (2 years)

Education:
B.Tech Computer Science

Current CTC: 18 LPA
Expected CTC: 24 LPA
Notice Period: 45 days
`

func TestParseResumeText(t *testing.T) {
	p := ParseResumeText(sampleResume)

	if p.Name != "Jane Doe" {
		t.Errorf("name = %q, want Jane Doe", p.Name)
	}
	if p.Email != "jane.doe@example.com" {
		t.Errorf("email = %q, want jane.doe@example.com", p.Email)
	}
	if p.Phone == "" {
		t.Error("expected a phone number")
	}

	wantSkills := []string{"Go", "Python", "Kubernetes", "PostgreSQL", "Redis"}
	if len(p.Skills) != len(wantSkills) {
		t.Fatalf("skills = %v, want %v", p.Skills, wantSkills)
	}
	for i, skill := range wantSkills {
		if p.Skills[i] != skill {
			t.Errorf("skills[%d] = %q, want %q", i, p.Skills[i], skill)
		}
	}

	if len(p.Experience) != 2 {
		t.Fatalf("experience entries = %d, want 2", len(p.Experience))
	}
	if p.Experience[0].Title != "Senior Engineer" || p.Experience[0].Company != "Acme Corp" {
		t.Errorf("first experience = %+v", p.Experience[0])
	}
	if p.Experience[0].Duration != "3 years" {
		t.Errorf("first duration = %q, want 3 years", p.Experience[0].Duration)
	}

	if len(p.Education) == 0 {
		t.Fatal("expected education entries")
	}

	if p.CurrentCTC != "18 LPA" {
		t.Errorf("current CTC = %q, want 18 LPA", p.CurrentCTC)
	}
	if p.ExpectedCTC != "24 LPA" {
		t.Errorf("expected CTC = %q, want 24 LPA", p.ExpectedCTC)
	}
	if p.NoticePeriod != "45 days" {
		t.Errorf("notice period = %q, want 45 days", p.NoticePeriod)
	}
}

func TestParseResumeTextEmpty(t *testing.T) {
	p := ParseResumeText("   \n  ")
	if !p.IsEmpty() {
		t.Errorf("expected empty profile, got %+v", p)
	}
}

func TestMergeSuppliedWins(t *testing.T) {
	supplied := types.Profile{
		Name:        "Supplied Name",
		Email:       "supplied@example.com",
		Skills:      []string{"Go", "Rust"},
		ExpectedCTC: "30 LPA",
	}
	parsed := types.Profile{
		Name:         "Parsed Name",
		Email:        "parsed@example.com",
		Phone:        "+1 555 123 4567",
		Skills:       []string{"go", "Python"},
		NoticePeriod: "30 days",
		Experience:   []types.ExperienceEntry{{Title: "Engineer"}},
	}

	merged := Merge(supplied, parsed)

	if merged.Name != "Supplied Name" {
		t.Errorf("name = %q, supplied value must win", merged.Name)
	}
	if merged.Email != "supplied@example.com" {
		t.Errorf("email = %q, supplied value must win", merged.Email)
	}
	if merged.Phone != "+1 555 123 4567" {
		t.Errorf("phone = %q, parsed value must fill the gap", merged.Phone)
	}
	if merged.NoticePeriod != "30 days" {
		t.Errorf("notice period = %q, parsed value must fill the gap", merged.NoticePeriod)
	}
	if merged.ExpectedCTC != "30 LPA" {
		t.Errorf("expected CTC = %q, supplied value must win", merged.ExpectedCTC)
	}

	// Skills are unioned case-insensitively, supplied order first.
	wantSkills := []string{"Go", "Rust", "Python"}
	if len(merged.Skills) != len(wantSkills) {
		t.Fatalf("skills = %v, want %v", merged.Skills, wantSkills)
	}
	for i, skill := range wantSkills {
		if merged.Skills[i] != skill {
			t.Errorf("skills[%d] = %q, want %q", i, merged.Skills[i], skill)
		}
	}

	if len(merged.Experience) != 1 {
		t.Errorf("experience = %v, parsed entries must fill the gap", merged.Experience)
	}
}

func TestResolve(t *testing.T) {
	supplied := types.Profile{Name: "Jane"}

	// Blank resume text leaves the supplied profile untouched.
	resolved := Resolve(supplied, "  ")
	if resolved.Name != "Jane" || resolved.Email != "" {
		t.Errorf("resolved = %+v, want supplied profile unchanged", resolved)
	}

	resolved = Resolve(supplied, sampleResume)
	if resolved.Name != "Jane" {
		t.Errorf("name = %q, supplied value must win", resolved.Name)
	}
	if resolved.Email != "jane.doe@example.com" {
		t.Errorf("email = %q, want scraped email", resolved.Email)
	}
}
