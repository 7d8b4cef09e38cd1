package heuristics

import (
	"testing"

	"formfill/internal/types"
)

func TestMatchDisabilityAlwaysZero(t *testing.T) {
	tests := []struct {
		name       string
		input      types.AnswerQuestionInput
		wantAction types.Action
		wantValue  string
	}{
		{
			name:       "free text field",
			input:      types.AnswerQuestionInput{Question: "What is your disability percentage?"},
			wantAction: types.ActionType,
			wantValue:  "0%",
		},
		{
			name: "select with numeric options",
			input: types.AnswerQuestionInput{
				Question: "Disability percentage",
				Options:  []string{"0%", "10%", "50%"},
			},
			wantAction: types.ActionSelect,
			wantValue:  "0%",
		},
		{
			name: "select with yes/no options",
			input: types.AnswerQuestionInput{
				Question: "Are you differently abled?",
				Options:  []string{"Yes", "No"},
			},
			wantAction: types.ActionSelect,
			wantValue:  "No",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := Match(tt.input)
			if answer == nil {
				t.Fatal("expected a heuristic answer, got nil")
			}
			if answer.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", answer.Action, tt.wantAction)
			}
			if answer.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", answer.Value, tt.wantValue)
			}
			if answer.Source != types.SourceHeuristic {
				t.Errorf("source = %q, want %q", answer.Source, types.SourceHeuristic)
			}
			if answer.Reason != "disability_percentage" {
				t.Errorf("reason = %q, want disability_percentage", answer.Reason)
			}
		})
	}
}

func TestMatchWorkAuthorization(t *testing.T) {
	tests := []struct {
		name      string
		question  string
		wantValue string
	}{
		{"sponsorship is declined", "Do you require visa sponsorship?", "No"},
		{"authorization is affirmed", "Are you legally authorized to work in the US?", "Yes"},
		{"right to work is affirmed", "Do you have the right to work in the UK?", "Yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := Match(types.AnswerQuestionInput{Question: tt.question})
			if answer == nil {
				t.Fatal("expected a heuristic answer, got nil")
			}
			if answer.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", answer.Value, tt.wantValue)
			}
		})
	}
}

func TestMatchNoticePeriod(t *testing.T) {
	profile := types.Profile{NoticePeriod: "60 days"}

	answer := Match(types.AnswerQuestionInput{
		Question: "What is your notice period?",
		Profile:  profile,
	})
	if answer == nil {
		t.Fatal("expected a heuristic answer, got nil")
	}
	if answer.Value != "60 days" {
		t.Errorf("value = %q, want profile notice period", answer.Value)
	}

	// Without a profile value the default applies.
	answer = Match(types.AnswerQuestionInput{Question: "How soon can you join?"})
	if answer == nil {
		t.Fatal("expected a heuristic answer, got nil")
	}
	if answer.Value != "30 days" {
		t.Errorf("value = %q, want 30 days default", answer.Value)
	}
}

func TestMatchCTCDeclinesWithoutFigure(t *testing.T) {
	// No CTC on file: the rule matches the pattern but declines, so the
	// question falls through to the model tier.
	if answer := Match(types.AnswerQuestionInput{Question: "What is your expected CTC?"}); answer != nil {
		t.Fatalf("expected nil, got %+v", answer)
	}

	answer := Match(types.AnswerQuestionInput{
		Question: "Expected salary?",
		Profile:  types.Profile{ExpectedCTC: "12 LPA"},
	})
	if answer == nil {
		t.Fatal("expected a heuristic answer, got nil")
	}
	if answer.Value != "12 LPA" {
		t.Errorf("value = %q, want 12 LPA", answer.Value)
	}
}

func TestMatchRelocation(t *testing.T) {
	answer := Match(types.AnswerQuestionInput{
		Question: "Are you willing to relocate to Bangalore?",
		Options:  []string{"No", "Yes, willing to relocate"},
	})
	if answer == nil {
		t.Fatal("expected a heuristic answer, got nil")
	}
	if answer.Action != types.ActionSelect || answer.Value != "Yes, willing to relocate" {
		t.Errorf("got %q/%q, want select of affirmative option", answer.Action, answer.Value)
	}

	answer = Match(types.AnswerQuestionInput{
		Question:  "I am willing to relocate",
		FieldType: "checkbox",
	})
	if answer == nil {
		t.Fatal("expected a heuristic answer, got nil")
	}
	if answer.Action != types.ActionCheck {
		t.Errorf("action = %q, want check for checkbox field", answer.Action)
	}
}

func TestMatchContactFields(t *testing.T) {
	profile := types.Profile{Email: "jane@example.com", Phone: "+91 98765 43210"}

	answer := Match(types.AnswerQuestionInput{Question: "Email address", Profile: profile})
	if answer == nil || answer.Value != "jane@example.com" {
		t.Fatalf("email answer = %+v, want profile email", answer)
	}

	answer = Match(types.AnswerQuestionInput{Question: "Mobile number", Profile: profile})
	if answer == nil || answer.Value != "+91 98765 43210" {
		t.Fatalf("phone answer = %+v, want profile phone", answer)
	}

	// Without profile data the contact rules decline.
	if answer := Match(types.AnswerQuestionInput{Question: "Email address"}); answer != nil {
		t.Fatalf("expected nil without profile email, got %+v", answer)
	}
}

func TestMatchNoRule(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"Describe a challenging project you worked on",
	}
	for _, question := range tests {
		if answer := Match(types.AnswerQuestionInput{Question: question}); answer != nil {
			t.Errorf("Match(%q) = %+v, want nil", question, answer)
		}
	}
}

func TestRuleNamesOrder(t *testing.T) {
	names := RuleNames()
	if len(names) == 0 {
		t.Fatal("expected rule names")
	}
	// The disability rule must stay first so broader percentage questions
	// cannot shadow it.
	if names[0] != "disability_percentage" {
		t.Errorf("first rule = %q, want disability_percentage", names[0])
	}
}

func TestTotalExperienceYears(t *testing.T) {
	tests := []struct {
		name    string
		profile types.Profile
		want    float64
	}{
		{
			name: "explicit years summed",
			profile: types.Profile{Experience: []types.ExperienceEntry{
				{Title: "Engineer", Duration: "2 years"},
				{Title: "Senior Engineer", Duration: "1.5 yrs"},
			}},
			want: 3.5,
		},
		{
			name: "unparseable durations count as one year",
			profile: types.Profile{Experience: []types.ExperienceEntry{
				{Title: "Engineer", Duration: "Jan 2020 - Mar 2021"},
				{Title: "Intern", Duration: ""},
			}},
			want: 2,
		},
		{
			name:    "empty history",
			profile: types.Profile{},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalExperienceYears(tt.profile); got != tt.want {
				t.Errorf("TotalExperienceYears() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBestOption(t *testing.T) {
	options := []string{"0-1 years", "1-3 years", "3-5 years", "5+ years"}

	tests := []struct {
		name    string
		value   string
		options []string
		want    string
		wantOK  bool
	}{
		{"exact match", "Yes", []string{"Yes", "No"}, "Yes", true},
		{"case insensitive", "yes", []string{"Yes", "No"}, "Yes", true},
		{"punctuation normalized", "yes!", []string{"Yes", "No"}, "Yes", true},
		{"substring match", "3-5", options, "3-5 years", true},
		{"token overlap", "approximately 1 year", options, "0-1 years", true},
		{"no match", "maybe", []string{"Red", "Blue"}, "", false},
		{"empty options", "yes", nil, "", false},
		{"empty value", "", []string{"Yes", "No"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestOption(tt.value, tt.options)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("BestOption(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
