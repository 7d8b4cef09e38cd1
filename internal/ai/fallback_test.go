package ai

import (
	"strings"
	"testing"

	"formfill/internal/types"
)

func TestFallbackAnswerNeverEmptyHanded(t *testing.T) {
	answer := FallbackAnswer(types.AnswerQuestionInput{Question: "Anything at all?"})
	if answer.Source != types.SourceFallback {
		t.Errorf("source = %q, want fallback", answer.Source)
	}
	if answer.Action != types.ActionType || answer.Value == "" {
		t.Errorf("got %q/%q, want typed generic answer", answer.Action, answer.Value)
	}
}

func TestFallbackAnswerCanned(t *testing.T) {
	tests := []struct {
		name      string
		input     types.AnswerQuestionInput
		wantValue string
	}{
		{
			name:      "sponsorship declined",
			input:     types.AnswerQuestionInput{Question: "Will you require sponsorship?"},
			wantValue: "No",
		},
		{
			name:      "authorization affirmed",
			input:     types.AnswerQuestionInput{Question: "Are you legally eligible to work here?"},
			wantValue: "Yes",
		},
		{
			name:      "notice period from profile",
			input:     types.AnswerQuestionInput{Question: "Notice period?", Profile: types.Profile{NoticePeriod: "15 days"}},
			wantValue: "15 days",
		},
		{
			name:      "notice period default",
			input:     types.AnswerQuestionInput{Question: "When can you start?"},
			wantValue: "30 days",
		},
		{
			name:      "salary from profile",
			input:     types.AnswerQuestionInput{Question: "Salary expectations?", Profile: types.Profile{ExpectedCTC: "20 LPA"}},
			wantValue: "20 LPA",
		},
		{
			name:      "salary default",
			input:     types.AnswerQuestionInput{Question: "Expected compensation?"},
			wantValue: "Negotiable, as per industry standards",
		},
		{
			name: "experience years from profile",
			input: types.AnswerQuestionInput{
				Question: "How many years of experience do you have?",
				Profile: types.Profile{Experience: []types.ExperienceEntry{
					{Title: "Engineer", Duration: "4 years"},
				}},
			},
			wantValue: "4",
		},
		{
			name:      "experience years default",
			input:     types.AnswerQuestionInput{Question: "Years of experience?"},
			wantValue: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := FallbackAnswer(tt.input)
			if answer.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", answer.Value, tt.wantValue)
			}
			if answer.Source != types.SourceFallback {
				t.Errorf("source = %q, want fallback", answer.Source)
			}
		})
	}
}

func TestFallbackAnswerMotivation(t *testing.T) {
	answer := FallbackAnswer(types.AnswerQuestionInput{Question: "Why do you want to join us?"})
	if !strings.Contains(answer.Value, "qualified candidate") {
		t.Errorf("value = %q, want the generic candidate sentence", answer.Value)
	}
}

func TestFallbackAnswerFieldTypes(t *testing.T) {
	answer := FallbackAnswer(types.AnswerQuestionInput{Question: "I agree to the terms", FieldType: "checkbox"})
	if answer.Action != types.ActionCheck || answer.Value != "true" {
		t.Errorf("checkbox answer = %q/%q, want check/true", answer.Action, answer.Value)
	}

	answer = FallbackAnswer(types.AnswerQuestionInput{Question: "Upload your resume", FieldType: "file"})
	if answer.Action != types.ActionUpload {
		t.Errorf("file answer action = %q, want upload", answer.Action)
	}
}

func TestFallbackAnswerWithOptions(t *testing.T) {
	// Canned value matched against options.
	answer := FallbackAnswer(types.AnswerQuestionInput{
		Question: "Do you require sponsorship?",
		Options:  []string{"Yes", "No"},
	})
	if answer.Action != types.ActionSelect || answer.Value != "No" {
		t.Errorf("got %q/%q, want select/No", answer.Action, answer.Value)
	}

	// No canned match: the affirmative option wins.
	answer = FallbackAnswer(types.AnswerQuestionInput{
		Question: "Do you agree to the privacy policy?",
		Options:  []string{"No", "Yes"},
	})
	if answer.Action != types.ActionSelect || answer.Value != "Yes" {
		t.Errorf("got %q/%q, want select/Yes", answer.Action, answer.Value)
	}

	// Nothing matches at all: the first option keeps the form moving.
	answer = FallbackAnswer(types.AnswerQuestionInput{
		Question: "Pick a color",
		Options:  []string{"Red", "Blue"},
	})
	if answer.Action != types.ActionSelect || answer.Value != "Red" {
		t.Errorf("got %q/%q, want select/Red", answer.Action, answer.Value)
	}
}
