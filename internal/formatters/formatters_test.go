package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"formfill/internal/types"
)

func TestFormatJSON(t *testing.T) {
	answer := types.FieldAnswer{
		Action: types.ActionSelect,
		Value:  "Yes",
		Source: types.SourceHeuristic,
	}

	output, err := GlobalRegistry.Format(answer, "json")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded types.FieldAnswer
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Value != "Yes" {
		t.Errorf("value = %q, want Yes", decoded.Value)
	}
}

func TestFormatAnswerText(t *testing.T) {
	answer := types.FieldAnswer{
		Action: types.ActionType,
		Value:  "30 days",
		Source: types.SourceFallback,
		Reason: "fallback: canned answer",
	}

	output, err := GlobalRegistry.Format(answer, "text")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{"Action: type", "Value:  30 days", "Source: fallback", "Reason: fallback: canned answer"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatProfileText(t *testing.T) {
	profile := types.Profile{
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Skills: []string{"Go", "Kubernetes"},
		Experience: []types.ExperienceEntry{
			{Title: "Engineer", Company: "Acme", Duration: "2 years"},
		},
	}

	output, err := GlobalRegistry.Format(profile, "text")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	for _, want := range []string{"CANDIDATE PROFILE", "Name: Jane Doe", "- Go", "1. Engineer at Acme (2 years)"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	// Empty fields are omitted entirely.
	if strings.Contains(output, "Notice Period") {
		t.Error("empty fields should not be rendered")
	}
}

func TestFormatUnknownFormat(t *testing.T) {
	if _, err := GlobalRegistry.Format(types.Profile{}, "yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestTextFallsBackToGenericFormatter(t *testing.T) {
	// Arbitrary types have no text formatter and no "any" fallback under
	// "text", so formatting fails rather than guessing.
	if _, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text"); err == nil {
		t.Error("expected error for text format of arbitrary data")
	}
}
