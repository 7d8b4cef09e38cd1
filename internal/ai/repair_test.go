package ai

import (
	"testing"

	"formfill/internal/types"
)

func TestRepairAnswer(t *testing.T) {
	tests := []struct {
		name       string
		answer     types.FieldAnswer
		options    []string
		wantAction types.Action
		wantValue  string
	}{
		{
			name:       "valid answer passes through",
			answer:     types.FieldAnswer{Action: "type", Value: "hello"},
			wantAction: types.ActionType,
			wantValue:  "hello",
		},
		{
			name:       "action is normalized",
			answer:     types.FieldAnswer{Action: " SELECT ", Value: "Yes"},
			options:    []string{"Yes", "No"},
			wantAction: types.ActionSelect,
			wantValue:  "Yes",
		},
		{
			name:       "unknown action degrades to type",
			answer:     types.FieldAnswer{Action: "fill_in", Value: "hello"},
			wantAction: types.ActionType,
			wantValue:  "hello",
		},
		{
			name:       "select without options degrades to type",
			answer:     types.FieldAnswer{Action: "select", Value: "Yes"},
			wantAction: types.ActionType,
			wantValue:  "Yes",
		},
		{
			name:       "select value snapped to closest option",
			answer:     types.FieldAnswer{Action: "select", Value: "yes"},
			options:    []string{"Yes", "No"},
			wantAction: types.ActionSelect,
			wantValue:  "Yes",
		},
		{
			name:       "unmatched select value falls back to first option",
			answer:     types.FieldAnswer{Action: "select", Value: "maybe"},
			options:    []string{"Red", "Blue"},
			wantAction: types.ActionSelect,
			wantValue:  "Red",
		},
		{
			name:       "value is trimmed",
			answer:     types.FieldAnswer{Action: "type", Value: "  hello  "},
			wantAction: types.ActionType,
			wantValue:  "hello",
		},
		{
			name:       "whitespace-only type value replaced with generic answer",
			answer:     types.FieldAnswer{Action: "type", Value: "   "},
			wantAction: types.ActionType,
			wantValue:  genericAnswer,
		},
		{
			name:       "empty select value snapped to first option",
			answer:     types.FieldAnswer{Action: "select", Value: ""},
			options:    []string{"Yes", "No"},
			wantAction: types.ActionSelect,
			wantValue:  "Yes",
		},
		{
			name:       "empty select without options degrades to generic type",
			answer:     types.FieldAnswer{Action: "select", Value: ""},
			wantAction: types.ActionType,
			wantValue:  genericAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairAnswer(tt.answer, tt.options)
			if got.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", got.Action, tt.wantAction)
			}
			if got.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", got.Value, tt.wantValue)
			}
		})
	}
}
