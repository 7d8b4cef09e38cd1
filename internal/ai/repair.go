package ai

import (
	"strings"

	"formfill/internal/heuristics"
	"formfill/internal/types"
)

// RepairAnswer normalizes a model-produced answer so callers always receive a
// usable action/value pair. The model output is treated as a suggestion, not a
// contract: unknown actions degrade to "type", and a "select" value that is
// not verbatim in the option list is snapped to the closest option.
func RepairAnswer(answer types.FieldAnswer, options []string) types.FieldAnswer {
	answer.Action = types.Action(strings.ToLower(strings.TrimSpace(string(answer.Action))))
	answer.Value = strings.TrimSpace(answer.Value)

	if !types.ValidActions[answer.Action] {
		answer.Action = types.ActionType
	}

	// A select without options cannot be performed; fall back to typing.
	if answer.Action == types.ActionSelect && len(options) == 0 {
		answer.Action = types.ActionType
	}

	if answer.Action == types.ActionSelect {
		if best, ok := heuristics.BestOption(answer.Value, options); ok {
			answer.Value = best
		} else {
			// Nothing matched at all; the first option keeps the form moving.
			answer.Value = options[0]
		}
	}

	// Typing nothing would leave the field blank; the generic sentence keeps
	// the answer actionable.
	if answer.Action == types.ActionType && answer.Value == "" {
		answer.Value = genericAnswer
	}

	return answer
}
