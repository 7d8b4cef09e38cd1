package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	formfillErrors "formfill/internal/errors"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject pulls the first JSON object out of raw model text. The
// structured output schema makes clean JSON the common case, but models still
// occasionally wrap responses in markdown fences or prose, so parsing stays
// forgiving: strip fences first, then fall back to the outermost {...} span.
func extractJSONObject(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	if match := jsonObjectPattern.FindString(cleaned); match != "" && json.Valid([]byte(match)) {
		return match, nil
	}

	return "", formfillErrors.NewAIError(formfillErrors.ErrCodeAIResponseInvalid,
		"AI response contains no parseable JSON object", nil)
}

// decodeLoose extracts and unmarshals a JSON object from raw model text.
func decodeLoose(text string, out any) error {
	raw, err := extractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return formfillErrors.NewAIError(formfillErrors.ErrCodeAIResponseInvalid,
			"Failed to parse AI response JSON", err)
	}
	return nil
}
