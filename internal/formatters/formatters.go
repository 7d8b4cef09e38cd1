package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"formfill/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "FieldAnswer", &AnswerTextFormatter{})
	registry.RegisterFormatter("text", "Profile", &ProfileTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.FieldAnswer:
		return "FieldAnswer"
	case types.Profile:
		return "Profile"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnswerTextFormatter handles text formatting for field answers
type AnswerTextFormatter struct{}

func (atf *AnswerTextFormatter) Format(data any) (string, error) {
	answer, ok := data.(types.FieldAnswer)
	if !ok {
		return "", fmt.Errorf("expected FieldAnswer, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("Action: %s\n", answer.Action))
	output.WriteString(fmt.Sprintf("Value:  %s\n", answer.Value))
	output.WriteString(fmt.Sprintf("Source: %s\n", answer.Source))
	if answer.Reason != "" {
		output.WriteString(fmt.Sprintf("Reason: %s\n", answer.Reason))
	}

	return output.String(), nil
}

func (atf *AnswerTextFormatter) SupportedType() string {
	return "FieldAnswer"
}

// ProfileTextFormatter handles text formatting for candidate profiles
type ProfileTextFormatter struct{}

func (ptf *ProfileTextFormatter) Format(data any) (string, error) {
	profile, ok := data.(types.Profile)
	if !ok {
		return "", fmt.Errorf("expected Profile, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE PROFILE ===\n\n")
	writeField(&output, "Name", profile.Name)
	writeField(&output, "Email", profile.Email)
	writeField(&output, "Phone", profile.Phone)
	writeField(&output, "Location", profile.Location)
	writeField(&output, "Current CTC", profile.CurrentCTC)
	writeField(&output, "Expected CTC", profile.ExpectedCTC)
	writeField(&output, "Notice Period", profile.NoticePeriod)

	if len(profile.Skills) > 0 {
		output.WriteString("\nSkills:\n")
		for _, skill := range profile.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	}

	if len(profile.Experience) > 0 {
		output.WriteString("\nExperience:\n")
		for i, exp := range profile.Experience {
			output.WriteString(fmt.Sprintf("%d. %s", i+1, exp.Title))
			if exp.Company != "" {
				output.WriteString(" at " + exp.Company)
			}
			if exp.Duration != "" {
				output.WriteString(" (" + exp.Duration + ")")
			}
			output.WriteString("\n")
			if exp.Description != "" {
				output.WriteString("   " + exp.Description + "\n")
			}
		}
	}

	if len(profile.Education) > 0 {
		output.WriteString("\nEducation:\n")
		for i, edu := range profile.Education {
			output.WriteString(fmt.Sprintf("%d. %s", i+1, edu.Degree))
			if edu.Field != "" {
				output.WriteString(" in " + edu.Field)
			}
			if edu.Institution != "" {
				output.WriteString(", " + edu.Institution)
			}
			if edu.Year != "" {
				output.WriteString(" (" + edu.Year + ")")
			}
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func writeField(output *strings.Builder, label, value string) {
	if value != "" {
		output.WriteString(fmt.Sprintf("%s: %s\n", label, value))
	}
}

func (ptf *ProfileTextFormatter) SupportedType() string {
	return "Profile"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
