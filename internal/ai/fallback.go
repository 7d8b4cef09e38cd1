package ai

import (
	"regexp"
	"strconv"
	"strings"

	"formfill/internal/heuristics"
	"formfill/internal/types"
)

// genericAnswer is the last-resort free-text value. It reads as a reasonable
// response to almost any open-ended application question.
const genericAnswer = "I am a qualified candidate with relevant experience and I believe I would be a strong fit for this role."

// cannedAnswer pairs a question keyword pattern with a stock reply used when
// the model is unavailable.
type cannedAnswer struct {
	pattern *regexp.Regexp
	value   func(in types.AnswerQuestionInput) string
}

var cannedAnswers = []cannedAnswer{
	{
		pattern: regexp.MustCompile(`(?i)sponsor`),
		value:   func(types.AnswerQuestionInput) string { return "No" },
	},
	{
		pattern: regexp.MustCompile(`(?i)authoriz|eligible|legally|right\s*to\s*work`),
		value:   func(types.AnswerQuestionInput) string { return "Yes" },
	},
	{
		pattern: regexp.MustCompile(`(?i)notice|when.{0,30}(join|start)|availab`),
		value: func(in types.AnswerQuestionInput) string {
			if in.Profile.NoticePeriod != "" {
				return in.Profile.NoticePeriod
			}
			return "30 days"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)salary|ctc|compensation|pay`),
		value: func(in types.AnswerQuestionInput) string {
			if in.Profile.ExpectedCTC != "" {
				return in.Profile.ExpectedCTC
			}
			return "Negotiable, as per industry standards"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)(years?|yrs?).{0,25}experience|experience.{0,25}(years?|yrs?)`),
		value: func(in types.AnswerQuestionInput) string {
			if total := heuristics.TotalExperienceYears(in.Profile); total > 0 {
				return strconv.FormatFloat(total, 'f', -1, 64)
			}
			return "3"
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)why.{0,40}(join|work|apply|interest)|motivat|about\s*(yourself|you)\b|cover\s*letter`),
		value:   func(types.AnswerQuestionInput) string { return genericAnswer },
	},
}

// FallbackAnswer produces a best-effort answer when both the heuristic tier
// and the model have declined or failed. It never returns an error: the caller
// always gets something actionable for the field.
func FallbackAnswer(in types.AnswerQuestionInput) types.FieldAnswer {
	if strings.EqualFold(in.FieldType, "checkbox") {
		return types.FieldAnswer{
			Action: types.ActionCheck,
			Value:  "true",
			Source: types.SourceFallback,
			Reason: "fallback: checkbox",
		}
	}
	if strings.EqualFold(in.FieldType, "file") {
		return types.FieldAnswer{
			Action: types.ActionUpload,
			Source: types.SourceFallback,
			Reason: "fallback: file input",
		}
	}

	value := genericAnswer
	reason := "fallback: generic answer"
	for _, canned := range cannedAnswers {
		if canned.pattern.MatchString(in.Question) {
			value = canned.value(in)
			reason = "fallback: canned answer"
			break
		}
	}

	if len(in.Options) > 0 {
		selected := in.Options[0]
		if opt, ok := heuristics.BestOption(value, in.Options); ok {
			selected = opt
		} else if opt, ok := heuristics.BestOption("yes", in.Options); ok {
			selected = opt
		}
		return types.FieldAnswer{
			Action: types.ActionSelect,
			Value:  selected,
			Source: types.SourceFallback,
			Reason: reason,
		}
	}

	return types.FieldAnswer{
		Action: types.ActionType,
		Value:  value,
		Source: types.SourceFallback,
		Reason: reason,
	}
}
