package heuristics

import (
	"regexp"
	"strconv"
	"strings"

	"formfill/internal/types"
)

// Rule is one question classifier. Pattern gates the rule; Answer may still
// decline by returning nil, in which case evaluation moves to the next rule.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Answer  func(in types.AnswerQuestionInput) *types.FieldAnswer
}

// rules are evaluated in order; the first rule whose pattern matches and whose
// Answer returns non-nil wins. Most specific rules come first, so the
// disability check cannot be shadowed by broader percentage questions.
var rules = []Rule{
	{
		Name:    "disability_percentage",
		Pattern: regexp.MustCompile(`(?i)disabilit|differently[\s-]*abled|handicap`),
		Answer:  answerDisability,
	},
	{
		Name:    "relocation",
		Pattern: regexp.MustCompile(`(?i)\brelocat|willing to move|open to moving|shift to\b`),
		Answer:  answerRelocation,
	},
	{
		Name:    "notice_period",
		Pattern: regexp.MustCompile(`(?i)notice\s*period|serving\s*notice|(when|how soon).{0,30}(join|start)|joining\s*(date|time)|availability to start`),
		Answer:  answerNoticePeriod,
	},
	{
		Name:    "expected_ctc",
		Pattern: regexp.MustCompile(`(?i)(expected|desired).{0,20}(ctc|salary|compensation|pay)|salary\s*expectation`),
		Answer:  answerExpectedCTC,
	},
	{
		Name:    "current_ctc",
		Pattern: regexp.MustCompile(`(?i)(current|present).{0,20}(ctc|salary|compensation|pay)`),
		Answer:  answerCurrentCTC,
	},
	{
		Name:    "btech_cse",
		Pattern: regexp.MustCompile(`(?i)b\.?\s*tech|bachelor.{0,25}(technology|engineering)|computer\s*science|\bcse\b`),
		Answer:  answerDegree,
	},
	{
		Name:    "experience_years",
		Pattern: regexp.MustCompile(`(?i)(years?|yrs?).{0,25}(experience|work)|experience.{0,25}(years?|yrs?)|total\s*experience`),
		Answer:  answerExperienceYears,
	},
	{
		Name:    "work_authorization",
		Pattern: regexp.MustCompile(`(?i)work\s*(authorization|permit)|legally\s*authorized|visa|sponsorship|right\s*to\s*work`),
		Answer:  answerWorkAuthorization,
	},
	{
		Name:    "contact_email",
		Pattern: regexp.MustCompile(`(?i)\be-?mail\b`),
		Answer:  answerEmail,
	},
	{
		Name:    "contact_phone",
		Pattern: regexp.MustCompile(`(?i)phone|mobile|contact\s*number`),
		Answer:  answerPhone,
	},
}

// Match runs the ordered rule table against the question and returns the
// canned decision, or nil when no rule claims the question and the LLM path
// should take over.
func Match(in types.AnswerQuestionInput) *types.FieldAnswer {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil
	}

	for _, rule := range rules {
		if !rule.Pattern.MatchString(question) {
			continue
		}
		if answer := rule.Answer(in); answer != nil {
			answer.Source = types.SourceHeuristic
			if answer.Reason == "" {
				answer.Reason = rule.Name
			}
			return answer
		}
	}
	return nil
}

// RuleNames returns the evaluation order, mainly for /stats and tests.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

func answerDisability(in types.AnswerQuestionInput) *types.FieldAnswer {
	// Portals ask for a disability percentage; answer 0% regardless of
	// profile contents.
	if len(in.Options) > 0 {
		if opt, ok := BestOption("0", in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		if opt, ok := BestOption("no", in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return &types.FieldAnswer{Action: types.ActionSelect, Value: in.Options[0]}
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: "0%"}
}

func answerRelocation(in types.AnswerQuestionInput) *types.FieldAnswer {
	if len(in.Options) > 0 {
		return &types.FieldAnswer{Action: types.ActionSelect, Value: affirmativeOption(in.Options)}
	}
	if strings.EqualFold(in.FieldType, "checkbox") {
		return &types.FieldAnswer{Action: types.ActionCheck, Value: "true"}
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: "Yes, I am open to relocation."}
}

func answerNoticePeriod(in types.AnswerQuestionInput) *types.FieldAnswer {
	notice := strings.TrimSpace(in.Profile.NoticePeriod)
	if notice == "" {
		notice = "30 days"
	}
	if len(in.Options) > 0 {
		if opt, ok := BestOption(notice, in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return &types.FieldAnswer{Action: types.ActionSelect, Value: in.Options[0]}
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: notice}
}

func answerExpectedCTC(in types.AnswerQuestionInput) *types.FieldAnswer {
	return answerCTCValue(in, in.Profile.ExpectedCTC)
}

func answerCurrentCTC(in types.AnswerQuestionInput) *types.FieldAnswer {
	return answerCTCValue(in, in.Profile.CurrentCTC)
}

func answerCTCValue(in types.AnswerQuestionInput, ctc string) *types.FieldAnswer {
	ctc = strings.TrimSpace(ctc)
	if ctc == "" {
		// Without a figure on file this needs the LLM (or fallback) to phrase
		// a negotiable answer.
		return nil
	}
	if len(in.Options) > 0 {
		if opt, ok := BestOption(ctc, in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: ctc}
}

func answerDegree(in types.AnswerQuestionInput) *types.FieldAnswer {
	holds := false
	for _, edu := range in.Profile.Education {
		combined := strings.ToLower(edu.Degree + " " + edu.Field)
		if strings.Contains(combined, "tech") || strings.Contains(combined, "engineering") ||
			strings.Contains(combined, "computer") || strings.Contains(combined, "cse") {
			holds = true
			break
		}
	}
	if len(in.Profile.Education) == 0 {
		// No education on file: let the LLM reason over the resume text.
		return nil
	}

	value := "Yes"
	if !holds {
		value = "No"
	}
	if len(in.Options) > 0 {
		if opt, ok := BestOption(value, in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: value}
}

var yearsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)`)

func answerExperienceYears(in types.AnswerQuestionInput) *types.FieldAnswer {
	total := TotalExperienceYears(in.Profile)
	if total <= 0 {
		return nil
	}

	value := strconv.FormatFloat(total, 'f', -1, 64)
	if len(in.Options) > 0 {
		if opt, ok := BestOption(value, in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: value}
}

// TotalExperienceYears sums explicit year counts found in experience
// durations. Entries without a parseable duration count as one year each so a
// populated history never reports zero.
func TotalExperienceYears(p types.Profile) float64 {
	var total float64
	for _, exp := range p.Experience {
		if m := yearsPattern.FindStringSubmatch(strings.ToLower(exp.Duration)); m != nil {
			if years, err := strconv.ParseFloat(m[1], 64); err == nil {
				total += years
				continue
			}
		}
		if strings.TrimSpace(exp.Duration) != "" || exp.Title != "" {
			total += 1
		}
	}
	return total
}

func answerWorkAuthorization(in types.AnswerQuestionInput) *types.FieldAnswer {
	sponsorship := regexp.MustCompile(`(?i)sponsor`).MatchString(in.Question)
	value := "Yes"
	if sponsorship {
		// "Do you require sponsorship?" is answered no; "are you authorized"
		// is answered yes.
		value = "No"
	}
	if len(in.Options) > 0 {
		if opt, ok := BestOption(value, in.Options); ok {
			return &types.FieldAnswer{Action: types.ActionSelect, Value: opt}
		}
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: value}
}

func answerEmail(in types.AnswerQuestionInput) *types.FieldAnswer {
	if in.Profile.Email == "" || len(in.Options) > 0 {
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: in.Profile.Email}
}

func answerPhone(in types.AnswerQuestionInput) *types.FieldAnswer {
	if in.Profile.Phone == "" || len(in.Options) > 0 {
		return nil
	}
	return &types.FieldAnswer{Action: types.ActionType, Value: in.Profile.Phone}
}

var affirmativePattern = regexp.MustCompile(`(?i)^(yes|yeah|sure|agree|willing|definitely|i am|absolutely)`)

// affirmativeOption returns the first option reading as a yes, or the first
// option when none does.
func affirmativeOption(options []string) string {
	for _, opt := range options {
		if affirmativePattern.MatchString(strings.TrimSpace(opt)) {
			return opt
		}
	}
	return options[0]
}

var optionNormalizer = regexp.MustCompile(`[^a-z0-9 ]+`)

func normalizeOption(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = optionNormalizer.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// BestOption guesses the option closest to value: exact match first, then
// case-insensitive, then substring either way, then highest token overlap.
// The boolean is false when nothing scored at all.
func BestOption(value string, options []string) (string, bool) {
	if len(options) == 0 {
		return "", false
	}

	for _, opt := range options {
		if opt == value {
			return opt, true
		}
	}

	normValue := normalizeOption(value)
	if normValue == "" {
		return "", false
	}

	for _, opt := range options {
		if normalizeOption(opt) == normValue {
			return opt, true
		}
	}

	for _, opt := range options {
		normOpt := normalizeOption(opt)
		if normOpt == "" {
			continue
		}
		if strings.Contains(normOpt, normValue) || strings.Contains(normValue, normOpt) {
			return opt, true
		}
	}

	valueTokens := strings.Fields(normValue)
	best := ""
	bestScore := 0
	for _, opt := range options {
		optTokens := make(map[string]bool)
		for _, tok := range strings.Fields(normalizeOption(opt)) {
			optTokens[tok] = true
		}
		score := 0
		for _, tok := range valueTokens {
			if optTokens[tok] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = opt
		}
	}
	if bestScore > 0 {
		return best, true
	}

	return "", false
}
