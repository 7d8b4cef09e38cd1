package types

// Action is the UI operation the caller should perform on a form field.
type Action string

const (
	ActionSelect Action = "select"
	ActionType   Action = "type"
	ActionClick  Action = "click"
	ActionCheck  Action = "check"
	ActionUpload Action = "upload"
)

// ValidActions lists every action the API may return. Anything else coming
// back from the model is repaired to ActionType.
var ValidActions = map[Action]bool{
	ActionSelect: true,
	ActionType:   true,
	ActionClick:  true,
	ActionCheck:  true,
	ActionUpload: true,
}

// AnswerSource records which tier produced an answer.
type AnswerSource string

const (
	SourceHeuristic AnswerSource = "heuristic"
	SourceAI        AnswerSource = "ai"
	SourceFallback  AnswerSource = "fallback"
)

// ExperienceEntry is one job record from a candidate profile.
type ExperienceEntry struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one degree record from a candidate profile.
type EducationEntry struct {
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Profile is the candidate record. Every field is optional; values are merged
// ad hoc from the directly supplied profile and the parsed resume.
type Profile struct {
	Name         string            `json:"name,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Location     string            `json:"location,omitempty"`
	Skills       []string          `json:"skills,omitempty"`
	Experience   []ExperienceEntry `json:"experience,omitempty"`
	Education    []EducationEntry  `json:"education,omitempty"`
	CurrentCTC   string            `json:"currentCtc,omitempty"`
	ExpectedCTC  string            `json:"expectedCtc,omitempty"`
	NoticePeriod string            `json:"noticePeriod,omitempty"`
}

// IsEmpty reports whether no field of the profile is set.
func (p Profile) IsEmpty() bool {
	return p.Name == "" && p.Email == "" && p.Phone == "" && p.Location == "" &&
		len(p.Skills) == 0 && len(p.Experience) == 0 && len(p.Education) == 0 &&
		p.CurrentCTC == "" && p.ExpectedCTC == "" && p.NoticePeriod == ""
}

// JobDetails describes the posting the candidate is applying to.
type JobDetails struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// AnswerQuestionInput is the input for deciding a single form field.
type AnswerQuestionInput struct {
	Question   string     `json:"question"`
	Options    []string   `json:"options,omitempty"`
	FieldType  string     `json:"fieldType,omitempty"`
	Profile    Profile    `json:"profile,omitempty"`
	ResumeText string     `json:"resumeText,omitempty"`
	JobDetails JobDetails `json:"jobDetails,omitempty"`
}

// FieldAnswer is the decision returned for a form field.
type FieldAnswer struct {
	Action Action       `json:"action"`
	Value  string       `json:"value"`
	Source AnswerSource `json:"source"`
	Reason string       `json:"reason,omitempty"`
}

// ParseResumeInput is the input for the resume parsing operation.
type ParseResumeInput struct {
	ResumeText string `json:"resumeText"`
}
