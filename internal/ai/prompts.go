package ai

// SystemPromptDefaults holds the built-in system prompts per operation
type SystemPromptDefaults struct {
	AnswerQuestion string
	ExtractProfile string
}

// UserPromptDefaults holds the built-in user prompt templates per operation.
// Templates are fmt.Sprintf format strings; the provider fills the verbs.
type UserPromptDefaults struct {
	AnswerQuestion string
	ExtractProfile string
}

// DefaultSystemPrompts are used when neither a prompt file nor a config value
// is set for the operation.
var DefaultSystemPrompts = SystemPromptDefaults{
	AnswerQuestion: `You are an assistant that fills job application forms on behalf of a candidate.
For every form field you are given, decide exactly one UI action and its value.

Rules:
- action must be one of: "select", "type", "click", "check", "upload".
- For fields with a fixed option list, use "select" and set value to the single
  best option, copied verbatim from the list. Never invent an option.
- For free-text fields, use "type" with a concise, professional value.
- For checkboxes and consent boxes, use "check".
- For file inputs, use "upload" with an empty value.
- Base every value on the candidate profile and resume. Keep answers truthful
  to the profile; when the profile is silent, give the answer most favorable to
  the candidate that a reasonable recruiter would accept.
- Answer in first person where the question expects prose.
- Keep values short: a word, number, or one or two sentences. No markdown.`,

	ExtractProfile: `You are an assistant that extracts structured candidate data from resume text.
Return only facts present in the resume. Leave fields you cannot find empty.
Do not summarize, rephrase, or infer beyond what is written.`,
}

// DefaultUserPrompts are the fallback user prompt templates. Placeholders, in
// order:
//
//	AnswerQuestion: question, field type, options, profile JSON, resume text,
//	                job details
//	ExtractProfile: resume text
var DefaultUserPrompts = UserPromptDefaults{
	AnswerQuestion: `Decide how to answer one field of a job application form.

Question: %s
Field type: %s
Options: %s

Candidate profile (JSON):
%s

Resume text:
%s

Job being applied to:
%s

Respond with the action and value for this field.`,

	ExtractProfile: `Extract the candidate profile from the following resume text.

Resume text:
%s`,
}
