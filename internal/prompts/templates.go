package prompts

// Built-in prompt templates for the three generation use cases. A templates
// file configured under [prompts] overrides any of these by name.

// Template names used by the orchestrator.
const (
	TemplateContextualQuestions     = "contextual_questions"
	TemplateAccomplishmentStatement = "accomplishment_statement"
	TemplateShareablePost           = "shareable_post"
)

// System role definitions
const (
	// QuestionWriterRole defines the AI role for follow-up question generation
	QuestionWriterRole = "You are a thoughtful colleague helping an employee describe an accomplishment in more detail"

	// StatementWriterRole defines the AI role for polished statement generation
	StatementWriterRole = "You are a professional writer crafting short, humble, third-person recognition statements for an internal company feed"

	// PostWriterRole defines the AI role for shareable social posts
	PostWriterRole = "You are a communications assistant writing short celebratory posts suitable for sharing outside the team"
)

// Context templates with {{variable}} placeholders
const (
	questionsContext = `An employee wrote the following accomplishment statement:
"{{originalStatement}}"

The accomplishment primarily benefited: {{impactType}}

Appreciation received (may be empty):
{{emailAppreciation}}`

	statementContext = `Employee name: {{userName}}
Original statement: "{{originalStatement}}"
Impact type: {{impactType}}

Additional details gathered from follow-up questions:
{{additionalDetails}}

Appreciation received (may be empty):
{{emailAppreciation}}`

	postContext = `Employee name: {{userName}}
Accomplishment statement: "{{aiGeneratedStatement}}"
Impact type: {{impactType}}`
)

// Task instructions
const (
	questionsTask = `Generate follow-up questions that would help the employee add concrete, specific detail to their accomplishment. Ask about outcomes, effort, and who benefited. Do not ask for information already present in the statement.`

	statementTask = `Write a polished statement describing this accomplishment, weaving in the additional details and any appreciation received.`

	postTask = `Write a short, celebratory post announcing this accomplishment, suitable for sharing with a wider audience.`
)

// Output format instructions
const (
	questionsFormat = `Respond with ONLY a JSON array of 3 to 5 question strings, e.g. ["...", "...", "..."]. No markdown, no commentary.`

	statementFormat = `At most 100 words. Third person. Humble, factual tone - no superlatives. Plain text only: no markup, no emoji. The text will be displayed directly and may be read aloud.`

	postFormat = `At most 60 words. Upbeat but professional. Plain text only.`
)

func strptr(s string) *string { return &s }

// DefaultTemplates returns the compiled-in template set. Each call returns a
// fresh map so callers may overlay file-provided definitions safely.
func DefaultTemplates() map[string]PromptTemplate {
	return map[string]PromptTemplate{
		TemplateContextualQuestions: {
			System:          QuestionWriterRole,
			ContextTemplate: questionsContext,
			Task:            questionsTask,
			Format:          questionsFormat,
			Variables: map[string]Variable{
				"originalStatement": {Required: true},
				"impactType":        {Required: true, Default: strptr("team")},
				"emailAppreciation": {Required: false},
			},
		},
		TemplateAccomplishmentStatement: {
			System:          StatementWriterRole,
			ContextTemplate: statementContext,
			Task:            statementTask,
			Format:          statementFormat,
			Variables: map[string]Variable{
				"userName":          {Required: true},
				"originalStatement": {Required: true},
				"impactType":        {Required: true, Default: strptr("team")},
				"additionalDetails": {Required: false},
				"emailAppreciation": {Required: false},
			},
		},
		TemplateShareablePost: {
			System:          PostWriterRole,
			ContextTemplate: postContext,
			Task:            postTask,
			Format:          postFormat,
			Variables: map[string]Variable{
				"userName":             {Required: true},
				"aiGeneratedStatement": {Required: true},
				"impactType":           {Required: false, Default: strptr("team")},
			},
		},
	}
}
