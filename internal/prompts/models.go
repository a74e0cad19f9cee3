package prompts

// Core model types for prompt definitions and rendering.

// Variable declares how a single template variable is resolved at build time.
type Variable struct {
	Required bool    `json:"required"`
	Default  *string `json:"default,omitempty"`
}

// PromptTemplate is a named 4-part prompt definition loaded from
// configuration. Immutable once loaded; identified by name.
type PromptTemplate struct {
	Name            string              `json:"-"`
	System          string              `json:"system"`
	ContextTemplate string              `json:"contextTemplate"`
	Task            string              `json:"task"`
	Format          string              `json:"format"`
	Variables       map[string]Variable `json:"variables"`
}

// ResolvedPrompt is a template with every placeholder substituted, ready to
// send to the generation backend. Created per request, discarded after the
// call returns.
type ResolvedPrompt struct {
	System  string
	Context string
	Task    string
	Format  string
}

// ValidationResult reports required-and-missing variables found by Validate.
// It never blocks Build; callers decide what to do with it.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
