package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Matches {{variableName}} placeholders in context templates.
var varPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_\-]+)}}`)

// Build resolves variables and substitutes them into the template's context.
//
// Resolution order per declared variable: supplied non-empty value, then
// default, then empty string. A required variable with no value and no
// default still resolves to empty string here - Build never aborts; use
// Validate to surface those before calling. Placeholders that name an
// undeclared variable are left verbatim. System, task, and format are passed
// through unchanged.
func Build(tpl PromptTemplate, vars map[string]string) ResolvedPrompt {
	resolved := make(map[string]string, len(tpl.Variables))
	for name, decl := range tpl.Variables {
		if v, ok := vars[name]; ok && v != "" {
			resolved[name] = v
			continue
		}
		if decl.Default != nil {
			resolved[name] = *decl.Default
			continue
		}
		resolved[name] = ""
	}

	context := varPattern.ReplaceAllStringFunc(tpl.ContextTemplate, func(raw string) string {
		name := varPattern.FindStringSubmatch(raw)[1]
		if v, ok := resolved[name]; ok {
			return v
		}
		return raw
	})

	return ResolvedPrompt{
		System:  tpl.System,
		Context: strings.TrimSpace(context),
		Task:    tpl.Task,
		Format:  tpl.Format,
	}
}

// Validate reports one error per required variable that has neither a
// supplied non-empty value nor a default. It does not block Build.
func Validate(tpl PromptTemplate, vars map[string]string) ValidationResult {
	result := ValidationResult{Valid: true}
	for name, decl := range tpl.Variables {
		if !decl.Required {
			continue
		}
		if v, ok := vars[name]; ok && v != "" {
			continue
		}
		if decl.Default != nil {
			continue
		}
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("required variable %q is missing", name))
	}
	sort.Strings(result.Errors)
	return result
}
