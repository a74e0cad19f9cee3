package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// ErrTemplateNotFound is returned by Registry.Get for unknown template names.
var ErrTemplateNotFound = errors.New("prompts: template not found")

// Registry is a read-only lookup table of prompt templates. It is constructed
// explicitly and injected into the orchestrator, so tests can supply fake
// templates without touching global state. Safe for concurrent reads.
type Registry struct {
	templates map[string]PromptTemplate
}

// NewRegistry builds a registry from already-validated templates, keyed by name.
func NewRegistry(templates map[string]PromptTemplate) *Registry {
	m := make(map[string]PromptTemplate, len(templates))
	for name, tpl := range templates {
		tpl.Name = name
		m[name] = tpl
	}
	return &Registry{templates: m}
}

// Load builds a registry from raw template definitions. A malformed template
// (missing system, task, or format) is skipped with a warning rather than
// failing the whole load.
func Load(source map[string]PromptTemplate) *Registry {
	m := make(map[string]PromptTemplate, len(source))
	for name, tpl := range source {
		if err := checkTemplate(tpl); err != nil {
			log.Warn().
				Str("template", name).
				Err(err).
				Msg("Skipping malformed prompt template")
			continue
		}
		tpl.Name = name
		m[name] = tpl
	}
	return &Registry{templates: m}
}

// LoadFile reads template definitions from a JSON file (one object per
// template name) and merges them over the built-in defaults. Definitions in
// the file win on name collisions.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompts: read templates file: %w", err)
	}

	var source map[string]PromptTemplate
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("prompts: parse templates file: %w", err)
	}

	merged := DefaultTemplates()
	for name, tpl := range source {
		merged[name] = tpl
	}
	return Load(merged), nil
}

// Get returns the template registered under name.
func (r *Registry) Get(name string) (PromptTemplate, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return PromptTemplate{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return tpl, nil
}

// Names returns the registered template names, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

func checkTemplate(tpl PromptTemplate) error {
	if tpl.System == "" {
		return errors.New("missing system")
	}
	if tpl.Task == "" {
		return errors.New("missing task")
	}
	if tpl.Format == "" {
		return errors.New("missing format")
	}
	return nil
}
