package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/internal/llm"
	"github.com/mppise/eaappreciate/internal/prompts"
	"github.com/mppise/eaappreciate/pkg/models"
)

// Question count bounds accepted from the model.
const (
	minQuestions = 3
	maxQuestions = 5
)

// Orchestrator composes the prompt registry and an LLM client for the three
// generation use cases. Each operation follows the same two-phase protocol:
// attempt the model call, and on any failure (auth, network, malformed
// response) synthesize a deterministic local answer from the same input. The
// operations never return an error to their caller.
type Orchestrator struct {
	registry *prompts.Registry
	client   llm.Client
	rng      *rand.Rand
}

// New creates an orchestrator over an injected template registry and client.
// Failed model calls are not retried; a single failed attempt switches the
// operation to its local fallback.
func New(registry *prompts.Registry, client llm.Client) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		client:   client,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateContextualQuestions returns 3 to 5 follow-up questions eliciting
// more detail about the accomplishment. The model must answer with a JSON
// array of that length; anything else falls back to the local question pool.
func (o *Orchestrator) GenerateContextualQuestions(ctx context.Context, statement string, impactType models.ImpactType, appreciation string) []string {
	log.Info().Str("use_case", "contextual_questions").Msg("Generating contextual questions")

	questions, err := o.tryGenerateQuestions(ctx, statement, impactType, appreciation)
	if err != nil {
		log.Warn().Err(err).
			Str("use_case", "contextual_questions").
			Msg("Model path failed, using fallback questions")
		return o.fallbackQuestions(impactType)
	}

	log.Info().Int("count", len(questions)).Msg("Contextual questions generated")
	return questions
}

func (o *Orchestrator) tryGenerateQuestions(ctx context.Context, statement string, impactType models.ImpactType, appreciation string) ([]string, error) {
	tpl, err := o.registry.Get(prompts.TemplateContextualQuestions)
	if err != nil {
		return nil, err
	}

	resolved := prompts.Build(tpl, map[string]string{
		"originalStatement": statement,
		"impactType":        string(impactType),
		"emailAppreciation": appreciation,
	})

	raw, err := o.client.Complete(ctx, resolved)
	if err != nil {
		return nil, err
	}

	questions, err := llm.DecodeStringArray(raw)
	if err != nil {
		return nil, err
	}
	if len(questions) < minQuestions || len(questions) > maxQuestions {
		return nil, &llm.LLMCallError{Err: errQuestionCount(len(questions))}
	}
	for _, q := range questions {
		if q == "" {
			return nil, &llm.LLMCallError{Err: errEmptyQuestion}
		}
	}
	return questions, nil
}

// GenerateStatement returns a polished third-person statement for the draft.
// On the model path the text is returned verbatim - the prompt's format field
// carries the 100-word instruction and the model is trusted to honor it. Only
// the fallback path enforces the limit.
func (o *Orchestrator) GenerateStatement(ctx context.Context, draft models.AccomplishmentDraft) string {
	log.Info().Str("use_case", "accomplishment_statement").Msg("Generating accomplishment statement")

	text, err := o.tryGenerateStatement(ctx, draft)
	if err != nil {
		log.Warn().Err(err).
			Str("use_case", "accomplishment_statement").
			Msg("Model path failed, composing fallback statement")
		return fallbackStatement(draft)
	}

	log.Info().Msg("Accomplishment statement generated")
	return text
}

func (o *Orchestrator) tryGenerateStatement(ctx context.Context, draft models.AccomplishmentDraft) (string, error) {
	tpl, err := o.registry.Get(prompts.TemplateAccomplishmentStatement)
	if err != nil {
		return "", err
	}

	resolved := prompts.Build(tpl, map[string]string{
		"userName":          draft.UserName,
		"originalStatement": draft.OriginalStatement,
		"impactType":        string(draft.ImpactType),
		"additionalDetails": draft.AdditionalDetails,
		"emailAppreciation": draft.EmailAppreciation,
	})

	text, err := o.client.Complete(ctx, resolved)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &llm.LLMCallError{Err: errEmptyCompletion}
	}
	return text, nil
}

// GenerateShareablePost returns a short celebratory post for an already
// persisted accomplishment, suitable for sharing outside the team.
func (o *Orchestrator) GenerateShareablePost(ctx context.Context, acc models.Accomplishment) string {
	log.Info().
		Str("use_case", "shareable_post").
		Str("accomplishment_id", acc.ID).
		Msg("Generating shareable post")

	text, err := o.tryGeneratePost(ctx, acc)
	if err != nil {
		log.Warn().Err(err).
			Str("use_case", "shareable_post").
			Msg("Model path failed, composing fallback post")
		return fallbackPost(acc)
	}

	log.Info().Msg("Shareable post generated")
	return text
}

func (o *Orchestrator) tryGeneratePost(ctx context.Context, acc models.Accomplishment) (string, error) {
	tpl, err := o.registry.Get(prompts.TemplateShareablePost)
	if err != nil {
		return "", err
	}

	resolved := prompts.Build(tpl, map[string]string{
		"userName":             acc.UserName,
		"aiGeneratedStatement": acc.AIGeneratedStatement,
		"impactType":           string(acc.ImpactType),
	})

	text, err := o.client.Complete(ctx, resolved)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &llm.LLMCallError{Err: errEmptyCompletion}
	}
	return text, nil
}
