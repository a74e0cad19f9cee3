package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mppise/eaappreciate/pkg/models"
)

// Deterministic local generation used when the model path fails.

var (
	errEmptyCompletion = errors.New("model returned empty text")
	errEmptyQuestion   = errors.New("model returned an empty question")
)

func errQuestionCount(n int) error {
	return fmt.Errorf("model returned %d questions, want %d to %d", n, minQuestions, maxQuestions)
}

// fallbackWordLimit is enforced only on locally composed statements; the
// model path trusts the prompt's format instruction instead.
const fallbackWordLimit = 100

// appreciationExcerptLimit caps the quoted appreciation text in a fallback statement.
const appreciationExcerptLimit = 80

var customerQuestions = []string{
	"What problem was the customer facing before you stepped in?",
	"How did the customer react to the outcome?",
	"What would have happened for the customer if this had not been done?",
	"How quickly were you able to resolve the customer's issue?",
	"Did this change how the customer works with your team?",
}

var teamQuestions = []string{
	"How did this help your teammates in their day-to-day work?",
	"Did you collaborate with anyone else on this?",
	"What part of the team's workload did this reduce?",
	"Will other teams be able to benefit from this as well?",
	"What did you learn that the rest of the team can reuse?",
}

var genericQuestions = []string{
	"What was the most challenging part of this accomplishment?",
	"How long did this take from start to finish?",
	"What skills did you rely on to get this done?",
	"Who else noticed or benefited from this work?",
}

// fallbackQuestions picks 3 or 4 questions from the pool for the impact type,
// in shuffled order.
func (o *Orchestrator) fallbackQuestions(impactType models.ImpactType) []string {
	var pool []string
	switch impactType {
	case models.ImpactCustomer:
		pool = append(pool, customerQuestions...)
	case models.ImpactTeam:
		pool = append(pool, teamQuestions...)
	default:
		pool = append(pool, genericQuestions...)
	}
	pool = append(pool, genericQuestions...)

	o.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	count := minQuestions + o.rng.Intn(2) // 3 or 4
	return dedupe(pool)[:count]
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// fallbackStatement composes a statement from the draft without a model:
// the employee's name, their own words de-prefixed into third person, an
// additional-details sentence, a short quoted appreciation excerpt, and a
// closing sentence chosen by impact type. Unlike the model path, the result
// is hard-truncated to the word limit.
func fallbackStatement(draft models.AccomplishmentDraft) string {
	var b strings.Builder

	b.WriteString(draft.UserName)
	b.WriteString(" ")
	b.WriteString(rephraseFirstPerson(draft.OriginalStatement))
	if !strings.HasSuffix(b.String(), ".") {
		b.WriteString(".")
	}

	if strings.TrimSpace(draft.AdditionalDetails) != "" {
		b.WriteString(" They shared further context on the effort and its outcome.")
	}

	if appreciation := strings.TrimSpace(draft.EmailAppreciation); appreciation != "" {
		// Truncate on rune boundaries; a byte slice can split a multi-byte
		// character and leave invalid UTF-8 in the statement.
		if runes := []rune(appreciation); len(runes) > appreciationExcerptLimit {
			appreciation = string(runes[:appreciationExcerptLimit])
		}
		b.WriteString(fmt.Sprintf(" A note of appreciation read: \"%s\".", appreciation))
	}

	switch draft.ImpactType {
	case models.ImpactCustomer:
		b.WriteString(" This effort made a real difference for the customer.")
	default:
		b.WriteString(" This effort made the whole team stronger.")
	}

	return truncateWords(b.String(), fallbackWordLimit)
}

// rephraseFirstPerson lowercases the statement and strips leading
// first-person lead-ins ("Today I helped..." -> "helped...") so the text
// reads naturally after the employee's name.
func rephraseFirstPerson(statement string) string {
	s := strings.ToLower(strings.TrimSpace(statement))
	for _, prefix := range []string{"today ", "recently ", "i "} {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}

// truncateWords hard-truncates text to the given word count, appending an
// ellipsis when anything was cut.
func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + "..."
}

// fallbackPost composes a short deterministic share post.
func fallbackPost(acc models.Accomplishment) string {
	statement := strings.TrimSpace(acc.AIGeneratedStatement)
	if statement == "" {
		statement = rephraseFirstPerson(acc.OriginalStatement)
	}
	return fmt.Sprintf("Celebrating %s! %s #TeamWins", acc.UserName, statement)
}
