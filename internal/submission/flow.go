package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/pkg/models"
)

// State identifies where a submission flow is in its lifecycle.
type State string

const (
	StateBasic   State = "basic"
	StateDynamic State = "dynamic"
	StatePreview State = "preview"
)

// fieldWordLimit caps every free-text field, basic and dynamic alike.
const fieldWordLimit = 60

// Generator is the slice of the AI orchestrator the flow needs.
type Generator interface {
	GenerateContextualQuestions(ctx context.Context, statement string, impactType models.ImpactType, appreciation string) []string
	GenerateStatement(ctx context.Context, draft models.AccomplishmentDraft) string
}

// Saver is the slice of the persistence service the flow needs.
type Saver interface {
	Create(ctx context.Context, acc *models.Accomplishment) error
}

// ErrRequestInFlight is returned when a transition is triggered while a
// previous one is still running. Each flow allows a single outstanding
// request; the gate is released when the request resolves either way.
var ErrRequestInFlight = errors.New("submission: request already in flight")

// StateError reports an action attempted from the wrong state.
type StateError struct {
	Action string
	State  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("submission: cannot %s from state %s", e.Action, e.State)
}

// ValidationError lists per-field violations that blocked a transition.
// No network call is made when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "submission: validation failed: " + strings.Join(e.Fields, "; ")
}

// Flow drives one draft through the multi-stage form. One flow serves one
// user and one form instance; there is no multi-writer contention on a draft.
type Flow struct {
	mu    sync.Mutex
	id    string
	state State
	busy  bool

	draft     models.AccomplishmentDraft
	questions []string
	answers   []string
	preview   string

	gen   Generator
	store Saver
}

// NewFlow creates a flow in the Basic state for the given user.
func NewFlow(user models.CurrentUser, gen Generator, store Saver) *Flow {
	return &Flow{
		id:    uuid.NewString(),
		state: StateBasic,
		draft: models.AccomplishmentDraft{
			UserID:   user.ID,
			UserName: user.Name,
		},
		gen:   gen,
		store: store,
	}
}

// ID returns the flow's session id.
func (f *Flow) ID() string { return f.id }

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Questions returns the generated follow-up questions, if any.
func (f *Flow) Questions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.questions...)
}

// Preview returns the currently shown generated statement, if any.
func (f *Flow) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// Draft returns a copy of the current draft.
func (f *Flow) Draft() models.AccomplishmentDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// SetBasicFields records the basic entry fields. Allowed in any state before
// submission; validation happens on the transitions, not here.
func (f *Flow) SetBasicFields(statement string, impactType models.ImpactType, appreciation string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.OriginalStatement = statement
	f.draft.ImpactType = impactType
	f.draft.EmailAppreciation = appreciation
}

// SetAnswers records answers to the dynamic questions by position. Extra
// answers beyond the question count are ignored.
func (f *Flow) SetAnswers(answers []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range answers {
		if i < len(f.answers) {
			f.answers[i] = a
		}
	}
}

// acquire takes the flow's single-request gate.
func (f *Flow) acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrRequestInFlight
	}
	f.busy = true
	return nil
}

// release frees the gate regardless of outcome.
func (f *Flow) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// GenerateQuestions drives Basic -> Dynamic: validates the basic fields,
// asks the orchestrator for follow-up questions, and renders one answer slot
// per question. Validation failure blocks the transition with no call made.
func (f *Flow) GenerateQuestions(ctx context.Context) ([]string, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()

	f.mu.Lock()
	if f.state != StateBasic {
		state := f.state
		f.mu.Unlock()
		return nil, &StateError{Action: "generate questions", State: state}
	}
	draft := f.draft
	f.mu.Unlock()

	if err := validateBasicFields(draft); err != nil {
		return nil, err
	}

	questions := f.gen.GenerateContextualQuestions(ctx,
		draft.OriginalStatement, draft.ImpactType, draft.EmailAppreciation)

	f.mu.Lock()
	f.questions = questions
	f.answers = make([]string, len(questions))
	f.state = StateDynamic
	f.mu.Unlock()

	log.Info().
		Str("flow_id", f.id).
		Int("questions", len(questions)).
		Msg("Flow advanced to dynamic stage")
	return questions, nil
}

// GenerateStatement drives Dynamic -> Preview: validates every field,
// concatenates answered questions into the draft's additional details, and
// asks the orchestrator for a statement preview. Unanswered questions are
// silently omitted.
func (f *Flow) GenerateStatement(ctx context.Context) (string, error) {
	if err := f.acquire(); err != nil {
		return "", err
	}
	defer f.release()

	f.mu.Lock()
	if f.state != StateDynamic {
		state := f.state
		f.mu.Unlock()
		return "", &StateError{Action: "generate statement", State: state}
	}
	draft := f.draft
	questions := append([]string(nil), f.questions...)
	answers := append([]string(nil), f.answers...)
	f.mu.Unlock()

	if err := validateAllFields(draft, answers); err != nil {
		return "", err
	}

	draft.ContextualAnswers = pairAnswers(questions, answers)
	draft.AdditionalDetails = formatDetails(draft.ContextualAnswers)

	statement := f.gen.GenerateStatement(ctx, draft)

	f.mu.Lock()
	f.draft.ContextualAnswers = draft.ContextualAnswers
	f.draft.AdditionalDetails = draft.AdditionalDetails
	f.draft.GeneratedStatement = statement
	f.preview = statement
	f.state = StatePreview
	f.mu.Unlock()

	log.Info().Str("flow_id", f.id).Msg("Flow advanced to preview stage")
	return statement, nil
}

// Regenerate re-invokes statement generation with identical draft data and
// replaces the shown preview. Preview self-loop; unlimited repeats.
func (f *Flow) Regenerate(ctx context.Context) (string, error) {
	if err := f.acquire(); err != nil {
		return "", err
	}
	defer f.release()

	f.mu.Lock()
	if f.state != StatePreview {
		state := f.state
		f.mu.Unlock()
		return "", &StateError{Action: "regenerate", State: state}
	}
	draft := f.draft
	f.mu.Unlock()

	statement := f.gen.GenerateStatement(ctx, draft)

	f.mu.Lock()
	f.draft.GeneratedStatement = statement
	f.preview = statement
	f.mu.Unlock()

	log.Info().Str("flow_id", f.id).Msg("Preview statement regenerated")
	return statement, nil
}

// Back navigates one stage backward. Answers survive the trip; the preview
// text is discarded when leaving Preview. Like the forward transitions, Back
// is rejected while a request is in flight so a completing call can never
// commit over a state the user has already left.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrRequestInFlight
	}

	switch f.state {
	case StatePreview:
		f.preview = ""
		f.draft.GeneratedStatement = ""
		f.state = StateDynamic
	case StateDynamic:
		f.state = StateBasic
	default:
		return &StateError{Action: "navigate back", State: f.state}
	}
	return nil
}

// Submit drives Preview -> Submitted: persists the draft with a fresh id and
// timestamp. On success the flow resets to Basic with all fields cleared and
// the created record is returned as confirmation. On persistence failure the
// state stays Preview and the caller may retry.
func (f *Flow) Submit(ctx context.Context) (*models.Accomplishment, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()

	f.mu.Lock()
	if f.state != StatePreview {
		state := f.state
		f.mu.Unlock()
		return nil, &StateError{Action: "submit", State: state}
	}
	draft := f.draft
	preview := f.preview
	f.mu.Unlock()

	// The persisted statement must never be empty; generate one
	// synchronously if somehow missing (legacy path).
	if preview == "" {
		preview = f.gen.GenerateStatement(ctx, draft)
	}

	acc := &models.Accomplishment{
		ID:                   uuid.NewString(),
		UserID:               draft.UserID,
		UserName:             draft.UserName,
		OriginalStatement:    draft.OriginalStatement,
		ImpactType:           draft.ImpactType,
		EmailAppreciation:    draft.EmailAppreciation,
		AdditionalDetails:    draft.AdditionalDetails,
		AIGeneratedStatement: preview,
		CreatedAt:            time.Now().UTC(),
	}

	if err := f.store.Create(ctx, acc); err != nil {
		log.Error().Err(err).Str("flow_id", f.id).Msg("Failed to persist accomplishment")
		return nil, err
	}

	f.mu.Lock()
	user := models.CurrentUser{ID: f.draft.UserID, Name: f.draft.UserName}
	f.draft = models.AccomplishmentDraft{UserID: user.ID, UserName: user.Name}
	f.questions = nil
	f.answers = nil
	f.preview = ""
	f.state = StateBasic
	f.mu.Unlock()

	log.Info().
		Str("flow_id", f.id).
		Str("accomplishment_id", acc.ID).
		Msg("Accomplishment submitted")
	return acc, nil
}

// pairAnswers zips questions with their answers, dropping unanswered ones.
func pairAnswers(questions, answers []string) []models.ContextualAnswer {
	var out []models.ContextualAnswer
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if strings.TrimSpace(answers[i]) == "" {
			continue
		}
		out = append(out, models.ContextualAnswer{Question: q, Answer: answers[i]})
	}
	return out
}

// formatDetails renders answered questions as "Q:/A:" blocks separated by
// blank lines.
func formatDetails(pairs []models.ContextualAnswer) string {
	blocks := make([]string, 0, len(pairs))
	for _, p := range pairs {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", p.Question, p.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func validateBasicFields(draft models.AccomplishmentDraft) error {
	var fields []string
	if strings.TrimSpace(draft.OriginalStatement) == "" {
		fields = append(fields, "original statement is required")
	} else if wordCount(draft.OriginalStatement) > fieldWordLimit {
		fields = append(fields, fmt.Sprintf("original statement exceeds %d words", fieldWordLimit))
	}
	if !draft.ImpactType.Valid() {
		fields = append(fields, "impact type must be selected")
	}
	if wordCount(draft.EmailAppreciation) > fieldWordLimit {
		fields = append(fields, fmt.Sprintf("email appreciation exceeds %d words", fieldWordLimit))
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateAllFields(draft models.AccomplishmentDraft, answers []string) error {
	var fields []string
	if basicErr := validateBasicFields(draft); basicErr != nil {
		var verr *ValidationError
		if errors.As(basicErr, &verr) {
			fields = append(fields, verr.Fields...)
		}
	}
	for i, a := range answers {
		if wordCount(a) > fieldWordLimit {
			fields = append(fields, fmt.Sprintf("answer %d exceeds %d words", i+1, fieldWordLimit))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
