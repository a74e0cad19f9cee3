package models

import (
	"time"
)

// ImpactType classifies who an accomplishment primarily benefited.
type ImpactType string

const (
	ImpactTeam     ImpactType = "team"
	ImpactCustomer ImpactType = "customer"
)

// Valid reports whether the impact type is one of the known values.
func (t ImpactType) Valid() bool {
	return t == ImpactTeam || t == ImpactCustomer
}

// ContextualAnswer pairs a generated follow-up question with the employee's answer.
type ContextualAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AccomplishmentDraft is the in-progress, unpersisted accomplishment data
// assembled by the submission flow. It is promoted to an Accomplishment only
// on final approval.
type AccomplishmentDraft struct {
	UserID             string             `json:"user_id"`
	UserName           string             `json:"user_name"`
	OriginalStatement  string             `json:"original_statement"`
	ImpactType         ImpactType         `json:"impact_type"`
	EmailAppreciation  string             `json:"email_appreciation,omitempty"`
	ContextualAnswers  []ContextualAnswer `json:"contextual_answers,omitempty"`
	AdditionalDetails  string             `json:"additional_details,omitempty"`
	GeneratedStatement string             `json:"generated_statement,omitempty"`
}

// Accomplishment is a persisted record with a server-assigned id and
// timestamp. After creation it is mutated only by counter increments.
type Accomplishment struct {
	ID                   string     `json:"id" db:"id"`
	UserID               string     `json:"user_id" db:"user_id"`
	UserName             string     `json:"user_name" db:"user_name"`
	OriginalStatement    string     `json:"original_statement" db:"original_statement"`
	ImpactType           ImpactType `json:"impact_type" db:"impact_type"`
	EmailAppreciation    string     `json:"email_appreciation,omitempty" db:"email_appreciation"`
	AdditionalDetails    string     `json:"additional_details,omitempty" db:"additional_details"`
	AIGeneratedStatement string     `json:"ai_generated_statement" db:"ai_generated_statement"`
	SharedPost           string     `json:"shared_post,omitempty" db:"shared_post"`
	CongratulationsCount int        `json:"congratulations_count" db:"congratulations_count"`
	VotesCount           int        `json:"votes_count" db:"votes_count"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// CurrentUser is the opaque identity supplied by the caller; how it is issued
// is outside this service.
type CurrentUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
