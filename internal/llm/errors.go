package llm

import "fmt"

// AuthError indicates the client-credential token exchange failed. The
// orchestrator treats it like any other call failure and falls back; it is
// never surfaced raw to the end user.
type AuthError struct {
	Status int // HTTP status from the token endpoint, 0 for transport errors
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm: token exchange failed with status %d", e.Status)
	}
	return fmt.Sprintf("llm: token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// LLMCallError indicates the completion request failed or returned a response
// with no usable completion.
type LLMCallError struct {
	Status int
	Err    error
}

func (e *LLMCallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("llm: completion request failed with status %d", e.Status)
	}
	return fmt.Sprintf("llm: completion request failed: %v", e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }
