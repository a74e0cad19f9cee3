package submission

import (
	"errors"
	"sync"

	"github.com/mppise/eaappreciate/pkg/models"
)

// ErrFlowNotFound is returned for unknown flow session ids.
var ErrFlowNotFound = errors.New("submission: flow not found")

// Manager tracks active submission flows by session id so the HTTP layer can
// drive one flow per client. Flows for different drafts are fully independent
// and may be in flight simultaneously.
type Manager struct {
	mu    sync.RWMutex
	flows map[string]*Flow
	gen   Generator
	store Saver
}

// NewManager creates an empty flow manager.
func NewManager(gen Generator, store Saver) *Manager {
	return &Manager{
		flows: make(map[string]*Flow),
		gen:   gen,
		store: store,
	}
}

// Start creates a new flow for the given user and registers it.
func (m *Manager) Start(user models.CurrentUser) *Flow {
	flow := NewFlow(user, m.gen, m.store)
	m.mu.Lock()
	m.flows[flow.ID()] = flow
	m.mu.Unlock()
	return flow
}

// Get returns the flow registered under id.
func (m *Manager) Get(id string) (*Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flow, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return flow, nil
}

// Remove drops a flow from the registry, e.g. after submission.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()
}
