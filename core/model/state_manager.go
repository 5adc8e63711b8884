// Package model provides fitted-state management, estimator interfaces and
// persistence helpers shared by the statistical models in this library.
package model

import (
	"fmt"
	"sync"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// Models hold it by composition rather than embedding a base estimator.
type StateManager struct {
	Fitted bool // Public for gob encoding
	mu     sync.RWMutex

	// Optional metadata - Public for gob encoding
	NCovariates int
	NSamples    int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NCovariates = 0
	s.NSamples = 0
}

// SetDimensions records the number of covariates and samples seen during fitting.
func (s *StateManager) SetDimensions(nCovariates, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NCovariates = nCovariates
	s.NSamples = nSamples
}

// GetDimensions returns the number of covariates and samples seen during fitting.
func (s *StateManager) GetDimensions() (nCovariates, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NCovariates, s.NSamples
}

// RequireFitted returns an error if the model has not been fitted.
func (s *StateManager) RequireFitted() error {
	if !s.IsFitted() {
		return fmt.Errorf("model has not been fitted yet. Call Fit() first")
	}
	return nil
}

// ModelState represents the complete state of a model.
// This can be used for serialization and debugging.
type ModelState struct {
	Fitted      bool                   `json:"fitted"`
	NCovariates int                    `json:"n_covariates,omitempty"`
	NSamples    int                    `json:"n_samples,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelState{
		Fitted:      s.Fitted,
		NCovariates: s.NCovariates,
		NSamples:    s.NSamples,
	}
}

// SetState sets the state from a ModelState struct.
func (s *StateManager) SetState(state ModelState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Fitted = state.Fitted
	s.NCovariates = state.NCovariates
	s.NSamples = state.NSamples
}

// WithState executes fn with the state locked for reading.
func (s *StateManager) WithState(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// WithStateMut executes fn with the state locked for writing.
func (s *StateManager) WithStateMut(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
