package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Snapshot is the versioned JSON envelope fitted models serialize into.
// Params carries the constructor parameters and State the fitted arrays;
// both are opaque to this package so each model defines its own layout.
type Snapshot struct {
	// ModelType identifies the model that produced the snapshot
	// (e.g. "AalenAdditiveFitter").
	ModelType string `json:"model_type"`

	// Version is the snapshot layout version, checked on import.
	Version string `json:"version"`

	// Params holds the model's constructor parameters.
	Params json.RawMessage `json:"params,omitempty"`

	// State holds the fitted state arrays.
	State json.RawMessage `json:"state,omitempty"`
}

// Validate checks that the envelope carries the required fields.
func (s *Snapshot) Validate() error {
	if s.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}

	if s.Version == "" {
		return fmt.Errorf("version is required")
	}

	if len(s.State) == 0 {
		return fmt.Errorf("snapshot has no state")
	}

	return nil
}

// Encode writes the envelope to w as indented JSON.
func (s *Snapshot) Encode(w io.Writer) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return nil
}

// DecodeSnapshot reads a snapshot envelope from r and verifies that it was
// produced by a model of type wantType.
func DecodeSnapshot(r io.Reader, wantType string) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	if s.ModelType != wantType {
		return nil, fmt.Errorf("snapshot holds a %s, want %s", s.ModelType, wantType)
	}

	return &s, nil
}
