package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Artifact is the persisted unit of a trained model: coefficients,
// intercept, the frozen vocabulary and the ordered selected-column list.
// The four always travel together so encoding and classifier shape can
// never drift apart between retrains.
type Artifact struct {
	ModelName  string    `json:"model_name"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
	Seed       int64     `json:"seed"`

	Vocabulary Vocabulary         `json:"vocabulary"`
	Selected   []string           `json:"selected_columns"`
	Model      LogisticRegression `json:"model"`

	selector *FeatureSelector
}

// Init rebuilds the derived lookup structures and validates that the
// coefficient vector matches the selected columns.
func (a *Artifact) Init() error {
	if len(a.Selected) == 0 {
		return errors.New("artifact has no selected columns")
	}
	if len(a.Model.Weights) != len(a.Selected) {
		return fmt.Errorf("artifact has %d coefficients for %d selected columns",
			len(a.Model.Weights), len(a.Selected))
	}
	a.Vocabulary.Init()
	selector, err := NewFeatureSelector(&a.Vocabulary, a.Selected)
	if err != nil {
		return err
	}
	a.selector = selector
	return nil
}

// Predict encodes one record against the frozen vocabulary, projects it
// onto the selected columns and runs the classifier. Pure per call; safe
// for concurrent use.
func (a *Artifact) Predict(rec FlightRecord) (int, float64, error) {
	if a.selector == nil {
		return 0, 0, errors.New("artifact not initialized")
	}
	full, err := a.Vocabulary.Encode(rec)
	if err != nil {
		return 0, 0, err
	}
	return a.Model.Predict(a.selector.Project(full))
}

// Version identifies one trained artifact instance; it changes on every
// retrain or reload.
func (a *Artifact) Version() int64 {
	return a.TrainedAt.UnixNano()
}

// Save writes the artifact as JSON via a temp file and rename, so a reader
// never observes a half-written model.
func (a *Artifact) Save(path string) error {
	if len(a.Model.Weights) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadArtifact reads and validates a model artifact. Any failure here is
// fatal to a starting serving process: it must not serve without a model.
func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := artifact.Init(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &artifact, nil
}

// Store holds the current artifact behind an atomic pointer. Serving
// workers read it lock-free; retraining and hot reload replace the whole
// artifact at once.
type Store struct {
	current atomic.Pointer[Artifact]
}

func NewStore(artifact *Artifact) *Store {
	s := &Store{}
	if artifact != nil {
		s.current.Store(artifact)
	}
	return s
}

// Current returns the active artifact, or nil when none is loaded.
func (s *Store) Current() *Artifact {
	return s.current.Load()
}

func (s *Store) Swap(artifact *Artifact) {
	s.current.Store(artifact)
}
