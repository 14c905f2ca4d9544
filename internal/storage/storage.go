package storage

import (
	"specdash/internal/config"
	"specdash/internal/domain"
)

// Storage persists and loads the last local run (e.g. for the failures viewer).
type Storage interface {
	Save(run domain.TestRun) error
	Load() (*domain.RunOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.RunOutput) error
}

// JSONStorage stores the run in a JSON file under the configured storage path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's storage JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
