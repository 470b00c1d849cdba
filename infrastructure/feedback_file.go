package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"career-coach/domain"
)

// FileFeedbackRepository keeps feedback as a pretty-printed JSON array on disk.
type FileFeedbackRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileFeedbackRepository(path string) (*FileFeedbackRepository, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("create feedback file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat feedback file: %w", err)
	}
	return &FileFeedbackRepository{path: path}, nil
}

func (r *FileFeedbackRepository) Save(_ context.Context, entry *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readAll()
	if err != nil {
		return err
	}
	entries = append(entries, *entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write feedback: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// All returns every stored entry in insertion order.
func (r *FileFeedbackRepository) All() ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

func (r *FileFeedbackRepository) readAll() ([]domain.Feedback, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	var entries []domain.Feedback
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode feedback file: %w", err)
	}
	return entries, nil
}
