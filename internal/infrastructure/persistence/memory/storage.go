// Package memory implements slot storage in process memory. State is lost on
// exit; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

// Storage is a map of slot name to value.
type Storage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewStorage returns an empty storage.
func NewStorage() *Storage {
	return &Storage{slots: make(map[string][]byte)}
}

// Load returns a copy of the slot value.
func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.slots[slot]
	if !ok {
		return nil, shared.ErrSlotNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores copies of all values at once.
func (s *Storage) Save(ctx context.Context, slots map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, v := range slots {
		s.slots[name] = append([]byte(nil), v...)
	}
	return nil
}
