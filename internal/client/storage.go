package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Storage persists breaker state across restarts.
type Storage interface {
	Load(state *BreakerState) error
	Save(state BreakerState) error
}

type memoryStorage struct {
	mutex sync.Mutex
	state *BreakerState
}

func NewMemoryStorage() Storage {
	return &memoryStorage{}
}

func (s *memoryStorage) Load(state *BreakerState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state == nil {
		return errors.New("no stored state")
	}

	*state = *s.state
	return nil
}

func (s *memoryStorage) Save(state BreakerState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.state = &state
	return nil
}

type fileStorage struct {
	mutex sync.Mutex
	path  string
}

// NewFileStorage keeps the state as a JSON file. A missing or corrupted
// file is reported on Load, the caller falls back to a fresh state.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (s *fileStorage) Load(state *BreakerState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, state)
}

func (s *fileStorage) Save(state BreakerState) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, b, 0o600)
}
