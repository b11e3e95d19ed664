package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps sessions in memory and mirrors every mutation to a
// JSON file. Passwords are kept in memory only: Session marshals
// without the password field, so the file never contains one.
//
// A missing or corrupt file is tolerated on load, the store starts
// empty. Write failures are logged and in-memory state stays
// authoritative for the rest of the process lifetime.
type FileStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
	path     string
	logger   *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	f := &FileStore{
		sessions: make(map[int64]Session),
		path:     path,
		logger:   logger,
	}
	f.load()
	return f
}

func (f *FileStore) load() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("Failed to read sessions file, starting empty",
				zap.String("path", f.path),
				zap.Error(err))
		}
		return
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		f.logger.Warn("Corrupt sessions file, starting empty",
			zap.String("path", f.path),
			zap.Error(err))
		return
	}

	for _, s := range sessions {
		f.sessions[s.ChatID] = s
	}
	f.logger.Info("Sessions loaded",
		zap.String("path", f.path),
		zap.Int("count", len(f.sessions)))
}

// flush writes all sessions to disk. Caller must hold f.mu.
func (f *FileStore) flush() error {
	sessions := make([]Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		sessions = append(sessions, s)
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write sessions file: %w", err)
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, chatID int64) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (f *FileStore) Put(_ context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions[s.ChatID] = *s

	if err := f.flush(); err != nil {
		f.logger.Error("Failed to persist sessions",
			zap.Int64("chat_id", s.ChatID),
			zap.Error(err))
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, chatID)

	if err := f.flush(); err != nil {
		f.logger.Error("Failed to persist sessions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	return nil
}

func (f *FileStore) FindByOrder(_ context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.Matches(id) {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}
