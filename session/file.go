package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/pkg/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the session as a small JSON document so a token
// survives between CLI invocations. A missing file is an empty session.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileContents struct {
	Token       string             `json:"token,omitempty"`
	CurrentUser *users.CurrentUser `json:"currentUser,omitempty"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		return "", err
	}
	return c.Token, nil
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		return err
	}
	c.Token = token
	return s.write(c)
}

func (s *FileStore) User() (*users.CurrentUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		return nil, err
	}
	return c.CurrentUser, nil
}

func (s *FileStore) SetUser(user *users.CurrentUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		return err
	}
	c.CurrentUser = user
	return s.write(c)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove")
	}
	return nil
}

func (s *FileStore) read() (fileContents, error) {
	var c fileContents
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, errors.Wrap(err, "[FileStore.read]")
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, errors.Wrap(err, "[FileStore.read] corrupt session file")
	}
	return c, nil
}

func (s *FileStore) write(c fileContents) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.write] mkdir")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] marshal")
	}

	// Readers only ever see a complete file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.write]")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "[FileStore.write] rename")
	}
	return nil
}
