package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/dmitrijs2005/bioguard/internal/client/models"
	"github.com/dmitrijs2005/bioguard/internal/filex"
)

const sessionFileName = "token"

type SessionStore interface {
	Load() (*models.Session, error)
	Save(s *models.Session) error
	Clear() error
}

// FileSessionStore keeps the session as JSON in <dir>/token under the
// working directory.
type FileSessionStore struct {
	dir string
}

func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{dir: dir}
}

func (f *FileSessionStore) path() (string, error) {
	dir, err := filex.EnsureSubdDir(f.dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFileName), nil
}

// Load returns ErrNotLoggedIn when no session was saved.
func (f *FileSessionStore) Load() (*models.Session, error) {
	path, err := f.path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &s, nil
}

func (f *FileSessionStore) Save(s *models.Session) error {
	path, err := f.path()
	if err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(path, data, 0o600)
}

func (f *FileSessionStore) Clear() error {
	path, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemorySessionStore keeps the session in memory only.
type MemorySessionStore struct {
	session *models.Session
}

func (m *MemorySessionStore) Load() (*models.Session, error) {
	if m.session == nil {
		return nil, ErrNotLoggedIn
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemorySessionStore) Save(s *models.Session) error {
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.session = nil
	return nil
}
