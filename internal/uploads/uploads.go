// Package uploads stores processed item photos on disk under ULID names.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
)

// ErrInvalidName is returned for names that could escape the upload directory.
var ErrInvalidName = errors.New("invalid upload name")

// Store is a directory of uploaded images.
type Store struct {
	dir string

	mu      sync.Mutex
	entropy io.Reader
}

// New creates the directory if needed and returns a store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Store{
		dir:     dir,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) newName(ext string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Now(), s.entropy).String()) + ext
}

// Save writes data under a fresh name with the given extension and returns
// the name.
func (s *Store) Save(data []byte, ext string) (string, error) {
	name := s.newName(ext)
	tmp := filepath.Join(s.dir, "."+name+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming upload: %w", err)
	}
	return name, nil
}

// SaveImage processes an uploaded photo and stores the result. Inputs that
// are not acceptable images are reported as validation errors.
func (s *Store) SaveImage(r io.Reader) (string, error) {
	img, err := imaging.Process(r)
	if err != nil {
		return "", &model.ValidationError{Field: "image", Message: err.Error()}
	}
	return s.Save(img.Data, img.Ext)
}

// Path resolves a stored name to its file path.
func (s *Store) Path(name string) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload %s: %w", name, err)
	}
	return nil
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
