// Package tokenstore persists the admin credential between CLI invocations.
package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

// ErrNoCredential is returned when nobody is logged in or the saved token expired
var ErrNoCredential = errors.New("not logged in")

const fileName = "credentials.yaml"

// Store reads and writes the credential file
type Store struct {
	path string
	now  func() time.Time
}

// New returns a store backed by path
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Default returns a store in the user's config directory
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	return New(filepath.Join(dir, "shopdesk", fileName)), nil
}

// Path returns the credential file location
func (s *Store) Path() string {
	return s.path
}

// Save writes cred with owner-only permissions
func (s *Store) Save(cred models.Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := yaml.Marshal(&cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Load returns the saved credential, or ErrNoCredential if there is none or it expired
func (s *Store) Load() (*models.Credential, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred models.Credential
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	if cred.Token == "" {
		return nil, ErrNoCredential
	}
	if cred.Expired(s.now()) {
		return nil, fmt.Errorf("%w: token expired at %s", ErrNoCredential, cred.Expires.Format(time.RFC3339))
	}
	return &cred, nil
}

// Clear removes the saved credential. Clearing an absent file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
