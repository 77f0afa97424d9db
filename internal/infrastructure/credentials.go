package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

const credentialsFileName = "kaggle.json"

// CredentialsChecker validates the Kaggle API credential file
type CredentialsChecker struct {
	path string
}

// NewCredentialsChecker creates a checker for kaggle.json in configDir.
// An empty configDir falls back to $KAGGLE_CONFIG_DIR, then ~/.kaggle.
func NewCredentialsChecker(configDir string) (*CredentialsChecker, error) {
	if configDir == "" {
		configDir = os.Getenv("KAGGLE_CONFIG_DIR")
	}
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".kaggle")
	}
	return &CredentialsChecker{path: filepath.Join(configDir, credentialsFileName)}, nil
}

// Path returns the credential file location
func (c *CredentialsChecker) Path() string {
	return c.path
}

// Load reads and validates the credential file
func (c *CredentialsChecker) Load() (*domain.Credentials, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCredentialsMissing, c.path)
		}
		return nil, fmt.Errorf("%w: cannot read %s: %v", domain.ErrCredentialsInvalid, c.path, err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: cannot parse %s: %v", domain.ErrCredentialsInvalid, c.path, err)
	}
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: %s must contain username and key", domain.ErrCredentialsInvalid, c.path)
	}

	return &creds, nil
}
