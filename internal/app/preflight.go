package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// ErrPreflightFailed is returned when credentials or the kaggle tool are unusable
var ErrPreflightFailed = errors.New("preflight checks failed")

// CredentialsLoader reads the API credentials
type CredentialsLoader interface {
	Path() string
	Load() (*domain.Credentials, error)
}

// VersionChecker invokes the external tool's version command
type VersionChecker interface {
	Version(ctx context.Context) (string, error)
}

// Preflight verifies credentials and tool availability before any network action
type Preflight struct {
	credentials CredentialsLoader
	tool        VersionChecker
	logger      *zap.Logger
}

// NewPreflight creates a new preflight gate
func NewPreflight(credentials CredentialsLoader, tool VersionChecker, logger *zap.Logger) *Preflight {
	return &Preflight{
		credentials: credentials,
		tool:        tool,
		logger:      logger,
	}
}

// VerifyCredentials reports whether the credential file exists and holds both fields
func (p *Preflight) VerifyCredentials() bool {
	creds, err := p.credentials.Load()
	if err != nil {
		p.logger.Error("Kaggle credentials unusable", zap.Error(err))
		return false
	}
	p.logger.Info("Kaggle credentials found",
		zap.String("path", p.credentials.Path()),
		zap.String("username", creds.Username))
	return true
}

// VerifyTool reports whether the kaggle tool can be invoked
func (p *Preflight) VerifyTool(ctx context.Context) bool {
	version, err := p.tool.Version(ctx)
	if err != nil {
		p.logger.Error("Kaggle CLI check failed", zap.Error(err))
		return false
	}
	p.logger.Info("Kaggle CLI found", zap.String("version", version))
	return true
}

// Run executes both checks and fails on the first one that does not pass
func (p *Preflight) Run(ctx context.Context) error {
	if !p.VerifyCredentials() {
		return fmt.Errorf("%w: credentials", ErrPreflightFailed)
	}
	if !p.VerifyTool(ctx) {
		return fmt.Errorf("%w: kaggle cli", ErrPreflightFailed)
	}
	return nil
}
