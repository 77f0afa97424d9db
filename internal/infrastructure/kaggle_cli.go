package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

// datasetListHeaderLines is the number of header lines (column names and
// dashes) printed by "kaggle datasets list" before the first result row
const datasetListHeaderLines = 2

var versionPattern = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// KaggleCLI implements Searcher and Downloader on top of the kaggle command-line tool
type KaggleCLI struct {
	runner     CommandRunner
	config     *domain.KaggleConfig
	sortBy     string
	maxPages   int
	unzip      bool
	searchArgs []string
	logger     *zap.Logger
}

// NewKaggleCLI creates a new Kaggle CLI client
func NewKaggleCLI(
	runner CommandRunner,
	config *domain.KaggleConfig,
	search *domain.SearchConfig,
	download *domain.DownloadConfig,
	logger *zap.Logger,
) (*KaggleCLI, error) {
	searchArgs, err := shellwords.Parse(config.SearchArgs)
	if err != nil {
		return nil, fmt.Errorf("invalid kaggle search_args %q: %w", config.SearchArgs, err)
	}

	maxPages := search.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	return &KaggleCLI{
		runner:     runner,
		config:     config,
		sortBy:     search.SortBy,
		maxPages:   maxPages,
		unzip:      download.Unzip,
		searchArgs: searchArgs,
		logger:     logger,
	}, nil
}

// Version runs the tool's version command and returns its trimmed output.
// When a minimum version is configured the reported version must satisfy it.
func (c *KaggleCLI) Version(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, c.config.Binary, "--version")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.NotFound() {
			return "", fmt.Errorf("%s not found in PATH: %w", c.config.Binary, err)
		}
		return "", fmt.Errorf("%s --version failed: %w", c.config.Binary, err)
	}

	output := strings.TrimSpace(result.Stdout)
	if c.config.MinVersion != "" {
		if err := CheckMinVersion(output, c.config.MinVersion); err != nil {
			return output, err
		}
	}
	return output, nil
}

// CheckMinVersion extracts the version number from versionOutput and
// verifies it is at least minVersion
func CheckMinVersion(versionOutput, minVersion string) error {
	constraint, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
	}

	raw := versionPattern.FindString(versionOutput)
	if raw == "" {
		return fmt.Errorf("no version number in %q", versionOutput)
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("unparsable version %q: %w", raw, err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("kaggle version %s is older than required %s", version, minVersion)
	}
	return nil
}

// Search lists datasets matching query sorted by the configured popularity
// metric and returns at most limit identifiers
func (c *KaggleCLI) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var refs []string
	for page := 1; page <= c.maxPages && len(refs) < limit; page++ {
		args := []string{"datasets", "list", "--search", query, "--sort-by", c.sortBy}
		if page > 1 {
			args = append(args, "--page", strconv.Itoa(page))
		}
		args = append(args, c.searchArgs...)

		c.logger.Debug("Listing datasets",
			zap.String("command", ShellEscapeCommand(c.config.Binary, args...)))

		result, err := c.runner.Run(ctx, c.config.Binary, args...)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("dataset search failed: %w", describeCommandError(err))
			}
			// Later pages only add candidates; keep what was already listed
			c.logger.Warn("Stopping search pagination after failed page",
				zap.Int("page", page),
				zap.Error(describeCommandError(err)))
			break
		}

		pageRefs := ParseDatasetList(result.Stdout)
		if len(pageRefs) == 0 {
			break
		}
		refs = append(refs, pageRefs...)
	}

	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// ParseDatasetList extracts dataset identifiers from the tabular output of
// "kaggle datasets list": the two header lines are skipped and the first
// column of every remaining row is kept if it looks like owner/name
func ParseDatasetList(output string) []string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) <= datasetListHeaderLines {
		return nil
	}

	var refs []string
	for _, line := range lines[datasetListHeaderLines:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.Contains(fields[0], "/") {
			refs = append(refs, fields[0])
		}
	}
	return refs
}

// Download fetches ref into baseDir/<name> and unpacks it
func (c *KaggleCLI) Download(ctx context.Context, ref domain.DatasetRef, baseDir string) (string, error) {
	dest := filepath.Join(baseDir, ref.Name)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return dest, &domain.DownloadError{
			Ref:    ref.String(),
			Reason: domain.ReasonOther,
			Err:    fmt.Errorf("failed to create destination directory: %w", err),
		}
	}

	args := []string{"datasets", "download", "-d", ref.String(), "-p", dest}
	if c.unzip {
		args = append(args, "--unzip")
	}

	c.logger.Debug("Downloading dataset",
		zap.String("command", ShellEscapeCommand(c.config.Binary, args...)))

	if _, err := c.runner.Run(ctx, c.config.Binary, args...); err != nil {
		detail := ""
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			detail = cmdErr.Stderr
		}
		return dest, &domain.DownloadError{
			Ref:    ref.String(),
			Reason: ClassifyDownloadFailure(detail),
			Detail: detail,
			Err:    err,
		}
	}

	return dest, nil
}

// ClassifyDownloadFailure maps the tool's error text to a failure reason
func ClassifyDownloadFailure(errorText string) domain.FailureReason {
	switch {
	case strings.Contains(errorText, "404"):
		return domain.ReasonNotFound
	case strings.Contains(errorText, "403"):
		return domain.ReasonAccessDenied
	default:
		return domain.ReasonOther
	}
}

// describeCommandError folds the captured stderr into the error message
func describeCommandError(err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return fmt.Errorf("%w: %s", err, cmdErr.Stderr)
	}
	return err
}
