package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/kaggle-sync/internal/domain"
)

const sampleDatasetList = `ref                                   title                           size  lastUpdated          downloadCount  voteCount  usabilityRating
------------------------------------  ------------------------------  ----  -------------------  -------------  ---------  ---------------
uciml/pima-indians-diabetes-database  Pima Indians Diabetes Database   9KB  2016-10-06 18:31:56         523104       4987  0.88235295
alexteboul/diabetes-health-indicators Diabetes Health Indicators       6MB  2021-11-08 17:54:27         112403       1337  1.0
mathchi/diabetes-data-set             Diabetes Dataset                 9KB  2020-10-09 12:58:23          89102        654  1.0
`

type fakeResponse struct {
	result *CommandResult
	err    error
}

// fakeRunner returns canned responses in order and records every call
type fakeRunner struct {
	responses []fakeResponse
	calls     [][]string
}

func (f *fakeRunner) Run(ctx context.Context, binary string, args ...string) (*CommandResult, error) {
	f.calls = append(f.calls, append([]string{binary}, args...))
	if len(f.responses) == 0 {
		return &CommandResult{}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp.result, resp.err
}

func okResponse(stdout string) fakeResponse {
	return fakeResponse{result: &CommandResult{Stdout: stdout}}
}

func failResponse(exitCode int, stderr string) fakeResponse {
	return fakeResponse{
		result: &CommandResult{Stderr: stderr, ExitCode: exitCode},
		err:    &CommandError{Command: "kaggle", ExitCode: exitCode, Stderr: stderr, Err: errors.New("exit status")},
	}
}

func newTestKaggleCLI(t *testing.T, runner CommandRunner, mutate func(*domain.Config)) *KaggleCLI {
	t.Helper()
	config := domain.DefaultConfig()
	if mutate != nil {
		mutate(config)
	}
	cli, err := NewKaggleCLI(runner, &config.Kaggle, &config.Search, &config.Download, zap.NewNop())
	require.NoError(t, err)
	return cli
}

func TestParseDatasetList(t *testing.T) {
	refs := ParseDatasetList(sampleDatasetList)

	assert.Equal(t, []string{
		"uciml/pima-indians-diabetes-database",
		"alexteboul/diabetes-health-indicators",
		"mathchi/diabetes-data-set",
	}, refs)
}

func TestParseDatasetList_NoResults(t *testing.T) {
	assert.Empty(t, ParseDatasetList(""))
	assert.Empty(t, ParseDatasetList("No datasets found\n"))
	assert.Empty(t, ParseDatasetList("ref  title\n---  -----\n"))
}

func TestParseDatasetList_SkipsRowsWithoutSeparator(t *testing.T) {
	output := "ref title\n--- -----\nwarning: something\na/one One\n\nb/two Two\n"

	assert.Equal(t, []string{"a/one", "b/two"}, ParseDatasetList(output))
}

func TestSearch_BuildsCommandAndTruncates(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse(sampleDatasetList)}}
	cli := newTestKaggleCLI(t, runner, nil)

	refs, err := cli.Search(context.Background(), "diabetes health", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"uciml/pima-indians-diabetes-database", "alexteboul/diabetes-health-indicators"}, refs)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"kaggle", "datasets", "list", "--search", "diabetes health", "--sort-by", "votes"}, runner.calls[0])
}

func TestSearch_AppendsSearchArgs(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse(sampleDatasetList)}}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) {
		c.Kaggle.SearchArgs = `--file-type csv --tags "health care"`
	})

	_, err := cli.Search(context.Background(), "diabetes", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"--file-type", "csv", "--tags", "health care"}, runner.calls[0][7:])
}

func TestNewKaggleCLI_InvalidSearchArgs(t *testing.T) {
	config := domain.DefaultConfig()
	config.Kaggle.SearchArgs = `--tags "unterminated`

	_, err := NewKaggleCLI(&fakeRunner{}, &config.Kaggle, &config.Search, &config.Download, zap.NewNop())
	assert.Error(t, err)
}

func TestSearch_FailureReturnsError(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{failResponse(1, "401 - Unauthorized")}}
	cli := newTestKaggleCLI(t, runner, nil)

	refs, err := cli.Search(context.Background(), "diabetes", 10)
	require.Error(t, err)
	assert.Empty(t, refs)
	assert.Contains(t, err.Error(), "401 - Unauthorized")
}

func TestSearch_Pagination(t *testing.T) {
	page2 := "ref title\n--- -----\nd/four Four\ne/five Five\n"
	runner := &fakeRunner{responses: []fakeResponse{okResponse(sampleDatasetList), okResponse(page2)}}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) { c.Search.MaxPages = 3 })

	refs, err := cli.Search(context.Background(), "diabetes", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"uciml/pima-indians-diabetes-database",
		"alexteboul/diabetes-health-indicators",
		"mathchi/diabetes-data-set",
		"d/four",
	}, refs)

	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[1], "--page")
	assert.Contains(t, runner.calls[1], "2")
}

func TestSearch_PaginationStopsOnEmptyPage(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse(sampleDatasetList), okResponse("No datasets found")}}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) { c.Search.MaxPages = 5 })

	refs, err := cli.Search(context.Background(), "diabetes", 50)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.Len(t, runner.calls, 2)
}

func TestSearch_PaginationKeepsEarlierPagesOnFailure(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse(sampleDatasetList), failResponse(1, "429 Too Many Requests")}}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) { c.Search.MaxPages = 2 })

	refs, err := cli.Search(context.Background(), "diabetes", 50)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
}

func TestDownload_Success(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{}
	cli := newTestKaggleCLI(t, runner, nil)

	dest, err := cli.Download(context.Background(), domain.DatasetRef{Owner: "uciml", Name: "pima"}, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "pima"), dest)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"kaggle", "datasets", "download", "-d", "uciml/pima", "-p", dest, "--unzip"}, runner.calls[0])
}

func TestDownload_WithoutUnzip(t *testing.T) {
	runner := &fakeRunner{}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) { c.Download.Unzip = false })

	_, err := cli.Download(context.Background(), domain.DatasetRef{Owner: "a", Name: "one"}, t.TempDir())
	require.NoError(t, err)
	assert.NotContains(t, runner.calls[0], "--unzip")
}

func TestDownload_FailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		reason domain.FailureReason
	}{
		{name: "not found", stderr: "404 - Not Found - Dataset not found", reason: domain.ReasonNotFound},
		{name: "access denied", stderr: "403 - Forbidden - Permission 'datasets.get' was denied", reason: domain.ReasonAccessDenied},
		{name: "other", stderr: "Connection reset by peer", reason: domain.ReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{responses: []fakeResponse{failResponse(1, tt.stderr)}}
			cli := newTestKaggleCLI(t, runner, nil)

			_, err := cli.Download(context.Background(), domain.DatasetRef{Owner: "b", Name: "two"}, t.TempDir())
			require.Error(t, err)

			var dlErr *domain.DownloadError
			require.True(t, errors.As(err, &dlErr))
			assert.Equal(t, tt.reason, dlErr.Reason)
			assert.Equal(t, tt.stderr, dlErr.Detail)
			assert.Equal(t, "b/two", dlErr.Ref)
		})
	}
}

func TestVersion(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse("Kaggle API 1.6.17\n")}}
	cli := newTestKaggleCLI(t, runner, nil)

	version, err := cli.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kaggle API 1.6.17", version)
	assert.Equal(t, []string{"kaggle", "--version"}, runner.calls[0])
}

func TestVersion_NotFound(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{{
		err: &CommandError{Command: "kaggle", ExitCode: -1, Err: os.ErrNotExist},
	}}}
	cli := newTestKaggleCLI(t, runner, nil)

	_, err := cli.Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestVersion_MinimumVersion(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{okResponse("Kaggle API 1.5.16")}}
	cli := newTestKaggleCLI(t, runner, func(c *domain.Config) { c.Kaggle.MinVersion = "1.6" })

	_, err := cli.Version(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "older than required")
}

func TestCheckMinVersion(t *testing.T) {
	assert.NoError(t, CheckMinVersion("Kaggle API 1.6.17", "1.6.0"))
	assert.NoError(t, CheckMinVersion("Kaggle API 1.7", "1.6.17"))
	assert.Error(t, CheckMinVersion("Kaggle API 1.5.16", "1.6"))
	assert.Error(t, CheckMinVersion("Kaggle API", "1.6"))
	assert.Error(t, CheckMinVersion("Kaggle API 1.6.17", "not-a-version"))
}

func TestClassifyDownloadFailure(t *testing.T) {
	assert.Equal(t, domain.ReasonNotFound, ClassifyDownloadFailure("404 Client Error"))
	assert.Equal(t, domain.ReasonAccessDenied, ClassifyDownloadFailure("403 Client Error"))
	assert.Equal(t, domain.ReasonOther, ClassifyDownloadFailure(""))
}
