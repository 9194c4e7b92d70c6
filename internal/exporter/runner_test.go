package exporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sternrassler/pokemon-export/internal/testutil"
	"github.com/Sternrassler/pokemon-export/pkg/config"
	"github.com/Sternrassler/pokemon-export/pkg/export"
	"github.com/Sternrassler/pokemon-export/pkg/pagination"
	"github.com/Sternrassler/pokemon-export/pkg/record"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	result pagination.Result
}

func (f fakeFetcher) Fetch(context.Context) pagination.Result {
	return f.result
}

type recordingWriter struct {
	calls   int
	records []record.Record
	err     error
}

func (w *recordingWriter) WriteFile(path string, records []record.Record) (export.Summary, error) {
	w.calls++
	w.records = records
	if w.err != nil {
		return export.Summary{Path: path}, w.err
	}
	return export.Summary{Path: path, Rows: len(records), Skipped: len(records) == 0}, nil
}

func TestRunner_FetchFailedSkipsWrite(t *testing.T) {
	writer := &recordingWriter{}
	runner := NewRunner(fakeFetcher{result: pagination.Result{
		Status: pagination.StatusFailed,
		Err:    errors.New("boom"),
	}}, writer, "out.csv", zerolog.Nop())

	report := runner.Run(context.Background())

	assert.Equal(t, 0, writer.calls)
	assert.False(t, report.OK())
	assert.False(t, report.Wrote)
}

func TestRunner_EmptyFetchDelegatesToWriter(t *testing.T) {
	writer := &recordingWriter{}
	runner := NewRunner(fakeFetcher{result: pagination.Result{Status: pagination.StatusEmpty}}, writer, "out.csv", zerolog.Nop())

	report := runner.Run(context.Background())

	assert.Equal(t, 1, writer.calls)
	assert.Empty(t, writer.records)
	assert.True(t, report.OK())
	assert.False(t, report.Wrote)
	assert.True(t, report.Write.Skipped)
}

func TestRunner_WriteErrorIsRecorded(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := &recordingWriter{err: errors.New("disk full")}
	runner := NewRunner(fakeFetcher{result: pagination.Result{
		Status:  pagination.StatusFetched,
		Records: []record.Record{record.New("name", `"a"`)},
	}}, writer, "out.csv", zerolog.New(buf))

	report := runner.Run(context.Background())

	assert.EqualError(t, report.WriteErr, "disk full")
	assert.False(t, report.OK())
	assert.Contains(t, buf.String(), "An error occurred while saving to CSV")
}

func TestRunner_ExtraFieldsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	output := filepath.Join(t.TempDir(), "results.csv")
	runner := NewRunner(fakeFetcher{result: pagination.Result{
		Status: pagination.StatusFetched,
		Records: []record.Record{
			record.New("name", `"a"`, "id", `1`),
			record.New("name", `"b"`, "id", `2`, "height", `7`),
		},
	}}, export.NewWriter(zerolog.Nop()), output, zerolog.New(buf))

	report := runner.Run(context.Background())

	assert.ErrorIs(t, report.WriteErr, export.ErrExtraFields)
	assert.False(t, report.OK())
	assert.False(t, report.Wrote)
	assert.Contains(t, buf.String(), "An error occurred while saving to CSV")
	assert.Contains(t, buf.String(), "height")
}

func TestBuild_EndToEnd(t *testing.T) {
	mock := testutil.NewMockAPI(45)
	defer mock.Close()

	cfg := config.Default()
	cfg.API.BaseURL = mock.URL()
	cfg.Output.Path = filepath.Join(t.TempDir(), "results.csv")

	runner, cleanup, err := Build(context.Background(), cfg, zerolog.Nop())
	defer cleanup()
	require.NoError(t, err)

	report := runner.Run(context.Background())

	require.True(t, report.OK())
	assert.True(t, report.Wrote)
	assert.Equal(t, pagination.StatusFetched, report.Fetch.Status)
	assert.Equal(t, 45, report.Write.Rows)

	content, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(content), []byte("\r\n"))
	require.Len(t, lines, 46)
	assert.Equal(t, "name,url", string(lines[0]))
}

func TestBuild_MemoryCacheAvoidsRepeatRequests(t *testing.T) {
	mock := testutil.NewMockAPI(45)
	defer mock.Close()

	cfg := config.Default()
	cfg.API.BaseURL = mock.URL()
	cfg.API.Mode = "compat"
	cfg.Cache.Backend = config.CacheMemory
	cfg.Output.Path = filepath.Join(t.TempDir(), "results.csv")

	runner, cleanup, err := Build(context.Background(), cfg, zerolog.Nop())
	defer cleanup()
	require.NoError(t, err)

	report := runner.Run(context.Background())
	require.True(t, report.OK())

	// Compat mode repeats one URL; only its first request reaches the server.
	assert.Equal(t, 60, report.Write.Rows)
	assert.Equal(t, []string{"/pokemon", "/pokemon?offset=20&limit=20"}, mock.Requests())
}

func TestBuild_FailedFetchLeavesOutputUntouched(t *testing.T) {
	mock := testutil.NewMockAPI(45)
	defer mock.Close()
	mock.FailPage(2)

	cfg := config.Default()
	cfg.API.BaseURL = mock.URL()
	cfg.Output.Path = filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(cfg.Output.Path, []byte("previous run"), 0o644))

	runner, cleanup, err := Build(context.Background(), cfg, zerolog.Nop())
	defer cleanup()
	require.NoError(t, err)

	report := runner.Run(context.Background())
	assert.Equal(t, pagination.StatusFailed, report.Fetch.Status)

	content, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(content))
}

func TestBuild_InvalidConfig(t *testing.T) {
	_, cleanup, err := Build(context.Background(), config.Default(), zerolog.Nop())
	defer cleanup()
	assert.Error(t, err)
}

func TestBuild_UnreachableRedisDisablesCache(t *testing.T) {
	mock := testutil.NewMockAPI(5)
	defer mock.Close()

	cfg := config.Default()
	cfg.API.BaseURL = mock.URL()
	cfg.Cache.Backend = config.CacheRedis
	cfg.Cache.RedisAddr = "127.0.0.1:1"
	cfg.Output.Path = filepath.Join(t.TempDir(), "results.csv")

	buf := &bytes.Buffer{}
	runner, cleanup, err := Build(context.Background(), cfg, zerolog.New(buf))
	defer cleanup()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Redis unavailable")

	report := runner.Run(context.Background())
	assert.True(t, report.OK())
}
