package wholefile

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	"github.com/bcongdon/wholefile/internal/pkg/corfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingSource struct {
	*Source
}

func (failingSource) Transform(etl.KeyValue[string, []byte], etl.Emitter) error {
	return errors.New("transform failed")
}

func newTestJob(t *testing.T, source etl.BatchSource[string, []byte]) *readJob {
	t.Helper()

	return &readJob{
		source:       source,
		format:       corformat.NewWholeFileInputFormat(),
		schema:       OutputSchema,
		fileSystem:   &corfs.LocalFileSystem{},
		outputPath:   tempDir(t),
		outputFormat: OutputFormatJSON,
	}
}

func TestReadJobRunBin(t *testing.T) {
	input := tempDir(t)
	writeFiles(t, input, map[string]string{"a.txt": "foo", "b.txt": "quux"})

	job := newTestJob(t, NewSource(NewConfig("files", input)))
	splits := []corformat.Split{
		{Filename: filepath.Join(input, "a.txt"), EndOffset: 2},
		{Filename: filepath.Join(input, "b.txt"), EndOffset: 3},
	}
	require.Nil(t, job.runBin(context.Background(), 7, splits))

	data, err := ioutil.ReadFile(filepath.Join(job.outputPath, "part-7.json"))
	require.Nil(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	assert.Equal(t, int64(2), job.filesRead)
	assert.Equal(t, int64(2), job.recordsOut)
	assert.Equal(t, int64(7), job.bytesRead)
	assert.Equal(t, int64(len(data)), job.bytesWritten)
}

func TestReadJobTransformError(t *testing.T) {
	input := tempDir(t)
	writeFiles(t, input, map[string]string{"a.txt": "foo"})

	job := newTestJob(t, failingSource{NewSource(NewConfig("files", input))})
	err := job.runBin(context.Background(), 0, []corformat.Split{
		{Filename: filepath.Join(input, "a.txt"), EndOffset: 2},
	})
	assert.EqualError(t, err, "reading "+filepath.Join(input, "a.txt")+": transform failed")
	assert.Equal(t, int64(0), job.filesRead)

	_, err = os.Stat(job.binPath(0))
	assert.True(t, os.IsNotExist(err))
}

type failingWriteFs struct {
	corfs.LocalFileSystem
	deleted []string
}

func (f *failingWriteFs) OpenWriter(string) (io.WriteCloser, error) {
	return &failingCloser{}, nil
}

func (f *failingWriteFs) Delete(path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

type failingCloser struct{}

func (failingCloser) Write(p []byte) (int, error) { return len(p), nil }
func (failingCloser) Close() error { return errors.New("upload failed") }

func TestReadJobFailedBinReportsCloseError(t *testing.T) {
	input := tempDir(t)
	writeFiles(t, input, map[string]string{"a.txt": "foo"})

	fs := &failingWriteFs{}
	job := newTestJob(t, failingSource{NewSource(NewConfig("files", input))})
	job.fileSystem = fs

	err := job.runBin(context.Background(), 3, []corformat.Split{
		{Filename: filepath.Join(input, "a.txt"), EndOffset: 2},
	})
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "transform failed")
	assert.Contains(t, err.Error(), "upload failed")
	assert.Equal(t, []string{job.binPath(3)}, fs.deleted)
}

func TestReadJobMissingFile(t *testing.T) {
	input := tempDir(t)

	job := newTestJob(t, NewSource(NewConfig("files", input)))
	err := job.runBin(context.Background(), 0, []corformat.Split{
		{Filename: filepath.Join(input, "gone.txt"), EndOffset: 2},
	})
	assert.NotNil(t, err)
}
