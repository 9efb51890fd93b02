package corformat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bcongdon/wholefile/internal/pkg/corfs"
	"github.com/bcongdon/wholefile/internal/pkg/corjob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpdir, err := ioutil.TempDir("", "wholefile")
	require.Nil(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpdir) })

	for name, contents := range files {
		fullPath := filepath.Join(tmpdir, name)
		require.Nil(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.Nil(t, ioutil.WriteFile(fullPath, []byte(contents), 0644))
	}
	return tmpdir
}

func inputConf(t *testing.T, paths string) map[string]string {
	t.Helper()

	job := corjob.NewJob()
	require.Nil(t, corjob.SetInputPaths(job, paths))
	return job.Configuration()
}

func TestLookupWholeFileInputFormat(t *testing.T) {
	format, err := Lookup(WholeFileInputFormatName)
	assert.Nil(t, err)
	assert.IsType(t, &WholeFileInputFormat{}, format)

	assert.Contains(t, Names(), WholeFileInputFormatName)

	_, err = Lookup("no.such.Format")
	assert.ErrorIs(t, err, ErrUnknownInputFormat)
	assert.Contains(t, err.Error(), WholeFileInputFormatName)
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(WholeFileInputFormatName, func() InputFormat { return nil })
	})
}

func TestWholeFileSplits(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{
		"a.txt":                "foo",
		"sub/b.bin":            "hello world",
		"empty":                "",
		".hidden":              "x",
		"_SUCCESS":             "",
		"sub/.checksum":        "y",
		".git/config":          "[core]",
		"_temporary/part-0":    "partial",
		"sub/_logs/history/ab": "z",
	})

	format := NewWholeFileInputFormat()
	splits, err := format.Splits(context.Background(), inputConf(t, dir))
	assert.Nil(t, err)

	assert.Equal(t, []Split{
		{Filename: filepath.Join(dir, "a.txt"), StartOffset: 0, EndOffset: 2},
		{Filename: filepath.Join(dir, "empty"), StartOffset: 0, EndOffset: -1},
		{Filename: filepath.Join(dir, "sub", "b.bin"), StartOffset: 0, EndOffset: 10},
	}, splits)

	assert.Equal(t, int64(3), splits[0].Size())
	assert.Equal(t, int64(0), splits[1].Size())
}

func TestWholeFileSplitsHiddenRoot(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{
		"_in/a.txt":    "foo",
		"_in/.a.crc":   "x",
		"_in/sub/b":    "bar",
		"_in/_SUCCESS": "",
	})
	root := filepath.Join(dir, "_in")

	format := NewWholeFileInputFormat()
	splits, err := format.Splits(context.Background(), inputConf(t, root))
	assert.Nil(t, err)
	assert.Equal(t, []Split{
		{Filename: filepath.Join(root, "a.txt"), StartOffset: 0, EndOffset: 2},
		{Filename: filepath.Join(root, "sub", "b"), StartOffset: 0, EndOffset: 2},
	}, splits)
}

func TestWholeFileSplitsOnlyHiddenMatches(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{"_x.txt": "foo"})

	_, err := NewWholeFileInputFormat().Splits(context.Background(), inputConf(t, filepath.Join(dir, "*.txt")))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWholeFileSplitsGlobs(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{
		"x/1.txt": "1",
		"y/2.txt": "2",
		"z/3.txt": "3",
		"x/4.csv": "4",
	})

	format := NewWholeFileInputFormat()
	splits, err := format.Splits(context.Background(), inputConf(t, filepath.Join(dir, "{x,y}", "*.txt")))
	assert.Nil(t, err)
	assert.Len(t, splits, 2)
	assert.Equal(t, filepath.Join(dir, "x", "1.txt"), splits[0].Filename)
	assert.Equal(t, filepath.Join(dir, "y", "2.txt"), splits[1].Filename)
}

func TestWholeFileSplitsDeduplicates(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{"a.txt": "foo"})

	format := NewWholeFileInputFormat()
	splits, err := format.Splits(context.Background(), inputConf(t, dir+","+filepath.Join(dir, "a.txt")))
	assert.Nil(t, err)
	assert.Len(t, splits, 1)
}

func TestWholeFileSplitsInvalidInput(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{"a.txt": "foo"})
	require.Nil(t, os.Mkdir(filepath.Join(dir, "emptydir"), 0755))

	format := NewWholeFileInputFormat()

	_, err := format.Splits(context.Background(), map[string]string{})
	assert.ErrorIs(t, err, ErrNoInputPaths)

	_, err = format.Splits(context.Background(), inputConf(t, filepath.Join(dir, "missing")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = format.Splits(context.Background(), inputConf(t, filepath.Join(dir, "*.csv")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	splits, err := format.Splits(context.Background(), inputConf(t, filepath.Join(dir, "emptydir")))
	assert.Nil(t, err)
	assert.Empty(t, splits)
}

func TestWholeFileSplitsCanceled(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{"a.txt": "foo"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWholeFileInputFormat().Splits(ctx, inputConf(t, dir))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWholeFileRecordReader(t *testing.T) {
	dir := writeInputFiles(t, map[string]string{"a.txt": "foo\nbar\n"})
	path := filepath.Join(dir, "a.txt")

	format := NewWholeFileInputFormat()
	reader, err := format.NewRecordReader(context.Background(), Split{Filename: path, EndOffset: 7})
	require.Nil(t, err)

	assert.True(t, reader.Next())
	assert.Equal(t, path, reader.Key())
	assert.Equal(t, []byte("foo\nbar\n"), reader.Value())

	// Exactly one record per file
	assert.False(t, reader.Next())
	assert.Nil(t, reader.Err())
	assert.Nil(t, reader.Close())
}

type failingFs struct {
	corfs.LocalFileSystem
}

func (f *failingFs) OpenReader(string, int64) (io.ReadCloser, error) {
	return nil, errors.New("storage unavailable")
}

type countingFs struct {
	corfs.LocalFileSystem
	opened int
}

func (c *countingFs) OpenReader(string, int64) (io.ReadCloser, error) {
	c.opened++
	return ioutil.NopCloser(bytes.NewBufferString("contents")), nil
}

func TestWholeFileRecordReaderError(t *testing.T) {
	format := NewWholeFileInputFormat()
	format.inferFS = func(string) (corfs.FileSystem, error) { return &failingFs{}, nil }

	reader, err := format.NewRecordReader(context.Background(), Split{Filename: "/x"})
	require.Nil(t, err)

	assert.False(t, reader.Next())
	assert.EqualError(t, reader.Err(), "storage unavailable")
}

func TestWholeFileFileSystemCached(t *testing.T) {
	fs := &countingFs{}
	inits := 0

	format := NewWholeFileInputFormat()
	format.inferFS = func(string) (corfs.FileSystem, error) {
		inits++
		return fs, nil
	}

	for _, name := range []string{"/a", "/b", "/c"} {
		reader, err := format.NewRecordReader(context.Background(), Split{Filename: name})
		require.Nil(t, err)
		assert.True(t, reader.Next())
		assert.Equal(t, []byte("contents"), reader.Value())
	}
	assert.Equal(t, 1, inits)
	assert.Equal(t, 3, fs.opened)
}
