package corformat

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
	"sync"

	"github.com/bcongdon/wholefile/internal/pkg/corfs"
	"github.com/bcongdon/wholefile/internal/pkg/corjob"
	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// WholeFileInputFormatName is the registered name of WholeFileInputFormat
const WholeFileInputFormatName = "corformat.WholeFileInputFormat"

// Errors returned while listing input
var (
	ErrNoInputPaths = errors.New("no input paths specified in job")
	ErrInvalidInput = errors.New("invalid input")
)

func init() {
	Register(WholeFileInputFormatName, func() InputFormat {
		return NewWholeFileInputFormat()
	})
}

// WholeFileInputFormat reads each input file as a single record keyed by the
// file's path. Files are never split.
type WholeFileInputFormat struct {
	mut         sync.Mutex
	fileSystems map[corfs.FileSystemType]corfs.FileSystem
	inferFS     func(location string) (corfs.FileSystem, error)
}

// NewWholeFileInputFormat returns a WholeFileInputFormat that picks a
// filesystem for each path from its scheme.
func NewWholeFileInputFormat() *WholeFileInputFormat {
	return &WholeFileInputFormat{
		fileSystems: make(map[corfs.FileSystemType]corfs.FileSystem),
		inferFS:     corfs.InferFilesystem,
	}
}

// fileSystem returns the filesystem for location, initializing it once per
// filesystem type.
func (w *WholeFileInputFormat) fileSystem(location string) (corfs.FileSystem, error) {
	w.mut.Lock()
	defer w.mut.Unlock()

	fsType := corfs.TypeOf(location)
	if fs, ok := w.fileSystems[fsType]; ok {
		return fs, nil
	}
	fs, err := w.inferFS(location)
	if err != nil {
		return nil, err
	}
	w.fileSystems[fsType] = fs
	return fs, nil
}

// Splits lists the files under every path in the configuration's input dir
// and returns one Split per visible file.
func (w *WholeFileInputFormat) Splits(ctx context.Context, conf map[string]string) ([]Split, error) {
	paths := corjob.ParseInputDir(conf[corjob.InputDirKey])
	if len(paths) == 0 {
		return nil, ErrNoInputPaths
	}

	seen := make(map[string]struct{})
	splits := make([]Split, 0)
	totalSize := int64(0)
	for _, inputPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err := w.listInputPath(inputPath)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if _, dup := seen[file.Name]; dup {
				continue
			}
			seen[file.Name] = struct{}{}
			splits = append(splits, Split{
				Filename:    file.Name,
				StartOffset: 0,
				EndOffset:   file.Size - 1,
			})
			totalSize += file.Size
		}
	}

	sort.Slice(splits, func(i, j int) bool {
		return splits[i].Filename < splits[j].Filename
	})
	log.Debugf("Total input files to process: %d (%s)", len(splits), humanize.Bytes(uint64(totalSize)))
	return splits, nil
}

func (w *WholeFileInputFormat) listInputPath(inputPath string) ([]corfs.FileInfo, error) {
	fs, err := w.fileSystem(inputPath)
	if err != nil {
		return nil, err
	}

	files := make([]corfs.FileInfo, 0)
	for _, pattern := range expandBraces(inputPath) {
		matched, err := fs.ListFiles(pattern)
		if err != nil {
			return nil, err
		}
		for _, file := range matched {
			if !hiddenBelow(pattern, file.Name) {
				files = append(files, file)
			}
		}
	}
	if len(files) > 0 {
		return files, nil
	}

	if hasGlob(inputPath) {
		return nil, fmt.Errorf("%w: input pattern %s matches 0 files", ErrInvalidInput, inputPath)
	}
	// An existing but empty directory is valid input
	if _, err := fs.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("%w: input path does not exist: %s", ErrInvalidInput, inputPath)
	}
	return files, nil
}

// NewRecordReader returns a reader yielding exactly one pair for split: its
// file path and the file's full contents.
func (w *WholeFileInputFormat) NewRecordReader(ctx context.Context, split Split) (RecordReader, error) {
	fs, err := w.fileSystem(split.Filename)
	if err != nil {
		return nil, err
	}
	return &wholeFileRecordReader{
		ctx:   ctx,
		fs:    fs,
		split: split,
	}, nil
}

type wholeFileRecordReader struct {
	ctx       context.Context
	fs        corfs.FileSystem
	split     Split
	processed bool
	value     []byte
	err       error
}

func (r *wholeFileRecordReader) Next() bool {
	if r.processed || r.err != nil {
		return false
	}
	if r.err = r.ctx.Err(); r.err != nil {
		return false
	}
	r.processed = true

	reader, err := r.fs.OpenReader(r.split.Filename, 0)
	if err != nil {
		r.err = err
		return false
	}
	defer reader.Close()

	r.value, err = ioutil.ReadAll(reader)
	if err != nil {
		r.err = err
		return false
	}
	log.Debugf("Read whole file %s (%s)", r.split.Filename, humanize.Bytes(uint64(len(r.value))))
	return true
}

func (r *wholeFileRecordReader) Key() string {
	return r.split.Filename
}

func (r *wholeFileRecordReader) Value() []byte {
	return r.value
}

func (r *wholeFileRecordReader) Err() error {
	return r.err
}

func (r *wholeFileRecordReader) Close() error {
	r.value = nil
	return nil
}
