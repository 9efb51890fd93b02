package wholefile

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	"github.com/bcongdon/wholefile/internal/pkg/corfs"
	"github.com/bcongdon/wholefile/schema"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// readJob holds the state of a single run of a source: where its input comes
// from, where its output goes, and counters shared by every bin.
type readJob struct {
	source       etl.BatchSource[string, []byte]
	format       corformat.InputFormat
	schema       *schema.Schema
	fileSystem   corfs.FileSystem
	outputPath   string
	outputFormat string

	filesRead    int64
	bytesRead    int64
	recordsOut   int64
	bytesWritten int64
}

func (j *readJob) binPath(binID uint) string {
	return j.fileSystem.Join(j.outputPath, fmt.Sprintf("part-%d.%s", binID, j.outputFormat))
}

// runBin transforms every file in splits and writes the emitted records to the
// bin's output file
func (j *readJob) runBin(ctx context.Context, binID uint, splits []corformat.Split) error {
	path := j.binPath(binID)
	writer, err := j.fileSystem.OpenWriter(path)
	if err != nil {
		return err
	}

	emitter, err := newRecordEmitter(writer, j.outputFormat, j.schema)
	if err != nil {
		return multierr.Append(err, writer.Close())
	}

	for _, split := range splits {
		if err := j.processSplit(ctx, split, emitter); err != nil {
			// A failed bin leaves no partial output behind
			err = fmt.Errorf("reading %s: %w", split.Filename, err)
			err = multierr.Append(err, emitter.close())
			return multierr.Append(err, j.fileSystem.Delete(path))
		}
	}

	err = emitter.close()
	atomic.AddInt64(&j.recordsOut, emitter.recordsEmitted())
	atomic.AddInt64(&j.bytesWritten, emitter.bytesWritten())
	return err
}

func (j *readJob) processSplit(ctx context.Context, split corformat.Split, emitter etl.Emitter) error {
	reader, err := j.format.NewRecordReader(ctx, split)
	if err != nil {
		return err
	}
	defer reader.Close()

	for reader.Next() {
		input := etl.KeyValue[string, []byte]{
			Key:   reader.Key(),
			Value: reader.Value(),
		}
		if err := j.source.Transform(input, emitter); err != nil {
			return err
		}
		atomic.AddInt64(&j.bytesRead, int64(len(input.Value)))
	}
	if err := reader.Err(); err != nil {
		return err
	}

	atomic.AddInt64(&j.filesRead, 1)
	log.Debugf("Processed %s", split.Filename)
	return nil
}
