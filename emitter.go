package wholefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bcongdon/wholefile/schema"
	"github.com/parquet-go/parquet-go"
	"go.uber.org/multierr"
)

// Output formats
const (
	OutputFormatJSON    = "json"
	OutputFormatParquet = "parquet"
)

var (
	ErrUnknownOutputFormat = errors.New("unknown output format")
	errUnsupportedType     = errors.New("type cannot be written as parquet")
)

func validateOutputFormat(format string) error {
	switch format {
	case OutputFormatJSON, OutputFormatParquet:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownOutputFormat, format)
}

// recordEmitter is a threadsafe emitter that encodes records to a writer.
type recordEmitter struct {
	writer  io.WriteCloser
	counter *countingWriter
	encoder recordEncoder
	mut     *sync.Mutex
	records int64
}

// newRecordEmitter initializes and returns a new recordEmitter writing format
func newRecordEmitter(writer io.WriteCloser, format string, s *schema.Schema) (*recordEmitter, error) {
	counter := &countingWriter{writer: writer}

	var encoder recordEncoder
	switch format {
	case OutputFormatJSON:
		encoder = &jsonEncoder{encoder: json.NewEncoder(counter)}
	case OutputFormatParquet:
		var err error
		encoder, err = newParquetEncoder(counter, s)
		if err != nil {
			return nil, err
		}
	default:
		return nil, validateOutputFormat(format)
	}

	return &recordEmitter{
		writer:  writer,
		counter: counter,
		encoder: encoder,
		mut:     &sync.Mutex{},
	}, nil
}

// Emit yields a record to the framework.
func (e *recordEmitter) Emit(record *schema.StructuredRecord) error {
	e.mut.Lock()
	defer e.mut.Unlock()

	if err := e.encoder.encode(record); err != nil {
		return err
	}
	e.records++
	return nil
}

// close flushes the encoder and closes the writer. close must not be called more than once
func (e *recordEmitter) close() error {
	e.mut.Lock()
	defer e.mut.Unlock()

	return multierr.Append(e.encoder.close(), e.writer.Close())
}

func (e *recordEmitter) bytesWritten() int64 {
	return e.counter.written
}

func (e *recordEmitter) recordsEmitted() int64 {
	return e.records
}

type countingWriter struct {
	writer  io.Writer
	written int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.written += int64(n)
	return n, err
}

type recordEncoder interface {
	encode(record *schema.StructuredRecord) error
	close() error
}

// jsonEncoder writes one JSON object per line
type jsonEncoder struct {
	encoder *json.Encoder
}

func (j *jsonEncoder) encode(record *schema.StructuredRecord) error {
	return j.encoder.Encode(record)
}

func (j *jsonEncoder) close() error {
	return nil
}

// parquetEncoder buffers rows and writes a parquet file when closed
type parquetEncoder struct {
	schema  *schema.Schema
	columns map[string]parquet.LeafColumn
	writer  *parquet.Writer
}

func newParquetEncoder(w io.Writer, s *schema.Schema) (*parquetEncoder, error) {
	pSchema, err := parquetSchemaOf(s)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]parquet.LeafColumn, len(s.Fields))
	for _, field := range s.Fields {
		leaf, ok := pSchema.Lookup(field.Name)
		if !ok {
			return nil, fmt.Errorf("no parquet column for field %s", field.Name)
		}
		columns[field.Name] = leaf
	}

	return &parquetEncoder{
		schema:  s,
		columns: columns,
		writer:  parquet.NewWriter(w, pSchema),
	}, nil
}

func (p *parquetEncoder) encode(record *schema.StructuredRecord) error {
	if record.Schema() != p.schema {
		return fmt.Errorf("record schema %s does not match output schema %s", record.Schema(), p.schema)
	}

	row := make(parquet.Row, len(p.columns))
	for _, field := range p.schema.Fields {
		leaf := p.columns[field.Name]
		v := record.Get(field.Name)
		if v == nil {
			row[leaf.ColumnIndex] = parquet.NullValue().Level(0, 0, leaf.ColumnIndex)
			continue
		}
		value, err := parquetValueOf(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		row[leaf.ColumnIndex] = value.Level(0, leaf.MaxDefinitionLevel, leaf.ColumnIndex)
	}

	_, err := p.writer.WriteRows([]parquet.Row{row})
	return err
}

func (p *parquetEncoder) close() error {
	return p.writer.Close()
}

func parquetSchemaOf(s *schema.Schema) (*parquet.Schema, error) {
	if !s.IsRecord() {
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, s.Type)
	}

	group := parquet.Group{}
	for _, field := range s.Fields {
		node, err := parquetNodeOf(field.Schema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		group[field.Name] = node
	}
	return parquet.NewSchema(s.Name, group), nil
}

func parquetNodeOf(s *schema.Schema) (parquet.Node, error) {
	var node parquet.Node
	switch s.Type {
	case schema.String:
		node = parquet.String()
	case schema.Bytes:
		node = parquet.Leaf(parquet.ByteArrayType)
	case schema.Int:
		node = parquet.Int(32)
	case schema.Long:
		node = parquet.Int(64)
	case schema.Boolean:
		node = parquet.Leaf(parquet.BooleanType)
	case schema.Double:
		node = parquet.Leaf(parquet.DoubleType)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedType, s.Type)
	}
	if s.Nullable {
		node = parquet.Optional(node)
	}
	return node, nil
}

func parquetValueOf(v interface{}) (parquet.Value, error) {
	switch t := v.(type) {
	case string:
		return parquet.ByteArrayValue([]byte(t)), nil
	case []byte:
		return parquet.ByteArrayValue(t), nil
	case int:
		return parquet.Int32Value(int32(t)), nil
	case int32:
		return parquet.Int32Value(t), nil
	case int64:
		return parquet.Int64Value(t), nil
	case bool:
		return parquet.BooleanValue(t), nil
	case float64:
		return parquet.DoubleValue(t), nil
	}
	return parquet.Value{}, fmt.Errorf("%w: %T", errUnsupportedType, v)
}
