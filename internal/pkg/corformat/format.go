package corformat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownInputFormat is returned by Lookup for unregistered names
var ErrUnknownInputFormat = errors.New("unknown input format")

// Split describes a contiguous chunk of an input file that is read as a
// unit. StartOffset and EndOffset are inclusive. For example, if the
// StartOffset was 10 and the EndOffset was 14, then the Split would describe
// a 5 byte chunk of the file.
type Split struct {
	Filename    string // The file that the split operates on
	StartOffset int64  // The starting byte index of the split in the file
	EndOffset   int64  // The ending byte index (inclusive) of the split in the file
}

// Size returns the number of bytes that the Split spans
func (s Split) Size() int64 {
	return s.EndOffset - s.StartOffset + 1
}

// RecordReader iterates over the key-value pairs of a single Split.
type RecordReader interface {
	Next() bool
	Key() string
	Value() []byte
	Err() error
	Close() error
}

// InputFormat decides how input is divided into Splits and how each Split
// yields records.
type InputFormat interface {
	Splits(ctx context.Context, conf map[string]string) ([]Split, error)
	NewRecordReader(ctx context.Context, split Split) (RecordReader, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() InputFormat)
)

// Register makes an input format available by name. It panics if the name
// is registered twice.
func Register(name string, factory func() InputFormat) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("corformat: Register called twice for " + name)
	}
	registry[name] = factory
}

// Lookup returns a new instance of the named input format.
func Lookup(name string) (InputFormat, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %s)", ErrUnknownInputFormat, name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns the registered input format names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
