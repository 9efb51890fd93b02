package corjob

import (
	"errors"
	"path/filepath"
	"strings"
)

// InputDirKey is the configuration key holding a job's input paths.
// The value is a comma separated list of qualified paths in which literal
// commas are escaped with a backslash.
const InputDirKey = "mapreduce.input.fileinputformat.inputdir"

const escapeChar = '\\'

// ErrEmptyPath is returned when an input path list has an empty element.
var ErrEmptyPath = errors.New("can not create a path from an empty string")

// SplitPathList splits a user supplied, comma separated list of paths. Commas
// inside {...} glob alternations do not separate paths.
func SplitPathList(commaSeparatedPaths string) []string {
	paths := make([]string, 0)
	curlyOpen := 0
	pathStart := 0
	for i, ch := range commaSeparatedPaths {
		switch ch {
		case '{':
			curlyOpen++
		case '}':
			if curlyOpen > 0 {
				curlyOpen--
			}
		case ',':
			if curlyOpen == 0 {
				paths = append(paths, commaSeparatedPaths[pathStart:i])
				pathStart = i + 1
			}
		}
	}
	return append(paths, commaSeparatedPaths[pathStart:])
}

// SetInputPaths replaces the job's input paths with those in a comma
// separated list.
func SetInputPaths(job *Job, commaSeparatedPaths string) error {
	qualified, err := qualifyAll(SplitPathList(commaSeparatedPaths))
	if err != nil {
		return err
	}
	job.Set(InputDirKey, strings.Join(qualified, ","))
	return nil
}

// InputPaths returns the job's input paths.
func InputPaths(job *Job) []string {
	return ParseInputDir(job.Get(InputDirKey))
}

// ParseInputDir decodes an InputDirKey value into its paths.
func ParseInputDir(dirs string) []string {
	if dirs == "" {
		return []string{}
	}
	paths := make([]string, 0)
	var current strings.Builder
	escaped := false
	for _, ch := range dirs {
		switch {
		case escaped:
			current.WriteRune(ch)
			escaped = false
		case ch == escapeChar:
			escaped = true
		case ch == ',':
			paths = append(paths, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(paths, current.String())
}

func qualifyAll(paths []string) ([]string, error) {
	qualified := make([]string, len(paths))
	for i, p := range paths {
		q, err := qualify(p)
		if err != nil {
			return nil, err
		}
		qualified[i] = escapePath(q)
	}
	return qualified, nil
}

// qualify makes local paths absolute. Paths with a scheme are kept as is.
func qualify(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(path, "://") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(abs, "/") {
		abs += "/"
	}
	return abs, nil
}

func escapePath(path string) string {
	var b strings.Builder
	for _, ch := range path {
		if ch == escapeChar || ch == ',' {
			b.WriteRune(escapeChar)
		}
		b.WriteRune(ch)
	}
	return b.String()
}
