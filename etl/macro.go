package etl

import (
	"errors"
	"fmt"
	"strings"
)

const (
	macroOpen  = "${"
	macroClose = "}"

	// maxMacroSubstitutions bounds evaluation of values that expand to
	// further macros.
	maxMacroSubstitutions = 100
)

// Errors returned by macro evaluation
var (
	ErrMacroNotFound  = errors.New("macro not found")
	ErrMacroTooDeep   = errors.New("too many macro substitutions")
	ErrMacroEmptyName = errors.New("macro has an empty name")
)

// MacroEvaluator resolves a macro name to its value.
type MacroEvaluator interface {
	Lookup(name string) (string, error)
}

// MacroSubstituter is implemented by stage configs whose fields may be bound
// late. The framework calls SubstituteMacros before preparing a run.
type MacroSubstituter interface {
	SubstituteMacros(evaluator MacroEvaluator) error
}

// Arguments evaluates macros against runtime arguments.
type Arguments map[string]string

// Lookup implements MacroEvaluator.
func (a Arguments) Lookup(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMacroNotFound, name)
	}
	return v, nil
}

// ContainsMacro reports whether s has a ${...} macro in it.
func ContainsMacro(s string) bool {
	start := strings.Index(s, macroOpen)
	return start >= 0 && strings.Contains(s[start:], macroClose)
}

// SubstituteMacros replaces every ${name} in s with its value. Nested macros
// are expanded innermost first, so ${a${b}} looks up "a" suffixed with the
// value of "b". A ${ with no closing brace is kept as literal text, as it is by
// ContainsMacro.
func SubstituteMacros(s string, evaluator MacroEvaluator) (string, error) {
	limit := len(s)
	for i := 0; ; {
		start := strings.LastIndex(s[:limit], macroOpen)
		if start < 0 {
			return s, nil
		}
		end := strings.Index(s[start:], macroClose)
		if end < 0 {
			limit = start
			continue
		}
		if i == maxMacroSubstitutions {
			return "", ErrMacroTooDeep
		}
		end += start

		name := s[start+len(macroOpen) : end]
		if name == "" {
			return "", ErrMacroEmptyName
		}
		value, err := evaluator.Lookup(name)
		if err != nil {
			return "", err
		}
		s = s[:start] + value + s[end+len(macroClose):]
		limit = len(s)
		i++
	}
}
