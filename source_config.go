package wholefile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bcongdon/wholefile/etl"
)

// Configuration property names
const (
	ReferenceNamePropertyName = "referenceName"
	PathPropertyName          = "path"
)

var referenceNamePattern = regexp.MustCompile(`^[$.a-zA-Z0-9_-]+$`)

// Config configures a whole-file Source.
type Config struct {
	// referenceName uniquely identifies this source for lineage, annotating
	// metadata, etc.
	referenceName string

	// path to the file(s) to be read. A directory is read recursively. Glob
	// patterns and comma separated lists are accepted. May be a macro.
	path string
}

// NewConfig creates a Config.
func NewConfig(referenceName, path string) *Config {
	return &Config{
		referenceName: referenceName,
		path:          path,
	}
}

// ConfigFromProperties creates a Config from plugin properties keyed by
// property name. Unknown properties are ignored.
func ConfigFromProperties(props map[string]string) *Config {
	return NewConfig(props[ReferenceNamePropertyName], props[PathPropertyName])
}

func (c *Config) ReferenceName() string {
	return c.referenceName
}

func (c *Config) SetReferenceName(referenceName string) {
	c.referenceName = referenceName
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) SetPath(path string) {
	c.path = path
}

func (c *Config) String() string {
	return fmt.Sprintf("WholeFileSourceConfig{referenceName='%s', path='%s'}", c.referenceName, c.path)
}

// containsMacro reports whether a macro-enabled property is bound late
func (c *Config) containsMacro(property string) bool {
	switch property {
	case PathPropertyName:
		return etl.ContainsMacro(c.path)
	}
	return false
}

// Validate adds a failure to collector for every invalid property.
func (c *Config) Validate(collector *etl.FailureCollector) {
	if !referenceNamePattern.MatchString(c.referenceName) {
		collector.AddFailure(
			fmt.Sprintf("Invalid reference name '%s'.", c.referenceName),
			"Supported characters are: letters, numbers, and '_', '-', '.', or '$'.",
		).WithConfigProperty(ReferenceNamePropertyName)
	}
	if !c.containsMacro(PathPropertyName) && strings.TrimSpace(c.path) == "" {
		collector.AddFailure("Input path must be specified", "").
			WithConfigProperty(PathPropertyName)
	}
}

// SubstituteMacros resolves macros in the path.
func (c *Config) SubstituteMacros(evaluator etl.MacroEvaluator) error {
	path, err := etl.SubstituteMacros(c.path, evaluator)
	if err != nil {
		return fmt.Errorf("property %s: %w", PathPropertyName, err)
	}
	c.path = path
	return nil
}
