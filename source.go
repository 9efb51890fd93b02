package wholefile

import (
	"fmt"

	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	"github.com/bcongdon/wholefile/internal/pkg/corjob"
	"github.com/bcongdon/wholefile/schema"
	log "github.com/sirupsen/logrus"
)

// Plugin metadata
const (
	PluginName        = "WholeFileReader"
	PluginDescription = "Reads content of the whole file as one record"
)

// Output field names
const (
	FilePathField = "filePath"
	BodyField     = "body"
)

// OutputSchema is the schema of every record a Source emits.
var OutputSchema = schema.RecordOf("output",
	schema.NewField(FilePathField, schema.Of(schema.String)),
	schema.NewField(BodyField, schema.Of(schema.Bytes)),
)

// Source is a batch source that emits one record per input file.
type Source struct {
	config *Config
}

var _ etl.BatchSource[string, []byte] = (*Source)(nil)

// NewSource creates a Source for config.
func NewSource(config *Config) *Source {
	return &Source{config: config}
}

// Specification describes the plugin to the host framework.
func (s *Source) Specification() etl.PluginSpecification {
	return etl.PluginSpecification{
		Name:        PluginName,
		Type:        etl.BatchSourcePluginType,
		Description: PluginDescription,
	}
}

// Config returns the source's configuration.
func (s *Source) Config() *Config {
	return s.config
}

// ConfigurePipeline validates the configuration and declares the output
// schema. The schema is only set when validation succeeds.
func (s *Source) ConfigurePipeline(configurer etl.PipelineConfigurer) error {
	stage := configurer.StageConfigurer()
	collector := stage.FailureCollector()

	s.config.Validate(collector)
	if err := collector.Err(); err != nil {
		return err
	}
	stage.SetOutputSchema(OutputSchema)
	return nil
}

// SubstituteMacros resolves macros in the configuration.
func (s *Source) SubstituteMacros(evaluator etl.MacroEvaluator) error {
	return s.config.SubstituteMacros(evaluator)
}

// PrepareRun validates the configuration again, now that macros have been
// resolved, and registers an Input reading the configured path with the
// whole-file input format.
func (s *Source) PrepareRun(ctx etl.BatchSourceContext) error {
	collector := ctx.FailureCollector()
	s.config.Validate(collector)
	if err := collector.Err(); err != nil {
		return err
	}
	if etl.ContainsMacro(s.config.Path()) {
		return fmt.Errorf("property %s has unresolved macros: %s", PathPropertyName, s.config.Path())
	}

	job := corjob.NewJob()
	if err := corjob.SetInputPaths(job, s.config.Path()); err != nil {
		return err
	}

	provider := etl.NewInputFormatProvider(corformat.WholeFileInputFormatName, map[string]string{
		corjob.InputDirKey: job.Get(corjob.InputDirKey),
	})
	ctx.SetInput(etl.InputOf(s.config.ReferenceName(), provider))

	log.WithField("stage", ctx.StageName()).Debugf("Prepared input %s: %v", s.config.ReferenceName(), corjob.InputPaths(job))
	return nil
}

// Transform emits a record holding the file's path and contents.
func (s *Source) Transform(input etl.KeyValue[string, []byte], emitter etl.Emitter) error {
	record, err := schema.NewBuilder(OutputSchema).
		Set(FilePathField, input.Key).
		Set(BodyField, input.Value).
		Build()
	if err != nil {
		return err
	}
	return emitter.Emit(record)
}
