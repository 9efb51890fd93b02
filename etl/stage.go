/*Package etl defines the contracts between a pipeline stage and the framework
that hosts it.

A batch source takes part in three phases. At configure time the framework
hands it a PipelineConfigurer so that it can validate its configuration and
declare an output schema. Before a run it receives a BatchSourceContext on
which it registers an Input: the name of an input format and the
configuration that input format needs. During the run the framework reads
key-value pairs from that input format and passes each one to Transform.
*/
package etl

import (
	"github.com/bcongdon/wholefile/schema"
)

// Plugin types understood by the framework
const (
	BatchSourcePluginType = "batchsource"
)

// PluginSpecification identifies a plugin to the framework.
type PluginSpecification struct {
	Name        string
	Type        string
	Description string
}

// Specifier is implemented by plugins that describe themselves.
type Specifier interface {
	Specification() PluginSpecification
}

// StageConfigurer exposes per-stage configuration hooks.
type StageConfigurer interface {
	// InputSchema returns the schema of the stage's input, or nil for sources.
	InputSchema() *schema.Schema
	SetOutputSchema(s *schema.Schema)
	OutputSchema() *schema.Schema
	FailureCollector() *FailureCollector
}

// PipelineConfigurer is passed to a stage when the pipeline is deployed.
type PipelineConfigurer interface {
	StageConfigurer() StageConfigurer
}

// BatchSourceContext is passed to a batch source before each run.
type BatchSourceContext interface {
	StageName() string
	// Arguments are the runtime arguments of the run.
	Arguments() map[string]string
	FailureCollector() *FailureCollector
	SetInput(input Input)
}

// Emitter accepts the records produced by a stage.
type Emitter interface {
	Emit(record *schema.StructuredRecord) error
}

// KeyValue is a single pair produced by an input format.
type KeyValue[K, V any] struct {
	Key   K
	Value V
}

// BatchSource is a stage that produces records at the start of a batch job
// from pairs read by an input format.
type BatchSource[K, V any] interface {
	ConfigurePipeline(configurer PipelineConfigurer) error
	PrepareRun(ctx BatchSourceContext) error
	Transform(input KeyValue[K, V], emitter Emitter) error
}
