package wholefile

import (
	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/schema"
)

// stageConfigurer records what a stage declares while a pipeline is configured
type stageConfigurer struct {
	outputSchema *schema.Schema
	collector    *etl.FailureCollector
}

func (s *stageConfigurer) InputSchema() *schema.Schema {
	// Sources have no upstream stage
	return nil
}

func (s *stageConfigurer) SetOutputSchema(outputSchema *schema.Schema) {
	s.outputSchema = outputSchema
}

func (s *stageConfigurer) OutputSchema() *schema.Schema {
	return s.outputSchema
}

func (s *stageConfigurer) FailureCollector() *etl.FailureCollector {
	return s.collector
}

type pipelineConfigurer struct {
	stage *stageConfigurer
}

func newPipelineConfigurer(stageName string) *pipelineConfigurer {
	return &pipelineConfigurer{
		stage: &stageConfigurer{collector: etl.NewFailureCollector(stageName)},
	}
}

func (p *pipelineConfigurer) StageConfigurer() etl.StageConfigurer {
	return p.stage
}

// batchSourceContext is handed to a source's PrepareRun
type batchSourceContext struct {
	stageName string
	arguments map[string]string
	collector *etl.FailureCollector
	inputs    []etl.Input
}

func newBatchSourceContext(stageName string, arguments map[string]string) *batchSourceContext {
	return &batchSourceContext{
		stageName: stageName,
		arguments: arguments,
		collector: etl.NewFailureCollector(stageName),
	}
}

func (b *batchSourceContext) StageName() string {
	return b.stageName
}

func (b *batchSourceContext) Arguments() map[string]string {
	return b.arguments
}

func (b *batchSourceContext) FailureCollector() *etl.FailureCollector {
	return b.collector
}

func (b *batchSourceContext) SetInput(input etl.Input) {
	b.inputs = append(b.inputs, input)
}
