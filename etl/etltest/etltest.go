// Package etltest provides in-memory implementations of the etl contracts for
// exercising stages without a running pipeline.
package etltest

import (
	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/schema"
)

// MockStageConfigurer records the output schema a stage declares.
type MockStageConfigurer struct {
	Input     *schema.Schema
	Output    *schema.Schema
	Collector *etl.FailureCollector
}

// NewMockStageConfigurer returns a configurer for a source stage.
func NewMockStageConfigurer(stageName string) *MockStageConfigurer {
	return &MockStageConfigurer{
		Collector: etl.NewFailureCollector(stageName),
	}
}

func (m *MockStageConfigurer) InputSchema() *schema.Schema { return m.Input }
func (m *MockStageConfigurer) SetOutputSchema(s *schema.Schema) { m.Output = s }
func (m *MockStageConfigurer) OutputSchema() *schema.Schema { return m.Output }
func (m *MockStageConfigurer) FailureCollector() *etl.FailureCollector { return m.Collector }

// MockPipelineConfigurer wraps a single MockStageConfigurer.
type MockPipelineConfigurer struct {
	Stage *MockStageConfigurer
}

// NewMockPipelineConfigurer returns a pipeline configurer for one stage.
func NewMockPipelineConfigurer(stageName string) *MockPipelineConfigurer {
	return &MockPipelineConfigurer{Stage: NewMockStageConfigurer(stageName)}
}

func (m *MockPipelineConfigurer) StageConfigurer() etl.StageConfigurer {
	return m.Stage
}

// MockBatchSourceContext captures the inputs a source registers.
type MockBatchSourceContext struct {
	Name      string
	Args      map[string]string
	Collector *etl.FailureCollector
	Inputs    []etl.Input
}

// NewMockBatchSourceContext returns a context with no runtime arguments.
func NewMockBatchSourceContext(stageName string) *MockBatchSourceContext {
	return &MockBatchSourceContext{
		Name:      stageName,
		Args:      map[string]string{},
		Collector: etl.NewFailureCollector(stageName),
	}
}

func (m *MockBatchSourceContext) StageName() string { return m.Name }
func (m *MockBatchSourceContext) Arguments() map[string]string { return m.Args }
func (m *MockBatchSourceContext) FailureCollector() *etl.FailureCollector { return m.Collector }
func (m *MockBatchSourceContext) SetInput(input etl.Input) { m.Inputs = append(m.Inputs, input) }

// MockEmitter keeps every emitted record in memory.
type MockEmitter struct {
	Records []*schema.StructuredRecord
}

func (m *MockEmitter) Emit(record *schema.StructuredRecord) error {
	m.Records = append(m.Records, record)
	return nil
}
