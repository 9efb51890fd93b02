package wholefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/etl/etltest"
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	"github.com/bcongdon/wholefile/internal/pkg/corjob"
	"github.com/bcongdon/wholefile/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputSchema(t *testing.T) {
	require.True(t, OutputSchema.IsRecord())
	require.Len(t, OutputSchema.Fields, 2)

	assert.Equal(t, FilePathField, OutputSchema.Fields[0].Name)
	assert.Equal(t, schema.String, OutputSchema.Fields[0].Schema.Type)
	assert.Equal(t, BodyField, OutputSchema.Fields[1].Name)
	assert.Equal(t, schema.Bytes, OutputSchema.Fields[1].Schema.Type)
}

func TestSpecification(t *testing.T) {
	var source etl.Specifier = NewSource(NewConfig("files", "/data"))

	assert.Equal(t, etl.PluginSpecification{
		Name:        "WholeFileReader",
		Type:        "batchsource",
		Description: "Reads content of the whole file as one record",
	}, source.Specification())
}

func TestConfigurePipeline(t *testing.T) {
	configurer := etltest.NewMockPipelineConfigurer(PluginName)
	source := NewSource(NewConfig("files", "/data"))

	assert.Nil(t, source.ConfigurePipeline(configurer))
	assert.Equal(t, OutputSchema, configurer.Stage.Output)
	assert.Empty(t, configurer.Stage.Collector.Failures())
}

func TestConfigurePipelineMacroPath(t *testing.T) {
	configurer := etltest.NewMockPipelineConfigurer(PluginName)
	source := NewSource(NewConfig("files", "${path}"))

	assert.Nil(t, source.ConfigurePipeline(configurer))
	assert.Equal(t, OutputSchema, configurer.Stage.Output)
}

func TestConfigurePipelineInvalid(t *testing.T) {
	configurer := etltest.NewMockPipelineConfigurer(PluginName)
	source := NewSource(NewConfig("bad name", ""))

	err := source.ConfigurePipeline(configurer)
	var validationErr *etl.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Failures, 2)
	assert.Nil(t, configurer.Stage.Output)
}

func TestPrepareRun(t *testing.T) {
	dir, err := os.MkdirTemp("", "wholefile")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	ctx := etltest.NewMockBatchSourceContext(PluginName)
	source := NewSource(NewConfig("files", dir))

	require.Nil(t, source.PrepareRun(ctx))
	require.Len(t, ctx.Inputs, 1)

	input := ctx.Inputs[0]
	assert.Equal(t, "files", input.Name)
	assert.Equal(t, corformat.WholeFileInputFormatName, input.Provider.InputFormatName())
	assert.Equal(t, []string{dir}, corjob.ParseInputDir(input.Provider.InputFormatConfiguration()[corjob.InputDirKey]))
}

func TestPrepareRunRelativePath(t *testing.T) {
	ctx := etltest.NewMockBatchSourceContext(PluginName)
	source := NewSource(NewConfig("files", "data/in"))

	require.Nil(t, source.PrepareRun(ctx))

	wd, err := os.Getwd()
	require.Nil(t, err)
	inputDir := ctx.Inputs[0].Provider.InputFormatConfiguration()[corjob.InputDirKey]
	assert.Equal(t, []string{filepath.Join(wd, "data", "in")}, corjob.ParseInputDir(inputDir))
}

func TestPrepareRunInvalid(t *testing.T) {
	ctx := etltest.NewMockBatchSourceContext(PluginName)
	source := NewSource(NewConfig("files", ""))

	assert.NotNil(t, source.PrepareRun(ctx))
	assert.Len(t, ctx.Collector.Failures(), 1)
	assert.Empty(t, ctx.Inputs)
}

func TestPrepareRunUnresolvedMacro(t *testing.T) {
	ctx := etltest.NewMockBatchSourceContext(PluginName)
	source := NewSource(NewConfig("files", "${path}"))

	assert.NotNil(t, source.PrepareRun(ctx))
	assert.Empty(t, ctx.Inputs)
}

func TestTransform(t *testing.T) {
	source := NewSource(NewConfig("files", "/data"))
	emitter := &etltest.MockEmitter{}

	input := etl.KeyValue[string, []byte]{Key: "/data/a.bin", Value: []byte{0x00, 0xff, 'x'}}
	require.Nil(t, source.Transform(input, emitter))

	require.Len(t, emitter.Records, 1)
	record := emitter.Records[0]
	assert.Equal(t, OutputSchema, record.Schema())
	assert.Equal(t, "/data/a.bin", record.GetString(FilePathField))
	assert.Equal(t, []byte{0x00, 0xff, 'x'}, record.GetBytes(BodyField))
}

func TestTransformEmptyFile(t *testing.T) {
	source := NewSource(NewConfig("files", "/data"))
	emitter := &etltest.MockEmitter{}

	require.Nil(t, source.Transform(etl.KeyValue[string, []byte]{Key: "/data/empty", Value: []byte{}}, emitter))
	assert.Equal(t, []byte{}, emitter.Records[0].GetBytes(BodyField))
}
