package wholefile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bcongdon/wholefile/etl"
	"github.com/bcongdon/wholefile/internal/pkg/corformat"
	"github.com/bcongdon/wholefile/internal/pkg/corfs"
	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Errors returned by Driver.Run
var (
	ErrNoInput        = errors.New("source must register exactly one input")
	ErrNoOutputSchema = errors.New("source did not declare an output schema")
)

// Driver controls the local execution of a whole-file Source
type Driver struct {
	source   etl.BatchSource[string, []byte]
	config   *config
	executor executor
}

// config configures a Driver's execution of runs
type config struct {
	StageName       string
	BinSize         int64
	MaxConcurrency  int
	WorkingLocation string
	OutputFormat    string
	ShowProgress    bool
	Arguments       map[string]string
}

func newConfig() *config {
	loadConfig() // Load viper config from settings file(s) and environment
	return &config{
		StageName:       viper.GetString("stage_name"),
		BinSize:         viper.GetInt64("bin_size"),
		MaxConcurrency:  viper.GetInt("max_concurrency"),
		WorkingLocation: viper.GetString("working_location"),
		OutputFormat:    viper.GetString("output_format"),
		ShowProgress:    viper.GetBool("progress"),
		Arguments:       map[string]string{},
	}
}

// Option allows configuration of a Driver
type Option func(*config)

// NewDriver creates a new Driver with the provided source and optional configuration
func NewDriver(source etl.BatchSource[string, []byte], options ...Option) *Driver {
	d := &Driver{
		source:   source,
		executor: localExecutor{},
	}

	c := newConfig()
	for _, f := range options {
		f(c)
	}

	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	if c.MaxConcurrency < 1 {
		log.Warnf("Invalid max concurrency %d, using 1", c.MaxConcurrency)
		c.MaxConcurrency = 1
	}

	d.config = c
	log.Debugf("Loaded config: %#v", c)

	return d
}

// WithStageName sets the name the source's stage is known by
func WithStageName(name string) Option {
	return func(c *config) {
		c.StageName = name
	}
}

// WithBinSize sets the maximum number of input bytes read by one worker
func WithBinSize(s int64) Option {
	return func(c *config) {
		c.BinSize = s
	}
}

// WithMaxConcurrency sets the maximum number of bins read at once
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		c.MaxConcurrency = n
	}
}

// WithWorkingLocation sets the location and filesystem backend of the Driver's output
func WithWorkingLocation(location string) Option {
	return func(c *config) {
		c.WorkingLocation = location
	}
}

// WithOutputFormat sets the format records are written in: "json" or "parquet"
func WithOutputFormat(format string) Option {
	return func(c *config) {
		c.OutputFormat = format
	}
}

// WithProgress toggles the progress bar
func WithProgress(show bool) Option {
	return func(c *config) {
		c.ShowProgress = show
	}
}

// WithRuntimeArguments adds arguments that macros are resolved against
func WithRuntimeArguments(args map[string]string) Option {
	return func(c *config) {
		for k, v := range args {
			c.Arguments[k] = v
		}
	}
}

// Summary describes a completed run
type Summary struct {
	RunID          string
	OutputLocation string
	Files          int64
	Records        int64
	BytesRead      int64
	BytesWritten   int64
	Duration       time.Duration
}

func (s *Summary) String() string {
	return fmt.Sprintf("run %s: %d files (%s) read, %d records (%s) written to %s in %s",
		s.RunID, s.Files, humanize.Bytes(uint64(s.BytesRead)),
		s.Records, humanize.Bytes(uint64(s.BytesWritten)), s.OutputLocation, s.Duration)
}

// configure runs the source's configure-time hook and returns the schema it declares
func (d *Driver) configure() (*readJob, error) {
	configurer := newPipelineConfigurer(d.config.StageName)
	if err := d.source.ConfigurePipeline(configurer); err != nil {
		return nil, err
	}
	if err := configurer.stage.collector.Err(); err != nil {
		return nil, err
	}

	outputSchema := configurer.stage.OutputSchema()
	if outputSchema == nil {
		return nil, ErrNoOutputSchema
	}
	return &readJob{
		source:       d.source,
		schema:       outputSchema,
		outputFormat: d.config.OutputFormat,
	}, nil
}

// prepare resolves macros, runs the source's prepare hook and lists its input
func (d *Driver) prepare(ctx context.Context, job *readJob) ([]corformat.Split, error) {
	if substituter, ok := d.source.(etl.MacroSubstituter); ok {
		if err := substituter.SubstituteMacros(etl.Arguments(d.config.Arguments)); err != nil {
			return nil, err
		}
	}

	sourceContext := newBatchSourceContext(d.config.StageName, d.config.Arguments)
	if err := d.source.PrepareRun(sourceContext); err != nil {
		return nil, err
	}
	if err := sourceContext.collector.Err(); err != nil {
		return nil, err
	}
	if len(sourceContext.inputs) != 1 {
		return nil, fmt.Errorf("%w: got %d inputs", ErrNoInput, len(sourceContext.inputs))
	}

	input := sourceContext.inputs[0]
	format, err := corformat.Lookup(input.Provider.InputFormatName())
	if err != nil {
		return nil, err
	}
	job.format = format

	log.Debugf("Listing input %s with %s", input.Name, input.Provider.InputFormatName())
	return format.Splits(ctx, input.Provider.InputFormatConfiguration())
}

// Run executes one run of the Driver's source: configure, prepare, then read
// every input file and write the records the source emits.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	if err := validateOutputFormat(d.config.OutputFormat); err != nil {
		return nil, err
	}

	if specifier, ok := d.source.(etl.Specifier); ok {
		spec := specifier.Specification()
		log.Debugf("Running %s plugin %s as stage %s", spec.Type, spec.Name, d.config.StageName)
	}

	job, err := d.configure()
	if err != nil {
		return nil, err
	}

	splits, err := d.prepare(ctx, job)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	fs, err := corfs.InferFilesystem(d.config.WorkingLocation)
	if err != nil {
		return nil, err
	}
	job.fileSystem = fs
	job.outputPath = fs.Join(d.config.WorkingLocation, runID)

	summary := &Summary{
		RunID:          runID,
		OutputLocation: job.outputPath,
	}
	runLog := log.WithField("run", runID)

	if len(splits) == 0 {
		runLog.Warn("No input splits")
		summary.Duration = time.Since(start)
		return summary, nil
	}
	runLog.Infof("Reading %d files to %s", len(splits), job.outputPath)

	err = d.runReadPhase(ctx, job, splits)

	summary.Files = job.filesRead
	summary.Records = job.recordsOut
	summary.BytesRead = job.bytesRead
	summary.BytesWritten = job.bytesWritten
	summary.Duration = time.Since(start)
	return summary, err
}

func (d *Driver) runReadPhase(ctx context.Context, job *readJob, splits []corformat.Split) error {
	inputBins := packInputSplits(splits, d.config.BinSize)
	log.Debugf("Number of input bins: %d", len(inputBins))

	bar := pb.New(len(inputBins)).Prefix("Read")
	bar.NotPrint = !d.config.ShowProgress
	bar.Start()

	var wg sync.WaitGroup
	var errMut sync.Mutex
	var runErr error
	sem := semaphore.NewWeighted(int64(d.config.MaxConcurrency))
	for binID, bin := range inputBins {
		if err := sem.Acquire(ctx, 1); err != nil {
			errMut.Lock()
			runErr = multierr.Append(runErr, err)
			errMut.Unlock()
			break
		}
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			defer sem.Release(1)
			defer bar.Increment()
			err := d.executor.RunBin(ctx, job, t)
			if err != nil {
				log.Errorf("Error when reading bin %d: %s", t.BinID, err)
				errMut.Lock()
				runErr = multierr.Append(runErr, err)
				errMut.Unlock()
			}
		}(task{BinID: uint(binID), Splits: bin})
	}
	wg.Wait()
	bar.Finish()

	return runErr
}
