// Command wholefile reads whole files and writes one record per file.
//
//	wholefile --reference-name logs --path 's3://bucket/logs/*.gz' -o ./out --format parquet
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/bcongdon/wholefile"
	"github.com/bcongdon/wholefile/etl"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	referenceName = flag.String("reference-name", "", "Name that identifies this source for lineage")
	path          = flag.String("path", "", "File, directory or glob to read; may be a ${macro}")
	arguments     = flag.StringToString("arg", map[string]string{}, "Runtime argument used to resolve macros (key=value)")
	memprofile    = flag.String("memprofile", "", "write memory profile to `file`")
)

func init() {
	flag.StringP("out", "o", ".", "Output directory (can be local, in S3 or MinIO)")
	flag.String("format", wholefile.OutputFormatJSON, "Output format: json or parquet")
	flag.Int("concurrency", 100, "Maximum number of files read at once")
	flag.Int64("bin-size", 512*1024*1024, "Maximum number of input bytes per output part")
	flag.BoolP("verbose", "v", false, "Log at debug level")
	flag.Bool("progress", true, "Show a progress bar")

	bindings := map[string]string{
		"working_location": "out",
		"output_format":    "format",
		"max_concurrency":  "concurrency",
		"bin_size":         "bin-size",
		"verbose":          "verbose",
		"progress":         "progress",
	}
	for key, name := range bindings {
		viper.BindPFlag(key, flag.Lookup(name))
	}
}

func main() {
	flag.Parse()

	inputPath := *path
	if inputPath == "" {
		inputPath = strings.Join(flag.Args(), ",")
	}

	source := wholefile.NewSource(wholefile.ConfigFromProperties(map[string]string{
		wholefile.ReferenceNamePropertyName: *referenceName,
		wholefile.PathPropertyName:          inputPath,
	}))
	driver := wholefile.NewDriver(source, wholefile.WithRuntimeArguments(*arguments))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := driver.Run(ctx)
	var validationErr *etl.ValidationError
	if errors.As(err, &validationErr) {
		for _, failure := range validationErr.Failures {
			for _, cause := range failure.Causes {
				fmt.Fprintf(os.Stderr, "%s: ", cause.Attribute(etl.CauseStageConfig))
			}
			fmt.Fprintln(os.Stderr, failure)
		}
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(summary)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
		f.Close()
	}
}
