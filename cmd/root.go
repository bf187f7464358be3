package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/artifact"
	"github.com/linetiles/linetiles/gas/metrics"
	"github.com/linetiles/linetiles/gas/modelout"
	"github.com/linetiles/linetiles/gas/render"
	"github.com/linetiles/linetiles/gas/trace"
)

var (
	logLevel    string   // Log verbosity level
	gridPath    string   // YAML star grid
	modelIDs    []string // Model ids loaded from the models directory
	modelsDir   string   // Root of the model output tree
	outDir      string   // Artifact directory when the fs driver is used
	runID       string   // Artifact key prefix; generated when empty
	metricsFile string   // Prometheus textfile written after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "linetiles",
	Short: "Tile simulated and observed spectral lines of a grid of models",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&gridPath, "grid", "", "Path to a YAML star grid")
	rootCmd.PersistentFlags().StringSliceVar(&modelIDs, "models", nil, "Comma-separated model ids to load from --models-dir (instead of --grid)")
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "models", "Directory holding one output directory per model")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Output directory for figures (fs driver; overrides LINETILES_ARTIFACT_FS_ROOT)")
	rootCmd.PersistentFlags().StringVar(&runID, "run-id", "", "Key prefix of the produced figures (default: random uuid)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write pipeline counters in Prometheus text format to this file")
}

// loadStars resolves the star grid from --grid or --models; exactly one must be given.
func loadStars() ([]gas.Star, error) {
	var stars []gas.Star
	if gridPath != "" {
		loaded, err := modelout.LoadGrid(gridPath)
		if err != nil {
			return nil, err
		}
		if len(loaded) == 0 {
			return nil, fmt.Errorf("%w: star grid %s is empty", gas.ErrConfiguration, gridPath)
		}
		stars = loaded
	}
	reader := &modelout.Reader{Dir: modelsDir}
	return gas.ResolveStars(stars, modelIDs, reader.LoadStars)
}

// newRenderer opens the artifact store and wraps it in a renderer.
func newRenderer(ctx context.Context) (*render.Renderer, error) {
	var store artifact.Store
	var err error
	if outDir != "" {
		store, err = artifact.NewFilesystem(outDir)
	} else {
		store, err = artifact.Open(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}
	var opts []render.Option
	if runID != "" {
		opts = append(opts, render.WithRunID(runID))
	}
	return render.New(store, opts...), nil
}

// finish reports the artifacts, logs the run summary and writes the metrics file.
func finish(w io.Writer, arts []gas.Artifact, rt *trace.RunTrace, rec *metrics.Recorder) error {
	var total int64
	for _, a := range arts {
		fmt.Fprintf(w, "%s\t%s\n", a.Key, humanize.Bytes(uint64(a.Size)))
		total += a.Size
	}
	if len(arts) == 0 {
		fmt.Fprintln(w, "no figures produced")
	} else {
		logrus.Infof("%d figures, %s", len(arts), humanize.Bytes(uint64(total)))
	}
	if rt != nil {
		s := trace.Summarize(rt)
		logrus.Infof("pages=%d tiles=%d missing=%d cache_hits=%d convolutions=%d",
			s.Pages, s.Tiles, s.MissingTransitions, s.CacheHits, s.Convolutions)
	}
	if metricsFile != "" && rec != nil {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
