package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/linelist"
	"github.com/linetiles/linetiles/gas/metrics"
	"github.com/linetiles/linetiles/gas/obs"
	"github.com/linetiles/linetiles/gas/stats"
	"github.com/linetiles/linetiles/gas/store"
	"github.com/linetiles/linetiles/gas/trace"
)

var (
	instrument   string  // PACS or SPIRE
	segmentDir   string  // Directory of observed segments
	resultsDir   string  // Directory of convolved model spectra
	spectrumMode string  // full, bands, windows, linelist
	windowsPath  string  // Wavelength windows for the windows mode
	lineListDir  string  // Root of the line catalogs; enables database labels
	storeDriver  string  // Backing of convolved spectra
	storeDSN     string  // sqlite path or postgres DSN
	refresh      bool    // Convolve again even when cached
	noise        float64 // Noise level for chi-squared comparisons
	chiMode      string  // diff, log, rel
	specNoData   bool
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Draw observed PACS or SPIRE spectra with the convolved model spectra",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSpectrum(cmd.Context(), os.Stdout); err != nil {
			logrus.Fatalf("spectrum failed: %v", err)
		}
	},
}

func runSpectrum(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mode := gas.SpectrumMode(spectrumMode)
	if !gas.ValidSpectrumModes[mode] {
		return fmt.Errorf("%w: unknown mode %q", gas.ErrConfiguration, spectrumMode)
	}
	if noise > 0 && !stats.ValidModes[stats.Mode(chiMode)] {
		return fmt.Errorf("%w: unknown chi-squared mode %q", gas.ErrConfiguration, chiMode)
	}
	if mode == gas.SpectrumWindows && windowsPath == "" {
		return fmt.Errorf("%w: --windows is required in windows mode", gas.ErrConfiguration)
	}
	stars, err := loadStars()
	if err != nil {
		return err
	}
	data, err := obs.Load(gas.Instrument(strings.ToUpper(instrument)), segmentDir)
	if err != nil {
		return err
	}

	backing, err := openBacking(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = backing.Close() }()

	rec := metrics.NewRecorder()
	rt := trace.NewRunTrace()
	cache := gas.NewConvolutionCache(&obs.FileConvolver{Dir: resultsDir},
		gas.WithBacking(backing), gas.WithRecorder(rec), gas.WithCacheTrace(rt))

	run := &gas.SpectrumRun{
		Stars:   stars,
		Data:    data,
		Cache:   cache,
		Mode:    mode,
		NoData:  specNoData,
		Refresh: refresh,
		Noise:   noise,
		ChiMode: stats.Mode(chiMode),
	}
	if mode == gas.SpectrumWindows {
		if run.Windows, err = obs.ReadWindows(windowsPath); err != nil {
			return err
		}
	}
	if lineListDir != "" || mode == gas.SpectrumLineList {
		provider, err := linelist.New(lineListDir, linelist.DefaultCacheSize)
		if err != nil {
			return err
		}
		run.Labels = &gas.LabelGenerator{Provider: provider}
	}
	if run.Renderer, err = newRenderer(ctx); err != nil {
		return err
	}

	res, err := run.Execute(ctx)
	if err != nil {
		return err
	}
	for _, c := range res.Comparisons {
		fmt.Fprintf(w, "%s\t%s\tchi2=%.4g\tlnL=%.4g\n", c.Star, c.Segment, c.ChiSquared, c.LogLikelihood)
	}
	return finish(w, res.Artifacts, rt, rec)
}

func openBacking(ctx context.Context) (store.Store, error) {
	if storeDriver == "" {
		return store.OpenFromEnv(ctx)
	}
	return store.Open(ctx, store.Driver(storeDriver), storeDSN)
}

func init() {
	spectrumCmd.Flags().StringVar(&instrument, "instrument", string(gas.InstrumentPACS), "Instrument of the observed segments (PACS, SPIRE)")
	spectrumCmd.Flags().StringVar(&segmentDir, "data-dir", ".", "Directory of observed segments (*.dat, two columns: micron, Jy)")
	spectrumCmd.Flags().StringVar(&resultsDir, "results-dir", "results", "Directory of convolved model spectra, one subdirectory per model")
	spectrumCmd.Flags().StringVar(&spectrumMode, "mode", string(gas.SpectrumBands), "Figures to draw (full, bands, windows, linelist)")
	spectrumCmd.Flags().StringVar(&windowsPath, "windows", "", "File of wavelength windows, one 'min max' pair per line (windows mode)")
	spectrumCmd.Flags().StringVar(&lineListDir, "linelist-dir", "", "Root of the line catalogs; labels come from the databases when set")
	spectrumCmd.Flags().StringVar(&storeDriver, "store", "", "Backing of convolved spectra (memory, sqlite, postgres; default from LINETILES_STORE_DRIVER)")
	spectrumCmd.Flags().StringVar(&storeDSN, "store-dsn", "", "sqlite path or postgres DSN of --store")
	spectrumCmd.Flags().BoolVar(&refresh, "refresh", false, "Convolve every model again even when cached")
	spectrumCmd.Flags().Float64Var(&noise, "noise", 0, "Noise level of the data; > 0 prints chi-squared comparisons")
	spectrumCmd.Flags().StringVar(&chiMode, "chi-mode", string(stats.ModeDiff), "Chi-squared flavour (diff, log, rel)")
	spectrumCmd.Flags().BoolVar(&specNoData, "no-data", false, "Leave out the observed spectra")

	rootCmd.AddCommand(spectrumCmd)
}
