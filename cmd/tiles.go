package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/metrics"
	"github.com/linetiles/linetiles/gas/modelout"
	"github.com/linetiles/linetiles/gas/obs"
	"github.com/linetiles/linetiles/gas/trace"
)

var (
	overlayPath string  // YAML overlay of tile options
	profileDir  string  // Directory of observed line profiles
	dimensions  []int   // Grid columns,rows
	noData      bool    // Leave out observed profiles
	noModels    bool    // Leave out model profiles
	vgFactor    float64 // Velocity window half-width in terminal velocities
	sortFreq    bool    // Sort by frequency instead of wavelength
	sortMolec   bool    // Group by molecule before sorting
	doSort      bool    // Sort transitions at all
	keyTags     []string
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Tile the line profiles of every transition in the grid",
	Long: "Group the transitions of all models by (molecule, label, telescope), lay the model and observed " +
		"profiles of each transition into a tile and write one figure per page of tiles. PACS transitions " +
		"are drawn as intrinsic profiles in a separate set of pages.",
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := tileOptions(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := runTiles(cmd.Context(), os.Stdout, opts); err != nil {
			logrus.Fatalf("tiles failed: %v", err)
		}
	},
}

// tileOptions starts from the defaults, applies the overlay file, then every flag the user
// set explicitly.
func tileOptions(cmd *cobra.Command) (gas.LineProfileOptions, error) {
	opts := gas.DefaultLineProfileOptions()
	if overlayPath != "" {
		ov, err := gas.LoadOverlay(overlayPath)
		if err != nil {
			return opts, err
		}
		opts.Apply(ov)
	}
	flags := cmd.Flags()
	if flags.Changed("dimensions") {
		if len(dimensions) != 2 {
			return opts, fmt.Errorf("%w: --dimensions takes two values, got %d", gas.ErrConfiguration, len(dimensions))
		}
		opts.Grid = gas.Grid{X: dimensions[0], Y: dimensions[1]}
	}
	if flags.Changed("no-data") {
		opts.NoData = noData
	}
	if flags.Changed("no-models") {
		opts.NoModels = noModels
	}
	if flags.Changed("vg-factor") {
		opts.VGFactor = vgFactor
	}
	if flags.Changed("sort-freq") {
		opts.SortFreq = sortFreq
	}
	if flags.Changed("sort-molec") {
		opts.SortMolec = sortMolec
	}
	if flags.Changed("do-sort") {
		opts.DoSort = doSort
	}
	if flags.Changed("keytags") {
		opts.KeyTags = keyTags
	}
	return opts, nil
}

func runTiles(ctx context.Context, w io.Writer, opts gas.LineProfileOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stars, err := loadStars()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(ctx)
	if err != nil {
		return err
	}
	rec := metrics.NewRecorder()
	rt := trace.NewRunTrace()
	run := &gas.LineProfileRun{
		Stars:    stars,
		Options:  opts,
		Models:   &modelout.Reader{Dir: modelsDir},
		Observed: &obs.Profiles{Dir: profileDir},
		Renderer: renderer,
		Recorder: rec,
		Trace:    rt,
	}
	res, err := run.Execute(ctx)
	if err != nil {
		return err
	}
	if res.EmptyResultSet {
		logrus.Warnf("nothing to tile")
	}
	return finish(w, res.Artifacts, rt, rec)
}

func init() {
	d := gas.DefaultLineProfileOptions()
	tilesCmd.Flags().StringVar(&overlayPath, "overlay", "", "YAML file overriding tile options (dimensions, no_data, vg_factor, ...)")
	tilesCmd.Flags().StringVar(&profileDir, "data-dir", ".", "Directory of observed line profiles named by each transition's data_file")
	tilesCmd.Flags().IntSliceVar(&dimensions, "dimensions", []int{d.Grid.X, d.Grid.Y}, "Tiles per page as columns,rows")
	tilesCmd.Flags().BoolVar(&noData, "no-data", d.NoData, "Leave out observed profiles")
	tilesCmd.Flags().BoolVar(&noModels, "no-models", d.NoModels, "Leave out model profiles")
	tilesCmd.Flags().Float64Var(&vgFactor, "vg-factor", d.VGFactor, "Half-width of the velocity window in terminal velocities")
	tilesCmd.Flags().BoolVar(&sortFreq, "sort-freq", d.SortFreq, "Sort transitions by frequency")
	tilesCmd.Flags().BoolVar(&sortMolec, "sort-molec", d.SortMolec, "Group transitions by molecule before sorting")
	tilesCmd.Flags().BoolVar(&doSort, "do-sort", d.DoSort, "Sort transitions (catalog order otherwise)")
	tilesCmd.Flags().StringSliceVar(&keyTags, "keytags", nil, "Legend entries (default: the model ids of each star)")

	rootCmd.AddCommand(tilesCmd)
}
