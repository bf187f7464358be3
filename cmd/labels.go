package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/linelist"
)

var (
	labelMin       float64
	labelMax       float64
	labelsFromDB   bool
	labelsPlotName bool
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the line labels falling in a wavelength window",
	Long: "List line labels from the completed transitions of the grid or, with --database, from the " +
		"line catalogs configured in the first star's line_list settings.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLabels(cmd.Context(), os.Stdout); err != nil {
			logrus.Fatalf("labels failed: %v", err)
		}
	},
}

func runLabels(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if labelMin > labelMax {
		return fmt.Errorf("%w: --min %g above --max %g", gas.ErrConfiguration, labelMin, labelMax)
	}
	stars, err := loadStars()
	if err != nil {
		return err
	}

	var labels []gas.LineLabel
	if labelsFromDB {
		settings := stars[0].LineList
		root := lineListDir
		if root == "" && settings != nil {
			root = settings.Path
		}
		provider, err := linelist.New(root, linelist.DefaultCacheSize)
		if err != nil {
			return err
		}
		gen := &gas.LabelGenerator{Provider: provider}
		if labels, err = gen.FromDatabase(ctx, labelMin, labelMax, gas.FiltersFromSettings(settings)); err != nil {
			return err
		}
	} else {
		var ts []gas.Transition
		for i := range stars {
			ts = append(ts, stars[i].Lines...)
		}
		if labelsPlotName {
			labels = gas.PlotLabelsFromCatalog(ts)
		} else {
			labels = gas.LabelsFromCatalog(ts)
		}
		labels = gas.LabelsInWindow(labels, labelMin, labelMax)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "micron\tlabel\tsource")
	for _, l := range labels {
		fmt.Fprintf(tw, "%.4f\t%s\t%d\n", l.Coordinate, l.Text, l.Source)
	}
	return tw.Flush()
}

func init() {
	labelsCmd.Flags().Float64Var(&labelMin, "min", 0, "Lower wavelength bound (micron)")
	labelsCmd.Flags().Float64Var(&labelMax, "max", 1e6, "Upper wavelength bound (micron)")
	labelsCmd.Flags().BoolVar(&labelsFromDB, "database", false, "Read labels from the line catalogs instead of the grid")
	labelsCmd.Flags().StringVar(&lineListDir, "linelist-dir", "", "Root of the line catalogs (default: line_list.path of the first star)")
	labelsCmd.Flags().BoolVar(&labelsPlotName, "plot-names", false, "Use molecule display names")

	rootCmd.AddCommand(labelsCmd)
}
