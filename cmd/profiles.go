package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/modelout"
)

var (
	profileKind     string // velocity, temperature, both, abundance, contribution or all
	forceProfile    bool
	weightedContrib bool
	keepLineOrder   bool
)

// validProfileKinds maps each kind to whether it includes velocity, temperature, abundance
// and line contribution figures.
var validProfileKinds = map[string][4]bool{
	"velocity":     {true, false, false, false},
	"temperature":  {false, true, false, false},
	"both":         {true, true, false, false},
	"abundance":    {false, false, true, false},
	"contribution": {false, false, false, true},
	"all":          {true, true, true, true},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Draw radial profiles and line contributions of the cooling models",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProfiles(cmd.Context(), os.Stdout); err != nil {
			logrus.Fatalf("profiles failed: %v", err)
		}
	},
}

func runProfiles(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kinds, ok := validProfileKinds[profileKind]
	if !ok {
		return fmt.Errorf("%w: unknown profile kind %q", gas.ErrConfiguration, profileKind)
	}
	stars, err := loadStars()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(ctx)
	if err != nil {
		return err
	}
	run := &gas.ProfileRun{
		Stars:     stars,
		Columns:   &modelout.Reader{Dir: modelsDir},
		Renderer:  renderer,
		Force:     forceProfile,
		Weighted:  weightedContrib,
		KeepOrder: keepLineOrder,
	}
	draws := []func(context.Context) ([]gas.Artifact, error){
		run.Velocities,
		run.Temperatures,
		run.Abundances,
		func(ctx context.Context) ([]gas.Artifact, error) { return run.LineContributions(ctx, nil) },
	}
	var arts []gas.Artifact
	for i, draw := range draws {
		if !kinds[i] {
			continue
		}
		a, err := draw(ctx)
		if err != nil {
			return err
		}
		arts = append(arts, a...)
	}
	return finish(w, arts, nil, nil)
}

func init() {
	profilesCmd.Flags().StringVar(&profileKind, "kind", "both", "Profiles to draw (velocity, temperature, both, abundance, contribution, all)")
	profilesCmd.Flags().BoolVar(&forceProfile, "force", false, "Draw temperature profiles for large grids too")
	profilesCmd.Flags().BoolVar(&weightedContrib, "weighted", false, "Draw weighted instead of normalized line contributions")
	profilesCmd.Flags().BoolVar(&keepLineOrder, "keep-order", false, "Keep line contributions in grid order instead of by wavelength")

	rootCmd.AddCommand(profilesCmd)
}
