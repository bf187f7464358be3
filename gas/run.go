package gas

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas/trace"
)

// Pass names of a line-profile run.
const (
	PassLineProfiles = "line_profiles"
	PassIntrinsic    = "intrinsic_line_profiles"
)

// LineProfileRun tiles the line profiles of every transition in a star grid. Transitions not
// observed with PACS are drawn beam-convolved with the data; PACS transitions are drawn as
// intrinsic profiles without data.
type LineProfileRun struct {
	Stars    []Star
	Options  LineProfileOptions
	Models   ModelProfileReader
	Observed ObservedProfileReader
	Renderer Renderer
	Recorder Recorder
	Trace    *trace.RunTrace
}

// RunResult lists what a run produced.
type RunResult struct {
	Artifacts      []Artifact
	Passes         map[string]BatchSummary
	MissingModels  int // stars without computed lines
	EmptyResultSet bool
}

// Execute runs both passes. Configuration errors abort before anything is rendered.
func (r *LineProfileRun) Execute(ctx context.Context) (*RunResult, error) {
	res := &RunResult{Passes: make(map[string]BatchSummary)}
	if len(r.Stars) == 0 {
		logrus.WithError(ErrEmptyResultSet).Warn("no models requested; no line profiles are plotted")
		res.EmptyResultSet = true
		return res, nil
	}
	opts := r.Options
	if !r.Stars[0].HasData() {
		opts.NoData = true
	}
	if err := (BatchConfig{Grid: opts.Grid}).Validate(); err != nil {
		return nil, err
	}
	if opts.VGFactor <= 0 {
		return nil, fmt.Errorf("%w: vg_factor must be positive, got %f", ErrConfiguration, opts.VGFactor)
	}
	rec := r.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}

	keytags, pacsKeytags := opts.KeyTags, opts.KeyTags
	if keytags == nil {
		derived := ModelKeyTags(r.Stars)
		pacsKeytags = append([]string(nil), derived...)
		keytags = derived
		if !opts.NoData {
			keytags = append([]string{"Data"}, derived...)
		}
	}

	lines := BuildCatalog(r.Stars, ExcludeTelescope("PACS"))
	pacs := BuildCatalog(r.Stars, IncludeTelescope("PACS"))
	res.MissingModels = lines.Missing()
	if lines.Len() == 0 && pacs.Len() == 0 {
		logrus.WithError(ErrEmptyResultSet).Warn("no transitions to plot")
		res.EmptyResultSet = true
		r.reportMissing(res)
		return res, nil
	}

	passes := []struct {
		name      string
		catalog   *Catalog
		assembler *LineProfileAssembler
		keytags   []string
		dataTags  int
		yaxis     string
	}{
		{
			name:    PassLineProfiles,
			catalog: lines,
			assembler: &LineProfileAssembler{
				IncludeData:   !opts.NoData,
				IncludeModels: !opts.NoModels,
			},
			keytags:  keytags,
			dataTags: dataTagCount(opts, keytags),
			yaxis:    "Tmb (K)",
		},
		{
			name:    PassIntrinsic,
			catalog: pacs,
			assembler: &LineProfileAssembler{
				IncludeData:   false,
				IncludeModels: true,
				Intrinsic:     true,
			},
			keytags: pacsKeytags,
			yaxis:   "Fnu (Jy)",
		},
	}

	for _, p := range passes {
		if p.catalog.Len() == 0 {
			continue
		}
		transitions := p.catalog.Transitions()
		if opts.DoSort {
			sorted, err := SortTransitions(transitions, opts.SortPolicy())
			if err != nil {
				return nil, err
			}
			transitions = sorted
		}
		a := p.assembler
		a.Models = r.Models
		a.Observed = r.Observed
		a.TelescopeLabel = opts.TelescopeLabel
		a.VLSR = r.Stars[0].VLSR
		a.VInf = r.Stars[0].TerminalVelocity
		a.VGFactor = opts.VGFactor
		a.Padding = opts.Padding
		a.Recorder = rec

		cfg := BatchConfig{Grid: opts.Grid, ReserveLegend: len(p.keytags) > 0}
		b, err := NewBatcher(cfg, r.Stars, a, WithBatchRecorder(rec), WithBatchTrace(r.Trace, p.name))
		if err != nil {
			return nil, err
		}
		name, keys, dataTags, yaxis := p.name, p.keytags, p.dataTags, p.yaxis
		sum, err := b.Run(ctx, transitions, func(page Page) error {
			art, err := r.Renderer.RenderTiles(ctx, TileFigure{
				Name:     fmt.Sprintf("%s_%d", name, page.Index),
				Page:     page,
				KeyTags:  keys,
				DataTags: dataTags,
				XAxis:    "v (km/s)",
				YAxis:    yaxis,
			})
			if err != nil {
				return err
			}
			res.Artifacts = append(res.Artifacts, art)
			return nil
		})
		res.Passes[p.name] = sum
		if err != nil {
			return res, fmt.Errorf("%s: %w", p.name, err)
		}
		logrus.Infof("%s: %d tiles on %d pages", p.name, sum.Tiles, sum.Pages)
	}
	r.reportMissing(res)
	return res, nil
}

// reportMissing closes a run with the number of stars that contributed no lines.
func (r *LineProfileRun) reportMissing(res *RunResult) {
	if res.MissingModels > 0 {
		logrus.Warnf("%d of %d models have no computed lines", res.MissingModels, len(r.Stars))
	}
}

func dataTagCount(opts LineProfileOptions, keytags []string) int {
	if opts.NoData || len(keytags) == 0 {
		return 0
	}
	return 1
}
