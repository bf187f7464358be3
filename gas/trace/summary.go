package trace

// RunSummary aggregates statistics from a RunTrace.
type RunSummary struct {
	Pages              int
	Tiles              int
	MissingTransitions int
	CacheHits          int
	Convolutions       int
	PagesPerPass       map[string]int
	MissingPerModel    map[string]int // star name → transitions it lacked
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *RunSummary {
	summary := &RunSummary{
		PagesPerPass:    make(map[string]int),
		MissingPerModel: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.Pages = len(rt.Pages)
	for _, p := range rt.Pages {
		summary.Tiles += len(p.Transitions)
		summary.PagesPerPass[p.Pass]++
	}

	summary.MissingTransitions = len(rt.Missing)
	for _, m := range rt.Missing {
		for _, model := range m.Models {
			summary.MissingPerModel[model]++
		}
	}

	for _, c := range rt.Cache {
		if c.Hit {
			summary.CacheHits++
		}
		if c.Computed {
			summary.Convolutions++
		}
	}
	return summary
}
