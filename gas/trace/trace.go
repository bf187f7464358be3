package trace

// RunTrace collects records during a tiling run.
type RunTrace struct {
	Pages   []PageRecord
	Missing []MissingRecord
	Cache   []CacheRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace() *RunTrace {
	return &RunTrace{
		Pages:   make([]PageRecord, 0),
		Missing: make([]MissingRecord, 0),
		Cache:   make([]CacheRecord, 0),
	}
}

// RecordPage appends a page record. Safe on a nil trace.
func (rt *RunTrace) RecordPage(record PageRecord) {
	if rt == nil {
		return
	}
	rt.Pages = append(rt.Pages, record)
}

// RecordMissing appends a missing-transition record. Safe on a nil trace.
func (rt *RunTrace) RecordMissing(record MissingRecord) {
	if rt == nil {
		return
	}
	rt.Missing = append(rt.Missing, record)
}

// RecordCache appends a cache record. Safe on a nil trace.
func (rt *RunTrace) RecordCache(record CacheRecord) {
	if rt == nil {
		return
	}
	rt.Cache = append(rt.Cache, record)
}
