package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	// GIVEN no trace
	// WHEN summarized
	summary := Summarize(nil)

	// THEN counts are zero and maps are usable
	if summary.Pages != 0 || summary.Tiles != 0 {
		t.Errorf("expected 0 pages and tiles, got %d and %d", summary.Pages, summary.Tiles)
	}
	if summary.PagesPerPass == nil || summary.MissingPerModel == nil {
		t.Error("expected non-nil maps")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace of two passes with a missing transition and cache lookups
	rt := NewRunTrace()
	rt.RecordPage(PageRecord{Pass: "line_profiles", Index: 1, Transitions: []string{"a", "b", "c"}})
	rt.RecordPage(PageRecord{Pass: "line_profiles", Index: 2, Transitions: []string{"d"}})
	rt.RecordPage(PageRecord{Pass: "intrinsic_line_profiles", Index: 1, Transitions: []string{"e"}})
	rt.RecordMissing(MissingRecord{Pass: "line_profiles", Transition: "b", Models: []string{"star1", "star2"}})
	rt.RecordMissing(MissingRecord{Pass: "line_profiles", Transition: "c", Models: []string{"star2"}})
	rt.RecordCache(CacheRecord{Model: "m1", Computed: true})
	rt.RecordCache(CacheRecord{Model: "m2"})
	rt.RecordCache(CacheRecord{Model: "m1", Hit: true})

	// WHEN summarized
	summary := Summarize(rt)

	// THEN counts match
	if summary.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", summary.Pages)
	}
	if summary.Tiles != 5 {
		t.Errorf("expected 5 tiles, got %d", summary.Tiles)
	}
	if summary.PagesPerPass["line_profiles"] != 2 || summary.PagesPerPass["intrinsic_line_profiles"] != 1 {
		t.Errorf("unexpected pages per pass: %v", summary.PagesPerPass)
	}
	if summary.MissingTransitions != 2 {
		t.Errorf("expected 2 missing transitions, got %d", summary.MissingTransitions)
	}
	if summary.MissingPerModel["star2"] != 2 || summary.MissingPerModel["star1"] != 1 {
		t.Errorf("unexpected missing per model: %v", summary.MissingPerModel)
	}
	if summary.CacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", summary.CacheHits)
	}
	if summary.Convolutions != 1 {
		t.Errorf("expected 1 convolution, got %d", summary.Convolutions)
	}
}
