// Package trace provides run-trace recording for tiling passes.
// It does not import gas and stores pure data types only.
package trace

// PageRecord captures one emitted page.
type PageRecord struct {
	Pass        string
	Index       int
	Transitions []string // transition identities, in tile order
}

// MissingRecord captures a transition that one or more models lack.
type MissingRecord struct {
	Pass       string
	Transition string
	Models     []string // star names without a counterpart
}

// CacheRecord captures one convolution cache lookup.
type CacheRecord struct {
	Model    string
	Hit      bool
	Computed bool
}
