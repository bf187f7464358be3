package gas

// Recorder observes counters during a pipeline run. It is called from the pipeline
// goroutine only.
type Recorder interface {
	ConvolutionComputed(model string)
	CacheHit()
	CacheMiss()
	PageEmitted()
	TileEmitted()
	MissingTransition()
	MissingModelOutput()
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) ConvolutionComputed(string) {}
func (NopRecorder) CacheHit()                  {}
func (NopRecorder) CacheMiss()                 {}
func (NopRecorder) PageEmitted()               {}
func (NopRecorder) TileEmitted()               {}
func (NopRecorder) MissingTransition()         {}
func (NopRecorder) MissingModelOutput()        {}
