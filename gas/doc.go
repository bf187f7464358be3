// Package gas provides the spectral-line correlation and tiling engine for linetiles.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - transition.go: Transition identity (molecule, label, telescope) and the Star model record
//   - catalog.go: deduplicated transition catalogs and the explicit sort policies
//   - batcher.go: the page/tile state machine that drains a transition list into fixed grids
//
// # Architecture
//
// The gas package defines data types and collaborator interfaces; implementations live in
// sub-packages:
//   - gas/modelout/: model output tables, simulated line profiles, star grid files
//   - gas/obs/: observational segments (PACS, SPIRE) and the file-backed convolver
//   - gas/linelist/: spectroscopic line-list catalogs (CDMS, JPL, LAMDA layouts)
//   - gas/store/: persistent backing for convolved spectra (memory, sqlite, postgres)
//   - gas/render/: tile figures and column plots
//   - gas/artifact/: storage for rendered figures (fs, memory, s3)
//   - gas/metrics/: prometheus counters for a pipeline run
//   - gas/trace/: page and missing-transition records
//
// # Key Interfaces
//
//   - ModelProfileReader, ObservedProfileReader: simulated and observed line profiles of one transition
//   - Convolver: instrument-convolved model spectra per star, one per observational segment
//   - LineListProvider: candidate transitions from a spectroscopic database
//   - Renderer: turns pages of TileRecords into figure artifacts
//   - Recorder: counters observed during a run
package gas
