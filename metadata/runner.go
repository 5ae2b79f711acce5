package metadata

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"

	"github.com/yhkl-dev/rainplayer/domain"
)

// Sink receives extraction results. Both methods return false when the
// handle no longer belongs to the playlist.
type Sink interface {
	ApplyMetadata(h *domain.SourceHandle, md domain.Metadata) bool
	ApplyDuration(h *domain.SourceHandle, seconds float64) bool
}

// Dispatcher runs fn on the goroutine that owns the sink
type Dispatcher func(fn func())

// Runner extracts metadata for freshly loaded tracks in the background and
// joins each result back into the sink on the dispatcher's goroutine.
type Runner struct {
	ctx       context.Context
	extractor Extractor
	prober    Prober
	sink      Sink
	dispatch  Dispatcher
	workers   int
}

// NewRunner creates a runner. prober may be nil to skip duration probing.
func NewRunner(ctx context.Context, extractor Extractor, prober Prober, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		ctx:       ctx,
		extractor: extractor,
		prober:    prober,
		workers:   workers,
		dispatch:  func(fn func()) { fn() },
	}
}

// Bind sets the sink results are applied to and the dispatcher used to reach it
func (r *Runner) Bind(sink Sink, dispatch Dispatcher) {
	r.sink = sink
	if dispatch != nil {
		r.dispatch = dispatch
	}
}

// Enrich starts extraction for tracks and returns immediately
func (r *Runner) Enrich(tracks []domain.Track) {
	if len(tracks) == 0 || r.sink == nil {
		return
	}
	jobs := make([]domain.Track, len(tracks))
	copy(jobs, tracks)
	go r.run(jobs)
}

// EnrichWait is Enrich but blocks until every task has been dispatched
func (r *Runner) EnrichWait(tracks []domain.Track) {
	if len(tracks) == 0 || r.sink == nil {
		return
	}
	r.run(tracks)
}

func (r *Runner) run(tracks []domain.Track) {
	p := pool.New().WithMaxGoroutines(r.workers)
	for _, track := range tracks {
		p.Go(func() {
			r.extract(track)
			r.probe(track)
		})
	}
	p.Wait()
}

func (r *Runner) extract(track domain.Track) {
	res, err := r.extractor.Extract(r.ctx, track.File)
	if err != nil {
		log.Printf("Error reading tags: %v", err)
		return
	}
	md := res.Metadata(track.File)
	r.dispatch(func() {
		r.sink.ApplyMetadata(track.Source, md)
	})
}

func (r *Runner) probe(track domain.Track) {
	if r.prober == nil {
		return
	}
	seconds, err := r.prober.Probe(r.ctx, track)
	if err != nil {
		log.Printf("Error probing duration: %v", err)
		return
	}
	r.dispatch(func() {
		r.sink.ApplyDuration(track.Source, seconds)
	})
}
