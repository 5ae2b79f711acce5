package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhkl-dev/rainplayer/domain"
	"github.com/yhkl-dev/rainplayer/playlist"
)

type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]Result
	calls   []string
}

func (f *fakeExtractor) Extract(_ context.Context, file domain.File) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, file.Name)
	res, ok := f.results[file.Name]
	if !ok {
		return Result{}, errors.New("no tags")
	}
	return res, nil
}

type fakeProber map[string]float64

func (f fakeProber) Probe(_ context.Context, track domain.Track) (float64, error) {
	if d, ok := f[track.File.Name]; ok {
		return d, nil
	}
	return 0, errors.New("unknown length")
}

func audio(names ...string) []domain.File {
	out := make([]domain.File, len(names))
	for i, n := range names {
		out[i] = domain.File{Name: n, Path: "/music/" + n, MediaType: "audio/mpeg"}
	}
	return out
}

func TestResultMetadataDefaults(t *testing.T) {
	file := domain.File{Name: "track01.mp3"}

	md := Result{}.Metadata(file)
	assert.Equal(t, domain.Metadata{Title: "track01", Artist: domain.UnknownArtist}, md)

	md = Result{Title: " Song ", Artist: "Band", Picture: &Picture{Data: []byte{1, 2, 3}, MIMEType: "image/png"}}.Metadata(file)
	assert.Equal(t, "Song", md.Title)
	assert.Equal(t, "Band", md.Artist)
	assert.Equal(t, "data:image/png;base64,AQID", md.AlbumArt)
}

func TestPictureDataURI(t *testing.T) {
	var nilPic *Picture
	assert.Empty(t, nilPic.DataURI())
	assert.Empty(t, (&Picture{MIMEType: "image/png"}).DataURI())
	assert.Equal(t, "data:image/jpeg;base64,AQID", (&Picture{Data: []byte{1, 2, 3}}).DataURI())
}

func TestRunnerAppliesResults(t *testing.T) {
	store := playlist.NewStore()
	ext := &fakeExtractor{results: map[string]Result{
		"a.mp3": {Title: "Alpha", Artist: "Ann"},
		"c.mp3": {Artist: "Cee"},
	}}
	r := NewRunner(context.Background(), ext, fakeProber{"a.mp3": 61}, 2)
	r.Bind(store, nil)

	tracks := store.ReplaceAll(audio("a.mp3", "b.mp3", "c.mp3"))
	r.EnrichWait(tracks)

	a, _ := store.Get(0)
	assert.Equal(t, "Alpha", a.Title)
	assert.Equal(t, "Ann", a.Artist)
	assert.InDelta(t, 61, a.Duration, 1e-9)

	// extraction failure keeps defaults
	b, _ := store.Get(1)
	assert.Equal(t, "b", b.Title)
	assert.Equal(t, domain.UnknownArtist, b.Artist)
	assert.False(t, b.HasDuration())

	c, _ := store.Get(2)
	assert.Equal(t, "c", c.Title)
	assert.Equal(t, "Cee", c.Artist)

	assert.Len(t, ext.calls, 3)
}

func TestRunnerDropsResultsForReplacedPlaylist(t *testing.T) {
	store := playlist.NewStore()
	ext := &fakeExtractor{results: map[string]Result{"a.mp3": {Title: "Stale", Artist: "Old"}}}
	r := NewRunner(context.Background(), ext, nil, 1)

	var queued []func()
	r.Bind(store, func(fn func()) { queued = append(queued, fn) })

	old := store.ReplaceAll(audio("a.mp3"))
	r.EnrichWait(old)
	require.Len(t, queued, 1)

	store.ReplaceAll(audio("a.mp3"))
	for _, fn := range queued {
		fn()
	}

	got, _ := store.Get(0)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, domain.UnknownArtist, got.Artist)
}

func TestRunnerViaStoreEnricher(t *testing.T) {
	store := playlist.NewStore()
	ext := &fakeExtractor{results: map[string]Result{"a.mp3": {Title: "Alpha"}}}
	r := NewRunner(context.Background(), ext, nil, 1)

	done := make(chan struct{})
	r.Bind(store, func(fn func()) {
		fn()
		close(done)
	})
	store.SetEnricher(r)

	store.ReplaceAll(audio("a.mp3"))
	<-done

	got, _ := store.Get(0)
	assert.Equal(t, "Alpha", got.Title)
}

func TestTagExtractorErrors(t *testing.T) {
	e := NewTagExtractor()

	_, err := e.Extract(context.Background(), domain.File{Name: "missing.mp3", Path: filepath.Join(t.TempDir(), "missing.mp3")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "plain.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio at all"), 0o644))
	_, err = e.Extract(context.Background(), domain.File{Name: "plain.mp3", Path: path})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Extract(ctx, domain.File{Name: "plain.mp3", Path: path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecoderProberRejectsUnsupported(t *testing.T) {
	track := domain.NewTrack(domain.File{Name: "a.m4a", Path: "/music/a.m4a", MediaType: "audio/mp4"})
	_, err := NewDecoderProber().Probe(context.Background(), track)
	assert.Error(t, err)
}
