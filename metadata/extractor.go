package metadata

import (
	"context"
	"fmt"
	"mime"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/vincent-petithory/dataurl"

	"github.com/yhkl-dev/rainplayer/domain"
)

// Picture is an embedded cover image
type Picture struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the picture as a base64 data URI
func (p *Picture) DataURI() string {
	if p == nil || len(p.Data) == 0 {
		return ""
	}
	mt := p.MIMEType
	if mt == "" {
		mt = "image/jpeg"
	}
	return dataurl.New(p.Data, mt).String()
}

// Result is what an extractor found in a file. Empty fields mean absent.
type Result struct {
	Title   string
	Artist  string
	Picture *Picture
}

// Metadata merges the result with the defaults for file
func (r Result) Metadata(file domain.File) domain.Metadata {
	md := domain.Metadata{
		Title:    strings.TrimSpace(r.Title),
		Artist:   strings.TrimSpace(r.Artist),
		AlbumArt: r.Picture.DataURI(),
	}
	if md.Title == "" {
		md.Title = file.DisplayName()
	}
	if md.Artist == "" {
		md.Artist = domain.UnknownArtist
	}
	return md
}

// Extractor reads display metadata from an audio file
type Extractor interface {
	Extract(ctx context.Context, file domain.File) (Result, error)
}

// TagExtractor reads ID3, MP4, FLAC and OGG tags
type TagExtractor struct{}

func NewTagExtractor() *TagExtractor {
	return &TagExtractor{}
}

func (e *TagExtractor) Extract(ctx context.Context, file domain.File) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read tags of %s: %w", file.Name, err)
	}

	res := Result{
		Title:  m.Title(),
		Artist: m.Artist(),
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		res.Picture = &Picture{Data: pic.Data, MIMEType: pictureType(pic)}
	}
	return res, nil
}

func pictureType(pic *tag.Picture) string {
	if pic.MIMEType != "" {
		return pic.MIMEType
	}
	if pic.Ext == "" {
		return ""
	}
	return mime.TypeByExtension("." + strings.TrimPrefix(pic.Ext, "."))
}
