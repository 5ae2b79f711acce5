package coverart

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/qeesung/image2ascii/convert"
	"github.com/vincent-petithory/dataurl"
)

// Converter turns embedded album art into ASCII for the now playing pane
type Converter struct {
	converter *convert.ImageConverter
	width     int
	height    int
}

// NewConverter creates a new cover art converter
func NewConverter() *Converter {
	return &Converter{
		converter: convert.NewImageConverter(),
		width:     25,
		height:    12,
	}
}

// ConvertDataURI decodes a data URI image and converts it to ASCII art.
// An empty uri yields the placeholder without an error.
func (c *Converter) ConvertDataURI(uri string) (string, error) {
	if uri == "" {
		return c.Placeholder(), nil
	}

	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return c.Placeholder(), fmt.Errorf("failed to parse data uri: %w", err)
	}
	if du.Type != "image" {
		return c.Placeholder(), fmt.Errorf("not an image: %s", du.ContentType())
	}

	img, _, err := image.Decode(bytes.NewReader(du.Data))
	if err != nil {
		return c.Placeholder(), fmt.Errorf("failed to decode: %w", err)
	}

	convertOptions := convert.DefaultOptions
	convertOptions.FixedWidth = c.width
	convertOptions.FixedHeight = c.height
	convertOptions.Colored = false // Disable ANSI colors for tview compatibility

	return c.converter.Image2ASCIIString(img, &convertOptions), nil
}

// Placeholder returns the art shown when a track has none
func (c *Converter) Placeholder() string {
	return `[darkgreen]┌───────────────────────┐
[darkgreen]│                       │
[darkgreen]│                       │
[darkgreen]│                       │
[darkgreen]│        ♫  ♪  ♫        │
[darkgreen]│      No Album Art     │
[darkgreen]│        ♫  ♪  ♫        │
[darkgreen]│                       │
[darkgreen]│                       │
[darkgreen]│                       │
[darkgreen]└───────────────────────┘`
}
