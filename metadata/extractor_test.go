package metadata

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhkl-dev/rainplayer/domain"
)

// id3Frame encodes a single ID3v2.3 frame
func id3Frame(id string, data []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.BigEndian, uint32(len(data)))
	b.Write([]byte{0, 0})
	b.Write(data)
	return b.Bytes()
}

func textFrame(id, text string) []byte {
	return id3Frame(id, append([]byte{0}, text...))
}

func apicFrame(mimeType string, img []byte) []byte {
	var b bytes.Buffer
	b.WriteByte(0)
	b.WriteString(mimeType)
	b.WriteByte(0)
	b.WriteByte(3) // front cover
	b.WriteByte(0) // empty description
	b.Write(img)
	return id3Frame("APIC", b.Bytes())
}

// writeID3 writes a file holding only an ID3v2.3 tag made of frames
func writeID3(t *testing.T, name string, frames ...[]byte) domain.File {
	t.Helper()
	body := bytes.Join(frames, nil)
	size := len(body)

	var b bytes.Buffer
	b.WriteString("ID3")
	b.Write([]byte{3, 0, 0})
	b.Write([]byte{
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	})
	b.Write(body)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return domain.File{Name: name, Path: path, MediaType: "audio/mpeg"}
}

func TestTagExtractorReadsTags(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	file := writeID3(t, "song.mp3",
		textFrame("TIT2", "Neon Rain"),
		textFrame("TPE1", "Operator"),
		apicFrame("image/png", img),
	)

	res, err := NewTagExtractor().Extract(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "Neon Rain", res.Title)
	assert.Equal(t, "Operator", res.Artist)
	require.NotNil(t, res.Picture)
	assert.Equal(t, "image/png", res.Picture.MIMEType)
	assert.Equal(t, img, res.Picture.Data)

	md := res.Metadata(file)
	assert.Equal(t, "Neon Rain", md.Title)
	assert.Equal(t, "Operator", md.Artist)
	assert.True(t, strings.HasPrefix(md.AlbumArt, "data:image/png;base64,"), md.AlbumArt)
}

func TestTagExtractorBlankTagsKeepDefaults(t *testing.T) {
	file := writeID3(t, "07 - untitled.mp3",
		textFrame("TIT2", "   "),
		textFrame("TALB", "Somewhere"),
	)

	res, err := NewTagExtractor().Extract(context.Background(), file)
	require.NoError(t, err)
	assert.Nil(t, res.Picture)

	md := res.Metadata(file)
	assert.Equal(t, "07 - untitled", md.Title)
	assert.Equal(t, domain.UnknownArtist, md.Artist)
	assert.Empty(t, md.AlbumArt)
}

func TestPictureTypeFallsBackToExtension(t *testing.T) {
	tests := []struct {
		name string
		pic  tag.Picture
		want string
	}{
		{"mime type wins", tag.Picture{MIMEType: "image/gif", Ext: "png"}, "image/gif"},
		{"extension", tag.Picture{Ext: "png"}, "image/png"},
		{"dotted extension", tag.Picture{Ext: ".jpg"}, "image/jpeg"},
		{"nothing", tag.Picture{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pictureType(&tt.pic))
		})
	}
}

func TestDecoderProberMeasuresWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 11025, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(2*11025), format))
	require.NoError(t, f.Close())

	track := domain.NewTrack(domain.File{Name: "tone.wav", Path: path, MediaType: "audio/wav"})
	defer track.Source.Release()

	seconds, err := NewDecoderProber().Probe(context.Background(), track)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, seconds, 1e-3)
}
