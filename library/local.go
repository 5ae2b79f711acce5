package library

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yhkl-dev/rainplayer/domain"
)

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// LocalLibrary selects files from the local filesystem
type LocalLibrary struct {
	recursive bool
}

func NewLocalLibrary(recursive bool) *LocalLibrary {
	return &LocalLibrary{recursive: recursive}
}

func (l *LocalLibrary) Select(paths ...string) ([]domain.File, error) {
	var files []domain.File
	for _, p := range paths {
		matches, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			found, err := l.collect(m)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}
	return files, nil
}

// expand resolves a glob pattern; plain paths are returned as is
func expand(p string) ([]string, error) {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if !strings.ContainsAny(p, "*?[") {
		return []string{p}, nil
	}
	matches, err := filepath.Glob(p)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", p, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func (l *LocalLibrary) collect(path string) ([]domain.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []domain.File{newFile(path, info)}, nil
	}

	var files []domain.File
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("library: skipping %s: %v", p, err)
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != path {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != path && !l.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, newFile(p, fi))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	return files, nil
}

func newFile(path string, info fs.FileInfo) domain.File {
	return domain.File{
		Name:      info.Name(),
		Path:      path,
		MediaType: DetectMediaType(path),
		Size:      info.Size(),
	}
}

// DetectMediaType guesses a file's media type from its extension, falling
// back to sniffing the first bytes of the file.
func DetectMediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}

	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "application/octet-stream"
	}
	return http.DetectContentType(head[:n])
}
