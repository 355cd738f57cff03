// Package frames scans a directory of extracted video frames, orders them by
// the frame number embedded in each filename and downsamples them to a cap.
package frames

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultMaxFrames is used when a Selector has no positive cap.
const DefaultMaxFrames = 20

var digitRun = regexp.MustCompile(`\d+`)

var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Frame is one selected still image.
type Frame struct {
	Index     int64
	Filename  string
	MediaType string
	Content   string // base64
}

// Selector picks frames from a directory.
type Selector struct {
	MaxFrames int
	// VerifyImages decodes each image header and skips files that do not decode.
	VerifyImages bool
}

// Select returns at most MaxFrames frames from dir ordered by frame index.
// A directory without qualifying images yields an empty slice and no error.
// Files with no digits in their name all get index 0; their relative order is
// the directory listing order.
func (s Selector) Select(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory %q: %w", dir, err)
	}

	type candidate struct {
		name  string
		index int64
	}
	var files []candidate
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		files = append(files, candidate{name: entry.Name(), index: ExtractIndex(entry.Name())})
	}
	if len(files) == 0 {
		log.Warn().Str("dir", dir).Msg("no image files found")
		return []Frame{}, nil
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].index < files[j].index })

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	picked := Downsample(names, s.maxFrames())

	out := make([]Frame, 0, len(picked))
	for _, name := range picked {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("frame", name).Msg("skipping unreadable frame")
			continue
		}
		if s.VerifyImages {
			if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
				log.Warn().Err(err).Str("frame", name).Msg("skipping undecodable frame")
				continue
			}
		}
		out = append(out, Frame{
			Index:     ExtractIndex(name),
			Filename:  name,
			MediaType: MediaType(name),
			Content:   base64.StdEncoding.EncodeToString(data),
		})
	}
	return out, nil
}

func (s Selector) maxFrames() int {
	if s.MaxFrames <= 0 {
		return DefaultMaxFrames
	}
	return s.MaxFrames
}

// Downsample keeps every stride-th name, stride = len/max, then truncates to max.
// Names are returned unchanged when there are no more than max of them.
func Downsample(names []string, max int) []string {
	if max <= 0 || len(names) <= max {
		return names
	}
	stride := len(names) / max
	out := make([]string, 0, max)
	for i := 0; i < len(names) && len(out) < max; i += stride {
		out = append(out, names[i])
	}
	return out
}

// ExtractIndex parses the first run of digits in name. Names without digits get 0.
func ExtractIndex(name string) int64 {
	m := digitRun.FindString(name)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

// IsImage reports whether name has a jpg, jpeg or png extension (any case).
func IsImage(name string) bool {
	_, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MediaType returns the image media type for name, defaulting to image/jpeg.
func MediaType(name string) string {
	if mt, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "image/jpeg"
}
