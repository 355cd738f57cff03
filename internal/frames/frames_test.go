package frames

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSelect_SortsByEmbeddedIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_10.jpg", "frame_2.jpg", "frame_1.png", "notes.txt"} {
		writeFile(t, dir, name, []byte(name))
	}

	got, err := Selector{MaxFrames: 20}.Select(dir)
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	want := []string{"frame_1.png", "frame_2.jpg", "frame_10.jpg"}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i, f := range got {
		if f.Filename != want[i] {
			t.Fatalf("frame %d: expected %s, got %s", i, want[i], f.Filename)
		}
	}
	if got[0].Index != 1 || got[2].Index != 10 {
		t.Fatalf("unexpected indices: %d, %d", got[0].Index, got[2].Index)
	}
	if got[0].MediaType != "image/png" || got[1].MediaType != "image/jpeg" {
		t.Fatalf("unexpected media types: %s, %s", got[0].MediaType, got[1].MediaType)
	}
	decoded, err := base64.StdEncoding.DecodeString(got[1].Content)
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if string(decoded) != "frame_2.jpg" {
		t.Fatalf("unexpected content %q", decoded)
	}
}

func TestSelect_TwentyFiveFramesKeepsFirstTwenty(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		writeFile(t, dir, fmt.Sprintf("frame_%d.jpg", i), []byte{byte(i)})
	}

	got, err := Selector{MaxFrames: 20}.Select(dir)
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 frames, got %d", len(got))
	}
	for i, f := range got {
		if f.Index != int64(i) {
			t.Fatalf("frame %d: expected index %d, got %d", i, i, f.Index)
		}
	}
}

func TestSelect_CountBounds(t *testing.T) {
	tests := []struct {
		name  string
		files int
		max   int
		want  int
	}{
		{name: "fewer than cap", files: 7, max: 20, want: 7},
		{name: "exactly cap", files: 20, max: 20, want: 20},
		{name: "double cap", files: 40, max: 20, want: 20},
		{name: "odd overflow", files: 59, max: 20, want: 20},
		{name: "default cap", files: 30, max: 0, want: DefaultMaxFrames},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for i := 0; i < tc.files; i++ {
				writeFile(t, dir, fmt.Sprintf("f%03d.jpeg", i), []byte("x"))
			}
			got, err := Selector{MaxFrames: tc.max}.Select(dir)
			if err != nil {
				t.Fatalf("Select error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d frames, got %d", tc.want, len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i-1].Index > got[i].Index {
					t.Fatalf("frames not ascending at %d: %d > %d", i, got[i-1].Index, got[i].Index)
				}
			}
		})
	}
}

func TestSelect_EmptyDirectory(t *testing.T) {
	got, err := Selector{}.Select(t.TempDir())
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSelect_MissingDirectory(t *testing.T) {
	if _, err := (Selector{}).Select(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestSelect_VerifyImagesSkipsCorruptFrames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "frame_1.png", pngBytes(t))
	writeFile(t, dir, "frame_2.png", []byte("not an image"))

	got, err := Selector{VerifyImages: true}.Select(dir)
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if len(got) != 1 || got[0].Filename != "frame_1.png" {
		t.Fatalf("expected only frame_1.png, got %+v", got)
	}
}

func TestSelect_IgnoresDirectoriesAndUppercaseExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub_3.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, dir, "SHOT_5.JPG", []byte("a"))
	writeFile(t, dir, "clip_4.gif", []byte("b"))

	got, err := Selector{}.Select(dir)
	if err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if len(got) != 1 || got[0].Filename != "SHOT_5.JPG" {
		t.Fatalf("expected only SHOT_5.JPG, got %+v", got)
	}
}

func TestExtractIndex(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{name: "frame_0042.jpg", want: 42},
		{name: "cam2_frame_17.png", want: 2},
		{name: "cover.jpg", want: 0},
		{name: "99999999999999999999999.jpg", want: 9223372036854775807},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractIndex(tc.name); got != tc.want {
				t.Fatalf("ExtractIndex(%q) = %d, want %d", tc.name, got, tc.want)
			}
		})
	}
}

func TestDownsampleStride(t *testing.T) {
	names := make([]string, 45)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i)
	}
	got := Downsample(names, 20)
	if len(got) != 20 {
		t.Fatalf("expected 20, got %d", len(got))
	}
	// stride = 45/20 = 2
	if got[0] != "0" || got[1] != "2" || got[19] != "38" {
		t.Fatalf("unexpected stride selection: %v", got)
	}
}
