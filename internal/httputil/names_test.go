package httputil

import "testing"

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "frame_1.jpg", want: "frame_1.jpg"},
		{in: "clip/frames/frame_2.png", want: "frame_2.png"},
		{in: `C:\frames\frame_3.jpg`, want: "frame_3.jpg"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: ".hidden.jpg", want: "hidden.jpg"},
		{in: "..", want: ""},
		{in: "", want: ""},
		{in: "dir/", want: "dir"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SafeFilename(tc.in); got != tc.want {
				t.Fatalf("SafeFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{n: 0, want: "0 B"},
		{n: 1023, want: "1023 B"},
		{n: 1536, want: "1.5 KB"},
		{n: 16 * 1024 * 1024, want: "16.0 MB"},
	}
	for _, tc := range tests {
		if got := FormatSize(tc.n); got != tc.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
