package export

import (
	"errors"
	"strings"
	"testing"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D png                  PNG (Portable Network Graphics) image
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoders(t *testing.T) {
	found := ParseEncoders([]byte(encodersOutput))
	for _, name := range []string{"libx264", "libvpx", "png", "aac"} {
		if !found[name] {
			t.Errorf("encoder %s not parsed", name)
		}
	}
	if found["V....."] || found["="] || found["Video"] {
		t.Error("legend lines parsed as encoders")
	}
}

func TestSelectCodecCascade(t *testing.T) {
	tests := []struct {
		available map[string]bool
		want      string
		wantErr   bool
	}{
		{map[string]bool{"libvpx-vp9": true, "libx264": true, "libvpx": true}, "vp9", false},
		{map[string]bool{"libx264": true, "libvpx": true}, "h264", false},
		{map[string]bool{"libvpx": true}, "vp8", false},
		{map[string]bool{"png": true}, "", true},
	}
	for _, tt := range tests {
		c, err := SelectCodec(tt.available)
		if (err != nil) != tt.wantErr {
			t.Errorf("SelectCodec(%v) error = %v", tt.available, err)
			continue
		}
		if err != nil && !errors.Is(err, ErrExportUnavailable) {
			t.Errorf("SelectCodec error %v is not ErrExportUnavailable", err)
		}
		if c.Name != tt.want {
			t.Errorf("SelectCodec(%v) = %s, want %s", tt.available, c.Name, tt.want)
		}
	}
}

func TestBuildEncodeArgs(t *testing.T) {
	args := BuildEncodeArgs(CodecPreference[1], 540, 960, 30)
	joined := strings.Join(args, " ")
	for _, want := range []string{"-f rawvideo", "-pix_fmt rgba", "-s 540x960", "-r 30", "-i pipe:0", "-c:v libx264", "frag_keyframe+empty_moov", "-f mp4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("encode args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != StdoutPipe {
		t.Errorf("last arg = %s, want %s", args[len(args)-1], StdoutPipe)
	}
}

func TestSurfaceSizeIsEven(t *testing.T) {
	w, h := surfaceSize(541, 961.4)
	if w != 540 || h != 960 {
		t.Errorf("surfaceSize = %dx%d, want 540x960", w, h)
	}
}
