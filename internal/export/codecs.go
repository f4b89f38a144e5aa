package export

import (
	"bufio"
	"bytes"
	"strings"
)

// Codec is one entry of the video codec cascade.
type Codec struct {
	Name      string
	Encoder   string // ffmpeg encoder name
	Format    string // ffmpeg muxer
	Extension string
	MimeType  string
	Args      []string
}

// CodecPreference is tried in order: a modern open codec, a widely
// supported one, then the older open codec.
var CodecPreference = []Codec{
	{
		Name:      "vp9",
		Encoder:   "libvpx-vp9",
		Format:    "webm",
		Extension: "webm",
		MimeType:  "video/webm;codecs=vp9",
		Args:      []string{"-deadline", "realtime", "-cpu-used", "8", "-row-mt", "1", "-b:v", "4M"},
	},
	{
		Name:      "h264",
		Encoder:   "libx264",
		Format:    "mp4",
		Extension: "mp4",
		MimeType:  "video/mp4",
		Args:      []string{"-preset", "veryfast", "-crf", "23", "-movflags", "frag_keyframe+empty_moov"},
	},
	{
		Name:      "vp8",
		Encoder:   "libvpx",
		Format:    "webm",
		Extension: "webm",
		MimeType:  "video/webm",
		Args:      []string{"-deadline", "realtime", "-cpu-used", "8", "-b:v", "4M"},
	},
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output. Data
// lines start with a six character capability column such as "V....D".
func ParseEncoders(out []byte) map[string]bool {
	found := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	inList := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "------") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		found[fields[1]] = true
	}
	return found
}

// SelectCodec returns the first preferred codec that is available.
func SelectCodec(available map[string]bool) (Codec, error) {
	for _, c := range CodecPreference {
		if available[c.Encoder] {
			return c, nil
		}
	}
	return Codec{}, ErrExportUnavailable
}
