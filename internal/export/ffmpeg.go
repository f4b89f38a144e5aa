package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// FFmpeg constants for the streaming encoder
const (
	FFmpegCommand  = "ffmpeg"
	FFmpegLogLevel = "error"
	StdinPipe      = "pipe:0"
	StdoutPipe     = "pipe:1"
	OutputPixFmt   = "yuv420p"
)

// FFmpegFactory negotiates codecs against the local ffmpeg build and runs
// one ffmpeg process per export, fed raw RGBA frames on stdin.
type FFmpegFactory struct {
	Command string

	once   sync.Once
	codec  Codec
	negErr error
}

// NewFFmpegFactory creates a factory using ffmpeg from PATH.
func NewFFmpegFactory() *FFmpegFactory {
	return &FFmpegFactory{Command: FFmpegCommand}
}

// Negotiate lists the encoders once and picks the preferred codec.
func (f *FFmpegFactory) Negotiate(ctx context.Context) (Codec, error) {
	f.once.Do(func() {
		if _, err := exec.LookPath(f.Command); err != nil {
			f.negErr = fmt.Errorf("%w: %v", ErrExportUnavailable, err)
			return
		}
		out, err := exec.CommandContext(ctx, f.Command, "-hide_banner", "-encoders").Output()
		if err != nil {
			f.negErr = fmt.Errorf("%w: failed to list encoders: %v", ErrExportUnavailable, err)
			return
		}
		f.codec, f.negErr = SelectCodec(ParseEncoders(out))
	})
	return f.codec, f.negErr
}

// BuildEncodeArgs builds the ffmpeg arguments for a rawvideo stdin stream
// encoded with codec to stdout.
func BuildEncodeArgs(codec Codec, width, height int, fps float64) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", FFmpegLogLevel,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", StdinPipe,
		"-an",
		"-c:v", codec.Encoder,
		"-pix_fmt", OutputPixFmt,
	}
	args = append(args, codec.Args...)
	return append(args, "-f", codec.Format, StdoutPipe)
}

// NewEncoder starts ffmpeg for one export.
func (f *FFmpegFactory) NewEncoder(ctx context.Context, codec Codec, width, height int, fps float64) (Encoder, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, f.Command, BuildEncodeArgs(codec, width, height, fps)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	e := &ffmpegEncoder{cmd: cmd, cancel: cancel, stdin: stdin, stderr: &stderr, done: make(chan struct{})}
	go e.collect(stdout)
	return e, nil
}

type ffmpegEncoder struct {
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	stdin   io.WriteCloser
	stderr  *bytes.Buffer
	done    chan struct{}
	chunks  [][]byte
	readErr error
}

// collect buffers the encoded stream as it arrives.
func (e *ffmpegEncoder) collect(r io.Reader) {
	defer close(e.done)
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			e.chunks = append(e.chunks, bytes.Clone(buf[:n]))
		}
		if err != nil {
			if err != io.EOF {
				e.readErr = err
			}
			return
		}
	}
}

func (e *ffmpegEncoder) WriteFrame(frame *image.RGBA) error {
	if _, err := e.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (e *ffmpegEncoder) Close() ([]byte, error) {
	defer e.cancel()
	e.stdin.Close()
	<-e.done
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, bytes.TrimSpace(e.stderr.Bytes()))
	}
	if e.readErr != nil {
		return nil, fmt.Errorf("failed to read encoded stream: %w", e.readErr)
	}
	return bytes.Join(e.chunks, nil), nil
}

func (e *ffmpegEncoder) Abort() {
	e.cancel()
	e.stdin.Close()
	<-e.done
	_ = e.cmd.Wait()
}
