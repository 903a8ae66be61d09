package source

import (
	"bytes"
	"context"
	"image"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/clips2video/internal/logging"
	"github.com/ivlev/clips2video/internal/media"
	"github.com/ivlev/clips2video/internal/system"
)

// Source decodes one input clip fully into memory.
type Source interface {
	Load(ctx context.Context, path string) (media.Clip, media.Metadata, error)
}

// Prober reads stream metadata without decoding frames.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeInfo, error)
}

// FFmpegSource decodes clips by piping `ffmpeg -f rawvideo -pix_fmt rgba`
// output into memory.
type FFmpegSource struct {
	ffmpegPath  string
	ffprobePath string
	logger      zerolog.Logger
}

func NewFFmpegSource(ffmpegPath string, logger zerolog.Logger) *FFmpegSource {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegSource{
		ffmpegPath:  ffmpegPath,
		ffprobePath: system.ProbeBinary(ffmpegPath),
		logger:      logging.WithComponent(logger, "source"),
	}
}

func (s *FFmpegSource) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	if err := ctx.Err(); err != nil {
		return ProbeInfo{}, err
	}

	cmd := exec.CommandContext(ctx, s.ffprobePath, probeArgs(path)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return ProbeInfo{}, withStderr(errors.Wrap(err, "ffprobe"), &stderr)
	}
	return parseProbe(stdout.Bytes())
}

// probeArgs mirrors ffmpeg.Probe, which always runs ffprobe from PATH.
func probeArgs(path string) []string {
	args := ffmpeg.ConvertKwargsToCmdLineArgs(ffmpeg.KwArgs{
		"show_format":  "",
		"show_streams": "",
		"of":           "json",
		"v":            "error",
	})
	return append(args, path)
}

// Load returns every decodable frame of path. Any failure to open or decode
// the clip is reported as media.ErrSourceUnreadable.
func (s *FFmpegSource) Load(ctx context.Context, path string) (media.Clip, media.Metadata, error) {
	info, err := s.Probe(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return media.Clip{}, media.Metadata{}, ctx.Err()
		}
		return media.Clip{}, media.Metadata{}, unreadable(path, err)
	}

	cmd := exec.CommandContext(ctx, s.ffmpegPath, decodeArgs(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return media.Clip{}, media.Metadata{}, errors.Wrap(err, "stdout pipe")
	}

	s.logger.Debug().Str("path", path).Strs("args", cmd.Args).Msg("decoding clip")

	if err := cmd.Start(); err != nil {
		return media.Clip{}, media.Metadata{}, unreadable(path, errors.Wrap(err, "ffmpeg start"))
	}

	frames, readErr := readFrames(stdout, info.Metadata)
	if readErr != nil {
		// ffmpeg blocks on a full pipe once we stop reading.
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return media.Clip{}, media.Metadata{}, ctx.Err()
	}
	if len(frames) == 0 {
		cause := readErr
		if cause == nil {
			cause = waitErr
		}
		if cause == nil {
			cause = errors.New("no frames decoded")
		}
		return media.Clip{}, media.Metadata{}, unreadable(path, withStderr(cause, &stderr))
	}
	if readErr != nil || waitErr != nil {
		s.logger.Warn().
			Str("path", path).
			Int("frames", len(frames)).
			AnErr("read_error", readErr).
			AnErr("wait_error", waitErr).
			Msg("decode ended early, keeping frames read so far")
	}

	return media.Clip{Path: path, Frames: frames}, info.Metadata, nil
}

func decodeArgs(path string) []string {
	stream := ffmpeg.Input(path).Output("pipe:", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"map":     "0:v:0",
	})
	return append([]string{"-hide_banner", "-nostdin", "-loglevel", "error"}, stream.GetArgs()...)
}

// readFrames splits a packed RGBA stream into frames of m's size.
// A trailing partial frame is dropped.
func readFrames(r io.Reader, m media.Metadata) ([]*image.RGBA, error) {
	size := int(m.FrameBytes())
	if size <= 0 {
		return nil, errors.Errorf("invalid frame size %s", m)
	}

	var frames []*image.RGBA
	for {
		buf := make([]byte, size)
		_, err := io.ReadFull(r, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return frames, nil
		}
		if err != nil {
			return frames, errors.Wrap(err, "read frame")
		}
		frames = append(frames, &image.RGBA{
			Pix:    buf,
			Stride: m.Width * 4,
			Rect:   image.Rect(0, 0, m.Width, m.Height),
		})
	}
}

func unreadable(path string, cause error) error {
	return errors.Wrapf(media.ErrSourceUnreadable, "%s: %v", path, cause)
}

func withStderr(err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return err
	}
	return errors.Wrapf(err, "ffmpeg: %s", msg)
}
