package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/clips2video/internal/logging"
	"github.com/ivlev/clips2video/internal/media"
	"github.com/ivlev/clips2video/internal/system"
)

// Options tune the output encode.
type Options struct {
	// FourCC picks the codec; see EncoderForFourCC.
	FourCC string
	// Quality is -q:v for mpeg4/mjpeg/xvid and -crf for libx264; 0 keeps
	// the encoder default.
	Quality int
}

// Encoder opens output streams.
type Encoder interface {
	Open(ctx context.Context, path string, meta media.Metadata, opts Options) (Writer, error)
}

// Writer accepts frames in output order.
type Writer interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

type codec struct {
	encoder string
	tag     string
	pixFmt  string
}

var fourccCodecs = map[string]codec{
	"mp4v": {encoder: "mpeg4", tag: "mp4v"},
	"fmp4": {encoder: "mpeg4", tag: "FMP4"},
	"xvid": {encoder: "libxvid", tag: "XVID"},
	"divx": {encoder: "mpeg4", tag: "DIVX"},
	"mjpg": {encoder: "mjpeg", pixFmt: "yuvj420p"},
	"avc1": {encoder: "libx264", tag: "avc1"},
	"h264": {encoder: "libx264"},
	"x264": {encoder: "libx264"},
}

// EncoderForFourCC maps a four-character code to an ffmpeg encoder and
// codec tag (tag may be empty).
func EncoderForFourCC(fourcc string) (encoder, tag string, err error) {
	c, ok := fourccCodecs[strings.ToLower(fourcc)]
	if !ok {
		return "", "", fmt.Errorf("unsupported fourcc %q", fourcc)
	}
	return c.encoder, c.tag, nil
}

// FFmpegEncoder encodes frames by piping raw RGBA into an ffmpeg process.
type FFmpegEncoder struct {
	FFmpegPath string
	Logger     zerolog.Logger
}

func NewFFmpegEncoder(ffmpegPath string, logger zerolog.Logger) *FFmpegEncoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegEncoder{
		FFmpegPath: ffmpegPath,
		Logger:     logging.WithComponent(logger, "encoder"),
	}
}

// Check verifies that ffmpeg is installed and provides the encoder opts
// asks for, so a run can fail before any clip is decoded.
func (e *FFmpegEncoder) Check(ctx context.Context, opts Options) error {
	bin, err := system.FindBinary(e.FFmpegPath)
	if err != nil {
		return err
	}
	enc, _, err := EncoderForFourCC(opts.FourCC)
	if err != nil {
		return err
	}
	ok, err := system.HasEncoder(ctx, bin, enc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ffmpeg at %s has no %s encoder (fourcc %s)", bin, enc, opts.FourCC)
	}
	return nil
}

func (e *FFmpegEncoder) Open(ctx context.Context, path string, meta media.Metadata, opts Options) (Writer, error) {
	if !meta.Valid() {
		return nil, fmt.Errorf("invalid output stream %s", meta)
	}
	args, err := buildFFmpegArgs(path, meta, opts)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	w := &ffmpegWriter{cmd: cmd, meta: meta, path: path}
	cmd.Stdout = &w.log
	cmd.Stderr = &w.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdin pipe")
	}
	w.stdin = stdin

	e.Logger.Debug().Strs("args", args).Msg("starting encoder")

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "ffmpeg start")
	}
	return w, nil
}

func buildFFmpegArgs(path string, meta media.Metadata, opts Options) ([]string, error) {
	enc, tag, err := EncoderForFourCC(opts.FourCC)
	if err != nil {
		return nil, err
	}
	pixFmt := fourccCodecs[strings.ToLower(opts.FourCC)].pixFmt
	if pixFmt == "" {
		pixFmt = "yuv420p"
	}

	out := ffmpeg.KwArgs{
		"c:v":     enc,
		"pix_fmt": pixFmt,
	}
	if tag != "" {
		out["tag:v"] = tag
	}
	if opts.Quality > 0 {
		switch enc {
		case "libx264":
			out["crf"] = strconv.Itoa(opts.Quality)
		default:
			out["q:v"] = strconv.Itoa(opts.Quality)
		}
	}

	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"framerate": strconv.Itoa(meta.FPS),
	}).Output(path, out).OverWriteOutput()

	return append([]string{"-hide_banner", "-loglevel", "error"}, stream.GetArgs()...), nil
}

type ffmpegWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	meta   media.Metadata
	path   string
	log    bytes.Buffer
	frames int

	closeOnce sync.Once
	closeErr  error
}

func (w *ffmpegWriter) WriteFrame(img *image.RGBA) error {
	if err := media.CheckSize(img, w.meta); err != nil {
		return fmt.Errorf("frame %d: %w", w.frames, err)
	}
	if err := writeRawRGBA(w.stdin, img); err != nil {
		return errors.Wrapf(err, "write frame %d to %s", w.frames, w.path)
	}
	w.frames++
	return nil
}

// Close finalizes the container. It is safe to call more than once.
func (w *ffmpegWriter) Close() error {
	w.closeOnce.Do(func() {
		stdinErr := w.stdin.Close()
		if err := w.cmd.Wait(); err != nil {
			w.closeErr = errors.Wrapf(err, "ffmpeg finalize %s (%d frames): %s", w.path, w.frames, strings.TrimSpace(w.log.String()))
			return
		}
		if stdinErr != nil {
			w.closeErr = errors.Wrap(stdinErr, "close ffmpeg stdin")
		}
	})
	return w.closeErr
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix[:bounds.Dx()*bounds.Dy()*4])
	return err
}
