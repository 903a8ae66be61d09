// Package media holds the value types shared by every stage of the
// clip-joining pipeline: decoded clips, stream metadata and the error
// taxonomy used across package boundaries.
package media

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrSourceUnreadable marks a single input that could not be decoded.
	// Callers skip the clip and continue.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrNoUsableInput is returned when not a single clip could be loaded.
	ErrNoUsableInput = errors.New("no usable input clips")
	// ErrDimensionMismatch is returned when two frames that must share a
	// size do not.
	ErrDimensionMismatch = errors.New("frame dimension mismatch")
	// ErrDirectoryUnreadable is returned when the input directory cannot be listed.
	ErrDirectoryUnreadable = errors.New("directory unreadable")
)

// Metadata describes a video stream.
type Metadata struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

// Valid reports whether all fields are positive.
func (m Metadata) Valid() bool {
	return m.Width > 0 && m.Height > 0 && m.FPS > 0
}

// Size returns the frame size as a rectangle anchored at the origin.
func (m Metadata) Size() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Scaled returns the metadata of the stream after resizing every frame by factor.
func (m Metadata) Scaled(factor float64) Metadata {
	if factor == 1 {
		return m
	}
	return Metadata{
		Width:  int(math.Round(float64(m.Width) * factor)),
		Height: int(math.Round(float64(m.Height) * factor)),
		FPS:    m.FPS,
	}
}

// FrameBytes is the size of one RGBA frame in memory.
func (m Metadata) FrameBytes() int64 {
	return int64(m.Width) * int64(m.Height) * 4
}

func (m Metadata) String() string {
	return fmt.Sprintf("%dx%d@%d", m.Width, m.Height, m.FPS)
}

// Clip is the full decoded frame sequence of one input video.
// Frames are never modified after loading.
type Clip struct {
	Path   string
	Frames []*image.RGBA
}

// Len returns the number of frames.
func (c Clip) Len() int {
	return len(c.Frames)
}

// First returns the first frame, or nil for an empty clip.
func (c Clip) First() *image.RGBA {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[0]
}

// Last returns the last frame, or nil for an empty clip.
func (c Clip) Last() *image.RGBA {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// NewFrame allocates an opaque black frame.
func NewFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// SameSize reports whether two frames cover identical bounds.
func SameSize(a, b image.Image) bool {
	return a.Bounds() == b.Bounds()
}

// CheckSize returns ErrDimensionMismatch when img does not match m.
func CheckSize(img image.Image, m Metadata) error {
	b := img.Bounds()
	if b.Dx() != m.Width || b.Dy() != m.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), m.Width, m.Height)
	}
	return nil
}
