package renderer

import (
	"image"

	"golang.org/x/image/draw"
)

// Scaler resizes frames to a fixed output size with Catmull-Rom (bicubic)
// interpolation.
type Scaler struct {
	Width, Height int
	Interpolator  draw.Interpolator
}

// NewScaler creates a bicubic scaler targeting width x height.
func NewScaler(width, height int) *Scaler {
	return &Scaler{Width: width, Height: height, Interpolator: draw.CatmullRom}
}

// Bounds returns the output rectangle.
func (s *Scaler) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// ScaleInto resizes src into dst, which must have the scaler's bounds.
func (s *Scaler) ScaleInto(dst *image.RGBA, src image.Image) {
	s.Interpolator.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// Scale returns a newly allocated resized copy of src.
func (s *Scaler) Scale(src image.Image) *image.RGBA {
	dst := image.NewRGBA(s.Bounds())
	s.ScaleInto(dst, src)
	return dst
}
