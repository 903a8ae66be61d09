package effects

import (
	"fmt"
	"image"
	"math"

	"github.com/ivlev/clips2video/internal/media"
)

// Transition produces the frames bridging the last frame of one clip and
// the first frame of the next.
type Transition interface {
	Synthesize(out, in *image.RGBA, length int) ([]*image.RGBA, error)
}

// CrossDissolve is a linear per-pixel blend from the outgoing frame to the
// incoming one. Frame j of n carries alpha = j/n of the incoming frame, so
// the sequence starts on the outgoing frame and never fully reaches the
// incoming one.
type CrossDissolve struct{}

func (CrossDissolve) Synthesize(out, in *image.RGBA, length int) ([]*image.RGBA, error) {
	if length <= 0 {
		return nil, nil
	}
	if !media.SameSize(out, in) {
		return nil, fmt.Errorf("%w: transition between %v and %v", media.ErrDimensionMismatch, out.Bounds(), in.Bounds())
	}

	frames := make([]*image.RGBA, length)
	for j := 0; j < length; j++ {
		dst := image.NewRGBA(out.Bounds())
		if err := Blend(dst, out, in, float64(j)/float64(length)); err != nil {
			return nil, err
		}
		frames[j] = dst
	}
	return frames, nil
}

// Blend writes alpha*in + (1-alpha)*out into dst, rounding and clamping every
// color sample. The alpha channel of dst is set opaque.
func Blend(dst, out, in *image.RGBA, alpha float64) error {
	b := out.Bounds()
	if in.Bounds() != b || dst.Bounds() != b {
		return fmt.Errorf("%w: blend of %v, %v into %v", media.ErrDimensionMismatch, b, in.Bounds(), dst.Bounds())
	}
	beta := 1 - alpha

	w := b.Dx() * 4
	for y := b.Min.Y; y < b.Max.Y; y++ {
		o := out.Pix[out.PixOffset(b.Min.X, y):][:w]
		n := in.Pix[in.PixOffset(b.Min.X, y):][:w]
		d := dst.Pix[dst.PixOffset(b.Min.X, y):][:w]
		for i := 0; i < w; i += 4 {
			d[i+0] = mix(o[i+0], n[i+0], alpha, beta)
			d[i+1] = mix(o[i+1], n[i+1], alpha, beta)
			d[i+2] = mix(o[i+2], n[i+2], alpha, beta)
			d[i+3] = 0xff
		}
	}
	return nil
}

func mix(out, in uint8, alpha, beta float64) uint8 {
	return clamp8(math.Round(alpha*float64(in) + beta*float64(out)))
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
