package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 9))

	tests := []struct {
		w, h int
	}{
		{64, 36},
		{8, 4},
		{16, 9},
	}

	for _, tt := range tests {
		dst := NewScaler(tt.w, tt.h).Scale(src)
		assert.Equal(t, image.Rect(0, 0, tt.w, tt.h), dst.Bounds())
	}
}

func TestScalePreservesSolidColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c := color.RGBA{R: 200, G: 40, B: 90, A: 255}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGBA(x, y, c)
		}
	}

	dst := NewScaler(40, 40).Scale(src)

	for _, p := range []image.Point{{0, 0}, {20, 20}, {39, 39}} {
		assert.Equal(t, c, dst.RGBAAt(p.X, p.Y), "pixel %v", p)
	}
}
