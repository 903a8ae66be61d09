package system

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagePoolReturnsRequestedBounds(t *testing.T) {
	p := NewImagePool()
	r := image.Rect(0, 0, 8, 6)

	img := p.Get(r)
	assert.Equal(t, r, img.Bounds())
	assert.Len(t, img.Pix, 8*6*4)

	p.Put(img)
	again := p.Get(r)
	assert.Equal(t, r, again.Bounds())
}

func TestImagePoolIgnoresForeignImages(t *testing.T) {
	p := NewImagePool()
	assert.NotPanics(t, func() {
		p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
		p.Put(nil)
	})
}
