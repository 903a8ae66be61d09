package engine

import (
	"context"
	"fmt"
	"image"
	"iter"

	"github.com/ivlev/clips2video/internal/director"
	"github.com/ivlev/clips2video/internal/effects"
	"github.com/ivlev/clips2video/internal/media"
	"github.com/ivlev/clips2video/internal/renderer"
	"github.com/ivlev/clips2video/internal/system"
)

// Composer turns loaded clips and a plan into the output frame sequence.
type Composer struct {
	Clips      []media.Clip
	Plan       *director.Plan
	Transition effects.Transition
	// Scaler resizes every emitted frame; nil keeps the input size.
	Scaler *renderer.Scaler
}

// Frames yields the output frames in order. A yielded frame is only valid
// until the next iteration step: resized frames live in pooled buffers.
func (c *Composer) Frames(ctx context.Context) iter.Seq2[*image.RGBA, error] {
	return func(yield func(*image.RGBA, error) bool) {
		emit := c.emitter(yield)

		for i, seg := range c.Plan.Segments {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			switch seg.Kind {
			case director.SegmentBody:
				clip, err := c.clip(seg.Clip)
				if err != nil {
					yield(nil, fmt.Errorf("segment %d: %w", i, err))
					return
				}
				if seg.From < 0 || seg.To > clip.Len() || seg.From > seg.To {
					yield(nil, fmt.Errorf("segment %d: range [%d,%d) outside clip %d of %d frames", i, seg.From, seg.To, seg.Clip, clip.Len()))
					return
				}
				for _, f := range clip.Frames[seg.From:seg.To] {
					if !emit(f) {
						return
					}
				}

			case director.SegmentTransition:
				frames, err := c.transition(seg)
				if err != nil {
					yield(nil, fmt.Errorf("segment %d: %w", i, err))
					return
				}
				for _, f := range frames {
					if !emit(f) {
						return
					}
				}

			default:
				yield(nil, fmt.Errorf("segment %d: unknown kind %q", i, seg.Kind))
				return
			}
		}
	}
}

func (c *Composer) emitter(yield func(*image.RGBA, error) bool) func(*image.RGBA) bool {
	if c.Scaler == nil {
		return func(f *image.RGBA) bool { return yield(f, nil) }
	}
	return func(f *image.RGBA) bool {
		dst := system.GetImage(c.Scaler.Bounds())
		c.Scaler.ScaleInto(dst, f)
		ok := yield(dst, nil)
		system.PutImage(dst)
		return ok
	}
}

func (c *Composer) clip(i int) (media.Clip, error) {
	if i < 0 || i >= len(c.Clips) {
		return media.Clip{}, fmt.Errorf("clip %d out of range (%d clips)", i, len(c.Clips))
	}
	return c.Clips[i], nil
}

func (c *Composer) transition(seg director.Segment) ([]*image.RGBA, error) {
	prev, err := c.clip(seg.Clip - 1)
	if err != nil {
		return nil, err
	}
	next, err := c.clip(seg.Clip)
	if err != nil {
		return nil, err
	}
	if prev.Len() == 0 || next.Len() == 0 {
		return nil, fmt.Errorf("transition into clip %d needs frames on both sides", seg.Clip)
	}
	return c.Transition.Synthesize(prev.Last(), next.First(), seg.Frames)
}

// ValidateClips checks every frame of every clip against meta.
func ValidateClips(clips []media.Clip, meta media.Metadata) error {
	for _, clip := range clips {
		for j, f := range clip.Frames {
			if err := media.CheckSize(f, meta); err != nil {
				return fmt.Errorf("%s frame %d: %w", clip.Path, j, err)
			}
		}
	}
	return nil
}
