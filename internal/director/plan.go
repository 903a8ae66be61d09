// Package director turns clip lengths into the ordered list of segments the
// composer emits: clip bodies with their edges trimmed, separated by
// dissolve transitions.
package director

import (
	"errors"
	"fmt"
	"strings"
)

// TrimPolicy selects which clip edge frames are dropped from bodies.
type TrimPolicy string

const (
	// TrimAll drops the first and last frame of every clip, including the
	// first frame of the run and the last frame of the run.
	TrimAll TrimPolicy = "all"
	// TrimInterior drops only edges that border a transition; the first
	// frame of the run and the last frame of the run are kept.
	TrimInterior TrimPolicy = "interior"
)

// ParseTrimPolicy accepts "all" (also the empty string) and "interior".
func ParseTrimPolicy(s string) (TrimPolicy, error) {
	switch TrimPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case TrimAll, "":
		return TrimAll, nil
	case TrimInterior:
		return TrimInterior, nil
	default:
		return "", fmt.Errorf("unknown edge trim policy %q (want all or interior)", s)
	}
}

type SegmentKind string

const (
	SegmentBody       SegmentKind = "body"
	SegmentTransition SegmentKind = "transition"
)

// Segment is one contiguous run of output frames.
//
// For a body, Clip is the source clip and [From, To) the frame range emitted
// from it. For a transition, Clip is the incoming clip: the dissolve runs
// from the last frame of Clip-1 to the first frame of Clip.
type Segment struct {
	Kind   SegmentKind `yaml:"kind"`
	Clip   int         `yaml:"clip"`
	From   int         `yaml:"from,omitempty"`
	To     int         `yaml:"to,omitempty"`
	Frames int         `yaml:"frames"`
}

// Plan is the full composition, in output order.
type Plan struct {
	Version          string     `yaml:"version"`
	Clips            []string   `yaml:"clips,omitempty"`
	ClipFrames       []int      `yaml:"clip_frames"`
	TransitionFrames int        `yaml:"transition_frames"`
	EdgeTrim         TrimPolicy `yaml:"edge_trim"`
	Segments         []Segment  `yaml:"segments"`
}

// Build lays out clips of the given lengths with a transition of the given
// length between each adjacent pair. Bodies that end up empty are omitted,
// but their clip's edge frames still feed the neighbouring transitions.
func Build(lengths []int, transition int, policy TrimPolicy) *Plan {
	if policy == "" {
		policy = TrimAll
	}
	if transition < 0 {
		transition = 0
	}

	p := &Plan{
		Version:          "1.0",
		ClipFrames:       append([]int(nil), lengths...),
		TransitionFrames: transition,
		EdgeTrim:         policy,
	}

	n := len(lengths)
	for i, k := range lengths {
		if i > 0 && transition > 0 {
			p.Segments = append(p.Segments, Segment{
				Kind:   SegmentTransition,
				Clip:   i,
				Frames: transition,
			})
		}

		from, to := 1, k-1
		if policy == TrimInterior {
			if i == 0 {
				from = 0
			}
			if i == n-1 {
				to = k
			}
		}
		if to <= from {
			continue
		}
		p.Segments = append(p.Segments, Segment{
			Kind:   SegmentBody,
			Clip:   i,
			From:   from,
			To:     to,
			Frames: to - from,
		})
	}

	return p
}

// TotalFrames is the number of frames the plan emits.
func (p *Plan) TotalFrames() int {
	total := 0
	for _, s := range p.Segments {
		total += s.Frames
	}
	return total
}

// Transitions counts transition segments.
func (p *Plan) Transitions() int {
	count := 0
	for _, s := range p.Segments {
		if s.Kind == SegmentTransition {
			count++
		}
	}
	return count
}

// ErrPlanMismatch is returned when a stored plan was made for other clips.
var ErrPlanMismatch = errors.New("plan does not match inputs")

// Match checks the plan's recorded clip lengths against the loaded ones.
func (p *Plan) Match(lengths []int) error {
	if len(p.ClipFrames) != len(lengths) {
		return fmt.Errorf("%w: plan has %d clips, loaded %d", ErrPlanMismatch, len(p.ClipFrames), len(lengths))
	}
	for i, n := range lengths {
		if p.ClipFrames[i] != n {
			return fmt.Errorf("%w: clip %d has %d frames, plan expects %d", ErrPlanMismatch, i, n, p.ClipFrames[i])
		}
	}
	return nil
}

// Validate checks that every segment refers to existing clips and frames.
func (p *Plan) Validate() error {
	for i, s := range p.Segments {
		if s.Clip < 0 || s.Clip >= len(p.ClipFrames) {
			return fmt.Errorf("segment %d: clip %d out of range", i, s.Clip)
		}
		switch s.Kind {
		case SegmentBody:
			if s.From < 0 || s.To > p.ClipFrames[s.Clip] || s.From >= s.To || s.Frames != s.To-s.From {
				return fmt.Errorf("segment %d: bad range [%d,%d) for clip %d of %d frames", i, s.From, s.To, s.Clip, p.ClipFrames[s.Clip])
			}
		case SegmentTransition:
			if s.Clip == 0 {
				return fmt.Errorf("segment %d: transition into the first clip", i)
			}
			if s.Frames <= 0 {
				return fmt.Errorf("segment %d: empty transition", i)
			}
		default:
			return fmt.Errorf("segment %d: unknown kind %q", i, s.Kind)
		}
	}
	return nil
}
