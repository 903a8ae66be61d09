package director

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(k, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestBuildFrameCount(t *testing.T) {
	tests := []struct {
		name       string
		clips, k   int
		transition int
	}{
		{"three clips of ten at 30fps/0.5", 3, 10, 15},
		{"single clip", 1, 10, 15},
		{"no transitions", 4, 12, 0},
		{"fixed sixty", 2, 100, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Build(repeat(tt.k, tt.clips), tt.transition, TrimAll)
			want := tt.clips*(tt.k-2) + (tt.clips-1)*tt.transition
			assert.Equal(t, want, plan.TotalFrames())
			assert.NoError(t, plan.Validate())
		})
	}
}

func TestBuildEndToEndCount(t *testing.T) {
	plan := Build([]int{10, 10, 10}, 15, TrimAll)
	assert.Equal(t, 54, plan.TotalFrames())
	assert.Equal(t, 2, plan.Transitions())
}

func TestBuildOrder(t *testing.T) {
	plan := Build([]int{5, 6}, 3, TrimAll)

	require.Len(t, plan.Segments, 3)
	assert.Equal(t, Segment{Kind: SegmentBody, Clip: 0, From: 1, To: 4, Frames: 3}, plan.Segments[0])
	assert.Equal(t, Segment{Kind: SegmentTransition, Clip: 1, Frames: 3}, plan.Segments[1])
	assert.Equal(t, Segment{Kind: SegmentBody, Clip: 1, From: 1, To: 5, Frames: 4}, plan.Segments[2])
}

func TestBuildInteriorKeepsRunEdges(t *testing.T) {
	plan := Build([]int{10, 10, 10}, 15, TrimInterior)

	first := plan.Segments[0]
	last := plan.Segments[len(plan.Segments)-1]
	assert.Equal(t, 0, first.From)
	assert.Equal(t, 10, last.To)
	assert.Equal(t, 3*8+2+2*15, plan.TotalFrames())

	single := Build([]int{10}, 15, TrimInterior)
	assert.Equal(t, 10, single.TotalFrames())
}

func TestBuildShortClips(t *testing.T) {
	plan := Build([]int{2, 1, 5}, 4, TrimAll)

	// bodies of the two short clips vanish, both transitions remain
	assert.Equal(t, 2, plan.Transitions())
	assert.Equal(t, 2*4+3, plan.TotalFrames())
	assert.NoError(t, plan.Validate())
}

func TestParseTrimPolicy(t *testing.T) {
	for in, want := range map[string]TrimPolicy{"": TrimAll, "all": TrimAll, "Interior": TrimInterior} {
		got, err := ParseTrimPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTrimPolicy("outer")
	assert.Error(t, err)
}

func TestValidateRejectsBadPlans(t *testing.T) {
	plan := Build([]int{5, 5}, 2, TrimAll)
	plan.Segments[0].To = 9
	assert.Error(t, plan.Validate())

	plan = Build([]int{5, 5}, 2, TrimAll)
	plan.Segments[1].Clip = 0
	assert.Error(t, plan.Validate())
}

func TestPlanWriteRead(t *testing.T) {
	plan := Build([]int{10, 12}, 15, TrimInterior)
	plan.Clips = []string{"a.mp4", "b.mp4"}

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, WritePlan(plan, path))

	read, err := ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, plan, read)
}

func TestReadPlanErrorsNamePath(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.yaml")
	_, err := ReadPlan(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("segments: [oops"), 0644))
	_, err = ReadPlan(garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), garbage)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("clip_frames: [3]\n"), 0644))
	_, err = ReadPlan(empty)
	assert.ErrorContains(t, err, "missing version")
}

func TestWritePlanErrorNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "plan.yaml")
	err := WritePlan(Build([]int{4}, 0, TrimAll), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestPlanMatch(t *testing.T) {
	plan := Build([]int{10, 10, 10}, 15, TrimAll)

	assert.NoError(t, plan.Match([]int{10, 10, 10}))
	assert.ErrorIs(t, plan.Match([]int{10, 10}), ErrPlanMismatch)
	assert.ErrorIs(t, plan.Match([]int{10, 9, 10}), ErrPlanMismatch)
}
