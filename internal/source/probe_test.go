package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/clips2video/internal/media"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "audio", "r_frame_rate": "0/0"},
			{"codec_type": "video", "width": 320, "height": 240, "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001", "nb_frames": "300"}
		],
		"format": {"duration": "10.010000"}
	}`)

	info, err := parseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, media.Metadata{Width: 320, Height: 240, FPS: 29}, info.Metadata, "fps is truncated")
	assert.Equal(t, 300, info.Frames)
}

func TestParseProbeFallbacks(t *testing.T) {
	data := []byte(`{
		"streams": [{"codec_type": "video", "width": 64, "height": 48, "r_frame_rate": "0/0", "avg_frame_rate": "25/1"}],
		"format": {"duration": "2.0"}
	}`)

	info, err := parseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, 25, info.Metadata.FPS)
	assert.Equal(t, 50, info.Frames, "frame count estimated from duration")
}

func TestParseProbeRotation(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		width  int
		height int
	}{
		{"display matrix -90", `"side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90}]`, 1080, 1920},
		{"display matrix 90", `"side_data_list": [{"side_data_type": "Display Matrix", "rotation": 90}]`, 1080, 1920},
		{"display matrix 180", `"side_data_list": [{"side_data_type": "Display Matrix", "rotation": 180}]`, 1920, 1080},
		{"rotate tag 270", `"tags": {"rotate": "270"}`, 1080, 1920},
		{"rotate tag 0", `"tags": {"rotate": "0"}`, 1920, 1080},
		{"no rotation", `"tags": {}`, 1920, 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"streams": [{"codec_type": "video", "width": 1920, "height": 1080, "r_frame_rate": "30/1", ` + tt.stream + `}]}`)

			info, err := parseProbe(data)
			require.NoError(t, err)
			assert.Equal(t, tt.width, info.Metadata.Width)
			assert.Equal(t, tt.height, info.Metadata.Height)
			assert.Equal(t, int64(tt.width*tt.height*4), info.Metadata.FrameBytes())
		})
	}
}

func TestParseProbeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `ffprobe exploded`},
		{"audio only", `{"streams": [{"codec_type": "audio"}]}`},
		{"zero size", `{"streams": [{"codec_type": "video", "width": 0, "height": 0, "r_frame_rate": "30/1"}]}`},
		{"no rate", `{"streams": [{"codec_type": "video", "width": 8, "height": 8, "r_frame_rate": "0/0"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProbe([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"abc", 0},
		{"1/2/3", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseFrameRate(tt.in), 1e-9, tt.in)
	}
}
