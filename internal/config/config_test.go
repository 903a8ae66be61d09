package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionLength(t *testing.T) {
	tests := []struct {
		name   string
		ratio  float64
		frames int
		fps    int
		want   int
	}{
		{"half second at 30fps", 0.5, 0, 30, 15},
		{"ratio 0.7 floors", 0.7, 0, 30, 21},
		{"ratio 0.7 at 25fps", 0.7, 0, 25, 17},
		{"fixed count ignores fps", 0.5, 60, 24, 60},
		{"zero ratio disables", 0, 0, 30, 0},
		{"unknown fps", 0.5, 0, 0, 0},
		{"huge ratio capped", 1e9, 0, 30, MaxTransitionFrames},
		{"infinite ratio capped", math.Inf(1), 0, 30, MaxTransitionFrames},
		{"huge fixed count capped", 0.5, 1 << 30, 30, MaxTransitionFrames},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.TransitionRatio = tt.ratio
			cfg.TransitionFrames = tt.frames
			assert.Equal(t, tt.want, cfg.TransitionLength(tt.fps))
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("input_dir: ./source\nresize_factor: 4\ntransition_ratio: 0.7\nedge_trim: interior\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./source", cfg.InputDir)
	assert.Equal(t, 4.0, cfg.ResizeFactor)
	assert.Equal(t, 0.7, cfg.TransitionRatio)
	assert.Equal(t, "interior", cfg.EdgeTrim)
	assert.Equal(t, "mp4v", cfg.FourCC, "unset keys keep defaults")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with input", func(c *Config) {}, false},
		{"missing input", func(c *Config) { c.InputDir = "" }, true},
		{"zero resize", func(c *Config) { c.ResizeFactor = 0 }, true},
		{"negative ratio", func(c *Config) { c.TransitionRatio = -0.1 }, true},
		{"negative frames", func(c *Config) { c.TransitionFrames = -1 }, true},
		{"infinite ratio", func(c *Config) { c.TransitionRatio = math.Inf(1) }, true},
		{"nan ratio", func(c *Config) { c.TransitionRatio = math.NaN() }, true},
		{"too many frames", func(c *Config) { c.TransitionFrames = MaxTransitionFrames + 1 }, true},
		{"plan input", func(c *Config) { c.PlanInput = "plan.yaml" }, false},
		{"short fourcc", func(c *Config) { c.FourCC = "mp4" }, true},
		{"dry run needs no output", func(c *Config) { c.OutputVideo = ""; c.DryRun = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.InputDir = "in"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNormalizesExtension(t *testing.T) {
	cfg := Default()
	cfg.InputDir = "in"
	cfg.Extension = "mp4"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".mp4", cfg.Extension)
}
