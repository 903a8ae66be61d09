package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is picked up from the working directory when no --config is given.
const DefaultFile = "clips2video.yaml"

// MaxTransitionFrames bounds a single dissolve: a minute at 60 fps. Every
// transition frame is held in memory while it is written.
const MaxTransitionFrames = 3600

type Config struct {
	InputDir         string  `yaml:"input_dir"`
	Extension        string  `yaml:"extension"`
	OutputVideo      string  `yaml:"output"`
	ResizeFactor     float64 `yaml:"resize_factor"`
	TransitionType   string  `yaml:"transition"`
	TransitionRatio  float64 `yaml:"transition_ratio"`
	TransitionFrames int     `yaml:"transition_frames"`
	EdgeTrim         string  `yaml:"edge_trim"`
	FourCC           string  `yaml:"fourcc"`
	Quality          int     `yaml:"quality"`
	FFmpegPath       string  `yaml:"ffmpeg_path"`
	PlanOutput       string  `yaml:"plan_output"`
	PlanInput        string  `yaml:"plan_input"`
	DryRun           bool    `yaml:"dry_run"`
	Preflight        bool    `yaml:"preflight"`
	Workers          int     `yaml:"workers"`
	ShowProgress     bool    `yaml:"progress"`
	Verbose          bool    `yaml:"verbose"`
}

func Default() *Config {
	return &Config{
		OutputVideo:     "output.mp4",
		ResizeFactor:    1,
		TransitionType:  "dissolve",
		TransitionRatio: 0.5,
		EdgeTrim:        "all",
		FourCC:          "mp4v",
		FFmpegPath:      "ffmpeg",
		Preflight:       true,
		Workers:         4,
		ShowProgress:    true,
	}
}

// Load reads path over the defaults. An empty path falls back to DefaultFile
// when it exists; a missing DefaultFile is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputVideo == "" && !c.DryRun {
		return fmt.Errorf("output path is required")
	}
	if c.ResizeFactor <= 0 || math.IsNaN(c.ResizeFactor) || math.IsInf(c.ResizeFactor, 0) {
		return fmt.Errorf("resize factor must be positive, got %v", c.ResizeFactor)
	}
	if c.TransitionRatio < 0 || math.IsNaN(c.TransitionRatio) || math.IsInf(c.TransitionRatio, 0) {
		return fmt.Errorf("transition ratio must be a finite non-negative number, got %v", c.TransitionRatio)
	}
	if c.TransitionFrames < 0 || c.TransitionFrames > MaxTransitionFrames {
		return fmt.Errorf("transition frames must be between 0 and %d, got %d", MaxTransitionFrames, c.TransitionFrames)
	}
	if len(c.FourCC) != 4 {
		return fmt.Errorf("fourcc must be four characters, got %q", c.FourCC)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	return nil
}

// TransitionLength returns the number of dissolve frames between two clips,
// at most MaxTransitionFrames. A fixed frame count wins over the ratio.
func (c *Config) TransitionLength(fps int) int {
	if c.TransitionFrames > 0 {
		return min(c.TransitionFrames, MaxTransitionFrames)
	}
	if fps <= 0 || !(c.TransitionRatio > 0) {
		return 0
	}
	n := math.Floor(float64(fps) * c.TransitionRatio)
	if n >= MaxTransitionFrames {
		return MaxTransitionFrames
	}
	return int(n)
}
