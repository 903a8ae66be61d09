package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/ivlev/clips2video/internal/config"
	"github.com/ivlev/clips2video/internal/director"
	"github.com/ivlev/clips2video/internal/effects"
	"github.com/ivlev/clips2video/internal/logging"
	"github.com/ivlev/clips2video/internal/media"
	"github.com/ivlev/clips2video/internal/renderer"
	"github.com/ivlev/clips2video/internal/source"
	"github.com/ivlev/clips2video/internal/video"
)

// Project is the state of one run: configuration plus the collaborators
// that decode, blend and encode. Build one per run.
type Project struct {
	Config     *config.Config
	Source     source.Source
	Encoder    video.Encoder
	Transition effects.Transition
	Logger     zerolog.Logger
	// Progress receives the progress bar; nil means stderr.
	Progress io.Writer
}

// Result summarizes a finished run.
type Result struct {
	Clips    int
	Skipped  int
	Input    media.Metadata
	Output   media.Metadata
	Frames   int
	Plan     *director.Plan
	Duration time.Duration
}

type encoderChecker interface {
	Check(ctx context.Context, opts video.Options) error
}

func NewProject(cfg *config.Config, src source.Source, enc video.Encoder, tr effects.Transition, logger zerolog.Logger) *Project {
	return &Project{
		Config:     cfg,
		Source:     src,
		Encoder:    enc,
		Transition: tr,
		Logger:     logging.WithComponent(logger, "engine"),
	}
}

// Run lists the input directory, loads every clip, plans the composition and
// streams it into the encoder. Failures detectable up front (no usable
// input, mismatched clip sizes) are reported before the output is opened.
func (p *Project) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := p.Config

	policy, err := director.ParseTrimPolicy(cfg.EdgeTrim)
	if err != nil {
		return nil, err
	}
	opts := video.Options{FourCC: cfg.FourCC, Quality: cfg.Quality}

	paths, err := source.ListDir(cfg.InputDir, cfg.Extension)
	if err != nil {
		return nil, err
	}
	p.Logger.Info().Str("dir", cfg.InputDir).Int("files", len(paths)).Msg("listed input directory")

	if chk, ok := p.Encoder.(encoderChecker); ok && !cfg.DryRun {
		if err := chk.Check(ctx, opts); err != nil {
			return nil, fmt.Errorf("encoder check: %w", err)
		}
	}

	if prober, ok := p.Source.(source.Prober); ok && cfg.Preflight && len(paths) > 0 {
		if _, err := Preflight(ctx, prober, paths, cfg.Workers, p.Logger); err != nil {
			return nil, err
		}
	}

	loader := source.NewLoader(p.Source, p.Logger)
	clips, meta, err := loader.LoadAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	if err := ValidateClips(clips, meta); err != nil {
		return nil, err
	}

	lengths := make([]int, len(clips))
	names := make([]string, len(clips))
	for i, c := range clips {
		lengths[i] = c.Len()
		names[i] = c.Path
	}

	plan, err := p.plan(lengths, meta, policy)
	if err != nil {
		return nil, err
	}
	plan.Clips = names

	out := meta.Scaled(cfg.ResizeFactor)
	res := &Result{
		Clips:   len(clips),
		Skipped: len(paths) - len(clips),
		Input:   meta,
		Output:  out,
		Plan:    plan,
	}

	p.Logger.Info().
		Int("clips", len(clips)).
		Str("input", meta.String()).
		Str("output", out.String()).
		Int("transition_frames", plan.TransitionFrames).
		Int("total_frames", plan.TotalFrames()).
		Msg("composition planned")

	if cfg.PlanOutput != "" {
		if err := director.WritePlan(plan, cfg.PlanOutput); err != nil {
			return nil, fmt.Errorf("write plan: %w", err)
		}
		p.Logger.Info().Str("path", cfg.PlanOutput).Msg("plan written")
	}
	if cfg.DryRun {
		res.Duration = time.Since(start)
		return res, nil
	}
	if !out.Valid() {
		return nil, fmt.Errorf("resize factor %v gives empty output %s", cfg.ResizeFactor, out)
	}

	composer := &Composer{Clips: clips, Plan: plan, Transition: p.Transition}
	if out != meta {
		composer.Scaler = renderer.NewScaler(out.Width, out.Height)
	}

	written, err := p.write(ctx, composer, out, opts)
	res.Frames = written
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	p.Logger.Info().
		Str("output", cfg.OutputVideo).
		Int("frames", written).
		Dur("took", res.Duration).
		Msg("video written")
	return res, nil
}

// plan builds the composition for the loaded clips, or replays the plan file
// named by PlanInput after checking it against them.
func (p *Project) plan(lengths []int, meta media.Metadata, policy director.TrimPolicy) (*director.Plan, error) {
	cfg := p.Config
	if cfg.PlanInput == "" {
		plan := director.Build(lengths, cfg.TransitionLength(meta.FPS), policy)
		return plan, plan.Validate()
	}

	plan, err := director.ReadPlan(cfg.PlanInput)
	if err != nil {
		return nil, err
	}
	if err := plan.Match(lengths); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.PlanInput, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.PlanInput, err)
	}
	for i, seg := range plan.Segments {
		if seg.Kind == director.SegmentTransition && seg.Frames > config.MaxTransitionFrames {
			return nil, fmt.Errorf("%s: segment %d: transition of %d frames exceeds %d", cfg.PlanInput, i, seg.Frames, config.MaxTransitionFrames)
		}
	}
	p.Logger.Info().Str("path", cfg.PlanInput).Int("segments", len(plan.Segments)).Msg("replaying plan")
	return plan, nil
}

func (p *Project) write(ctx context.Context, composer *Composer, out media.Metadata, opts video.Options) (written int, err error) {
	w, err := p.Encoder.Open(ctx, p.Config.OutputVideo, out, opts)
	if err != nil {
		return 0, fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	bar := p.progressBar(composer.Plan.TotalFrames())
	defer bar.Finish()

	for frame, ferr := range composer.Frames(ctx) {
		if ferr != nil {
			return written, ferr
		}
		if err := w.WriteFrame(frame); err != nil {
			return written, err
		}
		written++
		_ = bar.Add(1)
	}
	return written, nil
}

func (p *Project) progressBar(total int) *progressbar.ProgressBar {
	out := p.Progress
	if out == nil {
		out = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Writing frames"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetVisibility(p.Config.ShowProgress),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
}
