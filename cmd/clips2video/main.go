package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/clips2video/internal/config"
	"github.com/ivlev/clips2video/internal/effects"
	"github.com/ivlev/clips2video/internal/engine"
	"github.com/ivlev/clips2video/internal/logging"
	"github.com/ivlev/clips2video/internal/media"
	"github.com/ivlev/clips2video/internal/source"
	"github.com/ivlev/clips2video/internal/video"
)

var (
	cfgFile string
	verbose bool

	output           string
	resize           float64
	transitionRatio  float64
	transitionFrames int
	edgeTrim         string
	extension        string
	fourcc           string
	quality          int
	ffmpegPath       string
	planOutput       string
	planInput        string
	dryRun           bool
	preflight        bool
	workers          int
	progress         bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "clips2video [input dir]",
	Short: "Join a directory of clips into one video with cross-dissolves",
	Long: "clips2video decodes every clip in a directory in name order, drops the first and\n" +
		"last frame of each, and joins them with linear cross-dissolve transitions.",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg.InputDir = args[0]
		applyFlags(cmd, cfg)
		if cfg.Verbose && !verbose {
			logging.Init(true)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, runID := logging.WithRun(log.Logger)
		logger.Debug().Interface("config", cfg).Msg("configuration")

		tr, err := effects.NewTransition(cfg.TransitionType)
		if err != nil {
			return err
		}

		project := engine.NewProject(
			cfg,
			source.NewFFmpegSource(cfg.FFmpegPath, logger),
			video.NewFFmpegEncoder(cfg.FFmpegPath, logger),
			tr,
			logger,
		)

		res, err := project.Run(cmd.Context())
		if err != nil {
			log.Error().Err(err).Str("run", runID).Msg("run failed")
			return err
		}

		if cfg.DryRun {
			fmt.Printf("%d clips, %s, %d frames planned\n", res.Clips, res.Output, res.Plan.TotalFrames())
			return nil
		}
		fmt.Printf("%s: %d frames from %d clips (%d skipped) in %s\n",
			cfg.OutputVideo, res.Frames, res.Clips, res.Skipped, res.Duration.Round(time.Millisecond))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFile
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := rootCmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output video path")
	f.Float64Var(&resize, "resize", 1, "scale factor applied to every output frame")
	f.Float64Var(&transitionRatio, "transition-ratio", 0.5, "transition length as a fraction of the frame rate")
	f.IntVar(&transitionFrames, "transition-frames", 0, "fixed transition length in frames (overrides --transition-ratio)")
	f.StringVar(&edgeTrim, "edge-trim", "all", "which clip edges lose a frame: all, interior")
	f.StringVar(&extension, "ext", "", "only use files with this extension")
	f.StringVar(&fourcc, "fourcc", "mp4v", "output codec four-character code")
	f.IntVar(&quality, "quality", 0, "encoder quality (0 keeps the encoder default)")
	f.StringVar(&ffmpegPath, "ffmpeg", "ffmpeg", "ffmpeg binary")
	f.StringVar(&planOutput, "plan", "", "write the composition plan as YAML to this path")
	f.StringVar(&planInput, "plan-input", "", "replay a plan written by --plan instead of building one")
	f.BoolVar(&dryRun, "dry-run", false, "load and plan without writing video")
	f.BoolVar(&preflight, "preflight", true, "estimate memory use before decoding")
	f.IntVar(&workers, "workers", 4, "concurrent probes during preflight")
	f.BoolVar(&progress, "progress", true, "show a progress bar")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputVideo = output
	}
	if f.Changed("resize") {
		cfg.ResizeFactor = resize
	}
	if f.Changed("transition-ratio") {
		cfg.TransitionRatio = transitionRatio
	}
	if f.Changed("transition-frames") {
		cfg.TransitionFrames = transitionFrames
	}
	if f.Changed("edge-trim") {
		cfg.EdgeTrim = edgeTrim
	}
	if f.Changed("ext") {
		cfg.Extension = extension
	}
	if f.Changed("fourcc") {
		cfg.FourCC = fourcc
	}
	if f.Changed("quality") {
		cfg.Quality = quality
	}
	if f.Changed("ffmpeg") {
		cfg.FFmpegPath = ffmpegPath
	}
	if f.Changed("plan") {
		cfg.PlanOutput = planOutput
	}
	if f.Changed("plan-input") {
		cfg.PlanInput = planInput
	}
	if f.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if f.Changed("preflight") {
		cfg.Preflight = preflight
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("progress") {
		cfg.ShowProgress = progress
	}
}

func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, media.ErrNoUsableInput), errors.Is(err, media.ErrDirectoryUnreadable):
		return 2
	default:
		return 1
	}
}
