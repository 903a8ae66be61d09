package engine

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/clips2video/internal/source"
	"github.com/ivlev/clips2video/internal/system"
)

// Estimate is the projected in-memory footprint of a run. Every clip is held
// fully decoded until the output is written.
type Estimate struct {
	Probed    int
	Frames    int
	Bytes     uint64
	Available uint64
}

// Exceeds reports whether the estimate is larger than the available memory.
// Unknown availability never exceeds.
func (e Estimate) Exceeds() bool {
	return e.Available > 0 && e.Bytes > e.Available
}

// Preflight probes every path concurrently and warns when decoding them all
// would not fit in available memory. Paths that fail to probe are ignored
// here; the loader reports them. Only a cancelled context is an error.
func Preflight(ctx context.Context, prober source.Prober, paths []string, workers int, logger zerolog.Logger) (Estimate, error) {
	infos := make([]source.ProbeInfo, len(paths))
	ok := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			info, err := prober.Probe(gctx, path)
			if err != nil {
				return gctx.Err()
			}
			infos[i], ok[i] = info, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Estimate{}, err
	}

	var est Estimate
	for i, info := range infos {
		if !ok[i] {
			continue
		}
		est.Probed++
		est.Frames += info.Frames
		est.Bytes += uint64(info.Frames) * uint64(info.Metadata.FrameBytes())
	}

	avail, err := system.AvailableMemory()
	if err != nil {
		logger.Debug().Err(err).Msg("available memory unknown")
	}
	est.Available = avail

	ev := logger.Info()
	if est.Exceeds() {
		ev = logger.Warn()
	}
	ev.Int("probed", est.Probed).
		Int("frames", est.Frames).
		Str("needed", system.FormatBytes(est.Bytes)).
		Str("available", system.FormatBytes(est.Available)).
		Msg("memory preflight")

	return est, nil
}
