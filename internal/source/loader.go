package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ivlev/clips2video/internal/logging"
	"github.com/ivlev/clips2video/internal/media"
)

// Loader decodes a list of inputs, skipping the ones that cannot be read.
type Loader struct {
	Source Source
	Logger zerolog.Logger
}

func NewLoader(src Source, logger zerolog.Logger) *Loader {
	return &Loader{
		Source: src,
		Logger: logging.WithComponent(logger, "loader"),
	}
}

// LoadAll loads paths in order. The returned metadata is that of the first
// clip that loaded; later clips are not checked against it here.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]media.Clip, media.Metadata, error) {
	var (
		clips []media.Clip
		meta  media.Metadata
	)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, media.Metadata{}, err
		}

		clip, m, err := l.Source.Load(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, media.Metadata{}, ctx.Err()
			}
			l.Logger.Warn().
				Err(err).
				Str("path", path).
				Bool("unreadable", errors.Is(err, media.ErrSourceUnreadable)).
				Msg("skipping clip")
			continue
		}
		if clip.Len() == 0 {
			l.Logger.Warn().Str("path", path).Msg("skipping clip without frames")
			continue
		}

		if len(clips) == 0 {
			meta = m
		}
		clips = append(clips, clip)

		l.Logger.Info().
			Str("path", path).
			Int("frames", clip.Len()).
			Str("stream", m.String()).
			Msgf("loaded %d/%d", i+1, len(paths))
	}

	if len(clips) == 0 {
		return nil, media.Metadata{}, fmt.Errorf("%w: none of %d inputs could be decoded", media.ErrNoUsableInput, len(paths))
	}
	return clips, meta, nil
}
