package source

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ivlev/clips2video/internal/media"
)

// ProbeInfo is what ffprobe reports about the first video stream.
type ProbeInfo struct {
	Metadata media.Metadata
	// Frames is the container's frame count estimate; 0 when unknown.
	Frames int
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []sideData `json:"side_data_list"`
	} `json:"streams"`
}

func parseProbe(data []byte) (ProbeInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return ProbeInfo{}, errors.Wrap(err, "parse ffprobe output")
	}

	for _, st := range probe.Streams {
		if st.CodecType != "video" {
			continue
		}

		rate := ParseFrameRate(st.RFrameRate)
		if rate <= 0 {
			rate = ParseFrameRate(st.AvgFrameRate)
		}

		// ffmpeg autorotates on decode, so frames of a stream turned by a
		// quarter come out with width and height swapped.
		width, height := st.Width, st.Height
		if quarterTurn(st.Tags.Rotate, st.SideDataList) {
			width, height = height, width
		}

		info := ProbeInfo{
			Metadata: media.Metadata{
				Width:  width,
				Height: height,
				FPS:    int(rate),
			},
		}
		if !info.Metadata.Valid() {
			return ProbeInfo{}, errors.Errorf("invalid video stream %s", info.Metadata)
		}

		if n, err := strconv.Atoi(st.NbFrames); err == nil && n > 0 {
			info.Frames = n
		} else if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && d > 0 {
			info.Frames = int(d * rate)
		}
		return info, nil
	}

	return ProbeInfo{}, errors.New("no video stream found")
}

type sideData struct {
	Rotation int `json:"rotation"`
}

// quarterTurn reports whether the display matrix (or the older rotate tag)
// turns the stream by 90 or 270 degrees.
func quarterTurn(tag string, sides []sideData) bool {
	rotation := 0
	for _, sd := range sides {
		if sd.Rotation != 0 {
			rotation = sd.Rotation
			break
		}
	}
	if rotation == 0 && tag != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(tag)); err == nil {
			rotation = v
		}
	}
	r := ((rotation % 360) + 360) % 360
	return r == 90 || r == 270
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) == 1 {
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0
		}
		return v
	}
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
