package system

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

// FindBinary resolves name (ffmpeg, ffprobe or an explicit path) on PATH.
func FindBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return path, nil
}

// ProbeBinary returns the ffprobe that ships with ffmpegPath: the sibling
// file when ffmpegPath names a location, plain "ffprobe" otherwise.
func ProbeBinary(ffmpegPath string) string {
	dir, base := filepath.Split(ffmpegPath)
	if dir == "" || !strings.Contains(base, "ffmpeg") {
		return "ffprobe"
	}
	return filepath.Join(dir, strings.Replace(base, "ffmpeg", "ffprobe", 1))
}

// HasEncoder reports whether the ffmpeg binary lists encoder among its encoders.
func HasEncoder(ctx context.Context, ffmpegPath, encoder string) (bool, error) {
	out, err := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return false, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	return listsEncoder(string(out), encoder), nil
}

// listsEncoder scans `ffmpeg -encoders` output, whose rows look like
// " V....D mpeg4                MPEG-4 part 2".
func listsEncoder(output, encoder string) bool {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}

// AvailableMemory returns the memory the OS reports as available for new allocations.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("read memory stats: %w", err)
	}
	return vm.Available, nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
