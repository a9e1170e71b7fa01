package core

import (
	"math"
	"os"
)

const bytesPerMB = 1 << 20

// FileSizeMB reports the combined size of path and any sidecar files in
// megabytes, rounded to two decimals. Probe failures contribute 0 rather
// than an error: the size metric is advisory and must never abort an
// operation.
func FileSizeMB(path string, sidecars ...string) float64 {
	var total int64
	if info, err := os.Stat(path); err == nil {
		total += info.Size()
	}
	for _, s := range sidecars {
		if info, err := os.Stat(s); err == nil {
			total += info.Size()
		}
	}
	return RoundMB(total)
}

// RoundMB converts a byte count to megabytes rounded to two decimals.
func RoundMB(bytes int64) float64 {
	mb := float64(bytes) / float64(bytesPerMB)
	return math.Round(mb*100) / 100
}
