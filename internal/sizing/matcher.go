package sizing

import (
	"math"

	"github.com/mfeldkamp/passform-backend/pkg/types"
)

// DefaultFitBufferMM is the fit allowance added on top of the larger
// foot measurement when deriving the target length.
const DefaultFitBufferMM = 5

// TargetLength derives the length to match against a size chart: the
// larger of the two foot measurements plus the fit buffer. Deriving the
// target is a caller concern, the matcher itself only compares lengths.
func TargetLength(leftMM, rightMM float64, bufferMM int) float64 {
	longer := leftMM
	if rightMM > longer {
		longer = rightMM
	}
	return longer + float64(bufferMM)
}

// MatchNearestSize returns the chart label whose length is closest to
// targetMM. Entries without a numeric length are skipped. Ties resolve
// to the first candidate in the chart's stable iteration order
// (lexicographic label order), so repeated calls always agree. The
// second return is false when the chart holds no usable candidate;
// callers must handle that explicitly, it is not an error.
func MatchNearestSize(targetMM float64, chart types.SizeChart) (string, bool) {
	best := ""
	bestDiff := math.Inf(1)

	for _, label := range chart.SortedLabels() {
		entry := chart[label]
		if !entry.HasLength() {
			continue
		}
		diff := math.Abs(entry.LengthMM() - targetMM)
		if diff < bestDiff {
			best = label
			bestDiff = diff
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}
