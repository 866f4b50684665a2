package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldkamp/passform-backend/pkg/types"
)

func TestMatchNearestSizePicksSmallestDifference(t *testing.T) {
	t.Parallel()

	chart := types.SizeChart{
		"37": types.LegacyEntry(235),
		"38": types.StructuredEntry(240, 5),
		"39": types.LegacyEntry(247),
	}

	label, ok := MatchNearestSize(243, chart)
	require.True(t, ok)
	assert.Equal(t, "38", label)

	label, ok = MatchNearestSize(246, chart)
	require.True(t, ok)
	assert.Equal(t, "39", label)
}

func TestMatchNearestSizeMixedEncodings(t *testing.T) {
	t.Parallel()

	chart := types.SizeChart{
		"40": types.LegacyEntry(253),
		"41": types.StructuredEntry(260, 2),
	}

	label, ok := MatchNearestSize(254, chart)
	require.True(t, ok)
	assert.Equal(t, "40", label)
}

func TestMatchNearestSizeTieBreakIsDeterministic(t *testing.T) {
	t.Parallel()

	// 240 sits exactly between 238 and 242; the first label in stable
	// iteration order must win, every time.
	chart := types.SizeChart{
		"38": types.LegacyEntry(238),
		"39": types.LegacyEntry(242),
	}

	first, ok := MatchNearestSize(240, chart)
	require.True(t, ok)
	assert.Equal(t, "38", first)

	for i := 0; i < 50; i++ {
		again, ok := MatchNearestSize(240, chart)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestMatchNearestSizeEmptyChart(t *testing.T) {
	t.Parallel()

	_, ok := MatchNearestSize(240, types.SizeChart{})
	assert.False(t, ok)

	_, ok = MatchNearestSize(240, nil)
	assert.False(t, ok)
}

func TestMatchNearestSizeSkipsEntriesWithoutLength(t *testing.T) {
	t.Parallel()

	var broken types.SizeEntry
	require.NoError(t, broken.UnmarshalJSON([]byte(`"not a length"`)))

	chart := types.SizeChart{
		"37": broken,
		"38": types.LegacyEntry(241),
	}

	label, ok := MatchNearestSize(240, chart)
	require.True(t, ok)
	assert.Equal(t, "38", label)

	onlyBroken := types.SizeChart{"37": broken}
	_, ok = MatchNearestSize(240, onlyBroken)
	assert.False(t, ok)
}

func TestTargetLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(245), TargetLength(240, 238, DefaultFitBufferMM))
	assert.Equal(t, float64(245), TargetLength(238, 240, DefaultFitBufferMM))
	assert.Equal(t, float64(240), TargetLength(240, 240, 0))
}
