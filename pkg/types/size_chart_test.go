package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeEntryDecodesBothEncodings(t *testing.T) {
	t.Parallel()

	var chart SizeChart
	payload := []byte(`{"38": 240, "39": {"length": 247, "quantity": 3}, "40": {"length": 253}}`)
	require.NoError(t, json.Unmarshal(payload, &chart))

	require.True(t, chart["38"].HasLength())
	assert.Equal(t, float64(240), chart["38"].LengthMM())
	assert.Equal(t, 0, chart["38"].Qty())

	assert.Equal(t, float64(247), chart["39"].LengthMM())
	assert.Equal(t, 3, chart["39"].Qty())

	assert.Equal(t, float64(253), chart["40"].LengthMM())
	assert.Equal(t, 0, chart["40"].Qty())
}

func TestSizeEntryRoundTripsOriginalShape(t *testing.T) {
	t.Parallel()

	var chart SizeChart
	require.NoError(t, json.Unmarshal([]byte(`{"38": 240, "39": {"length": 247, "quantity": 3}}`), &chart))

	out, err := json.Marshal(chart)
	require.NoError(t, err)

	var redecoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &redecoded))
	assert.JSONEq(t, `240`, string(redecoded["38"]))
	assert.JSONEq(t, `{"length": 247, "quantity": 3}`, string(redecoded["39"]))
}

func TestSizeEntrySetQuantityMigratesLegacyShape(t *testing.T) {
	t.Parallel()

	var chart SizeChart
	require.NoError(t, json.Unmarshal([]byte(`{"38": 240, "39": 247}`), &chart))

	touched := chart["38"]
	touched.SetQuantity(4)
	chart["38"] = touched

	out, err := json.Marshal(chart)
	require.NoError(t, err)

	var redecoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &redecoded))
	// only the touched entry migrates to the structured shape
	assert.JSONEq(t, `{"length": 240, "quantity": 4}`, string(redecoded["38"]))
	assert.JSONEq(t, `247`, string(redecoded["39"]))
}

func TestSizeEntryPreservesUnknownShapes(t *testing.T) {
	t.Parallel()

	var entry SizeEntry
	require.NoError(t, entry.UnmarshalJSON([]byte(`"kaputt"`)))
	assert.False(t, entry.HasLength())

	out, err := entry.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"kaputt"`, string(out))
}

func TestSizeChartSortedLabels(t *testing.T) {
	t.Parallel()

	chart := SizeChart{
		"40": LegacyEntry(253),
		"38": LegacyEntry(240),
		"39": LegacyEntry(247),
	}
	assert.Equal(t, []string{"38", "39", "40"}, chart.SortedLabels())
}
