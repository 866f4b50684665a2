package timeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func snapshotAt(at time.Time, status enums.OrderStatus) models.OrderEvent {
	return models.OrderEvent{
		ID:         uuid.New(),
		FromStatus: status,
		ToStatus:   status,
		CreatedAt:  at,
	}
}

func transitionAt(at time.Time, from, to enums.OrderStatus) models.OrderEvent {
	return models.OrderEvent{
		ID:         uuid.New(),
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  at,
	}
}

func paymentAt(at time.Time, status enums.OrderStatus) models.OrderEvent {
	paidFrom, paidTo := false, true
	return models.OrderEvent{
		ID:              uuid.New(),
		FromStatus:      status,
		ToStatus:        status,
		IsPaymentChange: true,
		PaymentFrom:     &paidFrom,
		PaymentTo:       &paidTo,
		CreatedAt:       at,
	}
}

func TestReconstructTwoSegments(t *testing.T) {
	t.Parallel()

	// created at T0 in preparing, moved to in_production at T0+2h,
	// observed at T0+5h
	events := []models.OrderEvent{
		snapshotAt(t0, enums.OrderStatusPreparing),
		transitionAt(t0.Add(2*time.Hour), enums.OrderStatusPreparing, enums.OrderStatusInProduction),
	}
	now := t0.Add(5 * time.Hour)

	segments := Reconstruct(events, t0, enums.OrderStatusInProduction, now)
	require.Len(t, segments, 2)

	assert.Equal(t, enums.OrderStatusPreparing, segments[0].Status)
	assert.Equal(t, t0, segments[0].Start)
	require.NotNil(t, segments[0].End)
	assert.Equal(t, t0.Add(2*time.Hour), *segments[0].End)
	assert.Equal(t, 2*time.Hour, segments[0].Duration)
	assert.False(t, segments[0].Ongoing)
	assert.Equal(t, "2h", FormatDuration(segments[0].Duration))

	assert.Equal(t, enums.OrderStatusInProduction, segments[1].Status)
	assert.Nil(t, segments[1].End)
	assert.Equal(t, 3*time.Hour, segments[1].Duration)
	assert.True(t, segments[1].Ongoing)
	assert.Equal(t, "3h", FormatDuration(segments[1].Duration))
}

func TestReconstructIgnoresPaymentEvents(t *testing.T) {
	t.Parallel()

	events := []models.OrderEvent{
		snapshotAt(t0, enums.OrderStatusPreparing),
		paymentAt(t0.Add(30*time.Minute), enums.OrderStatusPreparing),
		transitionAt(t0.Add(time.Hour), enums.OrderStatusPreparing, enums.OrderStatusPacking),
	}

	segments := Reconstruct(events, t0, enums.OrderStatusPacking, t0.Add(2*time.Hour))
	require.Len(t, segments, 2)
	assert.Equal(t, enums.OrderStatusPreparing, segments[0].Status)
	assert.Equal(t, enums.OrderStatusPacking, segments[1].Status)
}

func TestReconstructCoversFullSpan(t *testing.T) {
	t.Parallel()

	events := []models.OrderEvent{
		snapshotAt(t0, enums.OrderStatusPreparing),
		transitionAt(t0.Add(90*time.Minute), enums.OrderStatusPreparing, enums.OrderStatusInProduction),
		transitionAt(t0.Add(26*time.Hour), enums.OrderStatusInProduction, enums.OrderStatusPacking),
		transitionAt(t0.Add(27*time.Hour), enums.OrderStatusPacking, enums.OrderStatusInProduction),
		transitionAt(t0.Add(45*time.Hour), enums.OrderStatusInProduction, enums.OrderStatusReadyForPickup),
	}
	now := t0.Add(50 * time.Hour)

	segments := Reconstruct(events, t0, enums.OrderStatusReadyForPickup, now)
	require.Len(t, segments, 5)

	// no gaps, no overlaps: the segment durations cover exactly now - createdAt
	var total time.Duration
	for i, segment := range segments {
		total += segment.Duration
		if i > 0 {
			require.NotNil(t, segments[i-1].End)
			assert.Equal(t, *segments[i-1].End, segment.Start)
		}
	}
	assert.Equal(t, now.Sub(t0), total)
}

func TestReconstructSynthesizesMissingSnapshot(t *testing.T) {
	t.Parallel()

	// degraded log: no snapshot event, only a real transition
	events := []models.OrderEvent{
		transitionAt(t0.Add(time.Hour), enums.OrderStatusPreparing, enums.OrderStatusShipped),
	}

	segments := Reconstruct(events, t0, enums.OrderStatusShipped, t0.Add(2*time.Hour))
	require.Len(t, segments, 2)
	assert.Equal(t, enums.OrderStatusPreparing, segments[0].Status)
	assert.Equal(t, t0, segments[0].Start)
	assert.Equal(t, enums.OrderStatusShipped, segments[1].Status)
}

func TestReconstructEmptyLogFallsBackToCurrentStatus(t *testing.T) {
	t.Parallel()

	segments := Reconstruct(nil, t0, enums.OrderStatusPreparing, t0.Add(time.Hour))
	require.Len(t, segments, 1)
	assert.Equal(t, enums.OrderStatusPreparing, segments[0].Status)
	assert.True(t, segments[0].Ongoing)
	assert.Equal(t, time.Hour, segments[0].Duration)
}

func TestMergeSumsNonContiguousOccurrences(t *testing.T) {
	t.Parallel()

	events := []models.OrderEvent{
		snapshotAt(t0, enums.OrderStatusPreparing),
		transitionAt(t0.Add(1*time.Hour), enums.OrderStatusPreparing, enums.OrderStatusInProduction),
		transitionAt(t0.Add(3*time.Hour), enums.OrderStatusInProduction, enums.OrderStatusPacking),
		transitionAt(t0.Add(4*time.Hour), enums.OrderStatusPacking, enums.OrderStatusInProduction),
		transitionAt(t0.Add(6*time.Hour), enums.OrderStatusInProduction, enums.OrderStatusShipped),
	}
	now := t0.Add(8 * time.Hour)
	segments := Reconstruct(events, t0, enums.OrderStatusShipped, now)

	group := []enums.OrderStatus{enums.OrderStatusInProduction, enums.OrderStatusPacking}
	merged := Merge(segments, group)
	require.NotNil(t, merged)

	// in_production 1h-3h and 4h-6h, packing 3h-4h: 5h total
	assert.Equal(t, 5*time.Hour, merged.Duration)
	assert.Equal(t, t0.Add(1*time.Hour), merged.Start)
	require.NotNil(t, merged.End)
	assert.Equal(t, t0.Add(6*time.Hour), *merged.End)
	assert.False(t, merged.Ongoing)

	// the merged duration equals the independent sum over matching segments
	var independent time.Duration
	for _, segment := range segments {
		for _, status := range group {
			if segment.Status == status {
				independent += segment.Duration
			}
		}
	}
	assert.Equal(t, independent, merged.Duration)
}

func TestMergeOngoingGroup(t *testing.T) {
	t.Parallel()

	events := []models.OrderEvent{
		snapshotAt(t0, enums.OrderStatusPreparing),
		transitionAt(t0.Add(time.Hour), enums.OrderStatusPreparing, enums.OrderStatusInProduction),
	}
	segments := Reconstruct(events, t0, enums.OrderStatusInProduction, t0.Add(3*time.Hour))

	merged := Merge(segments, []enums.OrderStatus{enums.OrderStatusInProduction})
	require.NotNil(t, merged)
	assert.Nil(t, merged.End)
	assert.True(t, merged.Ongoing)
	assert.Equal(t, 2*time.Hour, merged.Duration)
}

func TestMergeNoMatch(t *testing.T) {
	t.Parallel()

	segments := Reconstruct([]models.OrderEvent{snapshotAt(t0, enums.OrderStatusPreparing)}, t0, enums.OrderStatusPreparing, t0.Add(time.Hour))
	assert.Nil(t, Merge(segments, []enums.OrderStatus{enums.OrderStatusShipped}))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{15 * time.Minute, "15m"},
		{15*time.Minute + 30*time.Second, "15m"},
		{3 * time.Hour, "3h"},
		{3*time.Hour + 15*time.Minute, "3h 15m"},
		{26 * time.Hour, "1T 2h"},
		{24 * time.Hour, "1T"},
		{49*time.Hour + 5*time.Minute, "2T 1h 5m"},
		{24*time.Hour + 5*time.Minute, "1T 0h 5m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), "format %s", tc.in)
	}
}
