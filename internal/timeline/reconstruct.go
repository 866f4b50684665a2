package timeline

import (
	"time"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// Segment is one contiguous interval during which an order held a
// status. End is nil while the order is still in that status; Duration
// is then measured against the now passed to Reconstruct and must never
// be persisted.
type Segment struct {
	Status   enums.OrderStatus `json:"status"`
	Start    time.Time         `json:"start"`
	End      *time.Time        `json:"end,omitempty"`
	Duration time.Duration     `json:"-"`
	Ongoing  bool              `json:"ongoing"`
}

// MergedSegment combines every segment whose status belongs to a
// caller-defined group. Duration sums all matching segments even across
// non-contiguous occurrences; Start is the first entry into the group
// and End the last exit, nil while the order currently sits inside it.
type MergedSegment struct {
	Statuses []enums.OrderStatus `json:"statuses"`
	Start    time.Time           `json:"start"`
	End      *time.Time          `json:"end,omitempty"`
	Duration time.Duration       `json:"-"`
	Ongoing  bool                `json:"ongoing"`
}

// Reconstruct rebuilds the per-status segments of one order from its
// event log. Events must be in chronological order. Payment events are
// ignored; the leading snapshot event anchors the walk at createdAt. A
// log missing its snapshot is degraded data, not an error: a snapshot is
// synthesized from createdAt and the first known status.
func Reconstruct(events []models.OrderEvent, createdAt time.Time, currentStatus enums.OrderStatus, now time.Time) []Segment {
	transitions := make([]models.OrderEvent, 0, len(events))
	var snapshot *models.OrderEvent
	for i := range events {
		event := events[i]
		if event.IsPaymentChange {
			continue
		}
		if event.IsSnapshot() {
			if snapshot == nil {
				snapshot = &event
			}
			continue
		}
		transitions = append(transitions, event)
	}

	cursorStatus := firstKnownStatus(snapshot, transitions, currentStatus)
	cursorTime := createdAt

	segments := make([]Segment, 0, len(transitions)+1)
	for _, transition := range transitions {
		end := transition.CreatedAt
		segments = append(segments, Segment{
			Status:   cursorStatus,
			Start:    cursorTime,
			End:      &end,
			Duration: end.Sub(cursorTime),
		})
		cursorStatus = transition.ToStatus
		cursorTime = transition.CreatedAt
	}

	segments = append(segments, Segment{
		Status:   cursorStatus,
		Start:    cursorTime,
		Duration: now.Sub(cursorTime),
		Ongoing:  true,
	})
	return segments
}

func firstKnownStatus(snapshot *models.OrderEvent, transitions []models.OrderEvent, currentStatus enums.OrderStatus) enums.OrderStatus {
	if snapshot != nil {
		return snapshot.ToStatus
	}
	if len(transitions) > 0 {
		return transitions[0].FromStatus
	}
	return currentStatus
}

// Merge collapses the segments whose status is in group into one
// combined bucket. Returns nil when no segment matches.
func Merge(segments []Segment, group []enums.OrderStatus) *MergedSegment {
	inGroup := make(map[enums.OrderStatus]bool, len(group))
	for _, status := range group {
		inGroup[status] = true
	}

	var merged *MergedSegment
	for _, segment := range segments {
		if !inGroup[segment.Status] {
			continue
		}
		if merged == nil {
			merged = &MergedSegment{
				Statuses: group,
				Start:    segment.Start,
			}
		}
		merged.Duration += segment.Duration
		merged.End = segment.End
		merged.Ongoing = segment.Ongoing
	}
	return merged
}
