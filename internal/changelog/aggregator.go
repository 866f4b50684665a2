package changelog

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mfeldkamp/passform-backend/pkg/db/models"
	"github.com/mfeldkamp/passform-backend/pkg/enums"
)

// dedupWindow drops a free-text note that mirrors a status change logged
// within one second through the event table.
const dedupWindow = time.Second

// Entry is one row of the unified order change log.
type Entry struct {
	Type       enums.ChangeLogEntryType `json:"type"`
	Timestamp  time.Time                `json:"timestamp"`
	Note       string                   `json:"note,omitempty"`
	Actor      string                   `json:"actor"`
	PartnerID  *uuid.UUID               `json:"partner_id,omitempty"`
	EmployeeID *uuid.UUID               `json:"employee_id,omitempty"`
}

// Input carries everything the aggregator merges for one order.
type Input struct {
	Events    []models.OrderEvent
	Notes     []models.OrderNote
	CreatedAt time.Time
	ScannedAt *time.Time
}

// Aggregate merges the event log, the scan timestamp and the free-text
// notes into one feed sorted descending by timestamp. Every real
// transition and payment event appears exactly once; the snapshot event
// becomes the creation entry.
func Aggregate(input Input) []Entry {
	entries := make([]Entry, 0, len(input.Events)+len(input.Notes)+2)
	statusTimes := make([]time.Time, 0, len(input.Events))
	sawCreation := false

	for _, event := range input.Events {
		switch {
		case event.IsPaymentChange:
			entries = append(entries, Entry{
				Type:       enums.ChangeLogPaymentChange,
				Timestamp:  event.CreatedAt,
				Note:       paymentNote(event),
				Actor:      SystemActor,
				PartnerID:  event.PartnerID,
				EmployeeID: event.EmployeeID,
			})
		case event.IsSnapshot():
			if sawCreation {
				continue
			}
			sawCreation = true
			entries = append(entries, Entry{
				Type:       enums.ChangeLogOrderCreation,
				Timestamp:  event.CreatedAt,
				Note:       fmt.Sprintf("Bestellung erstellt, Status %s", event.ToStatus),
				Actor:      SystemActor,
				PartnerID:  event.PartnerID,
				EmployeeID: event.EmployeeID,
			})
		default:
			statusTimes = append(statusTimes, event.CreatedAt)
			entries = append(entries, Entry{
				Type:       enums.ChangeLogStatusChange,
				Timestamp:  event.CreatedAt,
				Note:       fmt.Sprintf("Status: %s → %s", event.FromStatus, event.ToStatus),
				Actor:      SystemActor,
				PartnerID:  event.PartnerID,
				EmployeeID: event.EmployeeID,
			})
		}
	}

	if !sawCreation {
		entries = append(entries, Entry{
			Type:      enums.ChangeLogOrderCreation,
			Timestamp: input.CreatedAt,
			Note:      "Bestellung erstellt",
			Actor:     SystemActor,
		})
	}

	if input.ScannedAt != nil {
		entries = append(entries, Entry{
			Type:      enums.ChangeLogScanEvent,
			Timestamp: *input.ScannedAt,
			Note:      "Bestellung im Lager gescannt",
			Actor:     SystemActor,
		})
	}

	for _, note := range input.Notes {
		entryType, keep := ClassifyNote(note.Note)
		if !keep {
			continue
		}
		if nearStatusChange(note.CreatedAt, statusTimes) {
			continue
		}
		entries = append(entries, Entry{
			Type:      entryType,
			Timestamp: note.CreatedAt,
			Note:      note.Note,
			Actor:     ExtractActor(note.Note),
			PartnerID: note.PartnerID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries
}

func nearStatusChange(at time.Time, statusTimes []time.Time) bool {
	for _, statusTime := range statusTimes {
		delta := at.Sub(statusTime)
		if delta < 0 {
			delta = -delta
		}
		if delta <= dedupWindow {
			return true
		}
	}
	return false
}

func paymentNote(event models.OrderEvent) string {
	if event.PaymentTo != nil && *event.PaymentTo {
		return "Zahlung eingegangen"
	}
	return "Zahlung zurückgesetzt"
}
