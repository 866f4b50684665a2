package changelog

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

func snapshotAt(at time.Time) models.OrderEvent {
	return models.OrderEvent{
		ID:         uuid.New(),
		FromStatus: enums.OrderStatusPreparing,
		ToStatus:   enums.OrderStatusPreparing,
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

func paymentAt(at time.Time, to bool) models.OrderEvent {
	from := !to
	return models.OrderEvent{
		ID:              uuid.New(),
		FromStatus:      enums.OrderStatusPreparing,
		ToStatus:        enums.OrderStatusPreparing,
		IsPaymentChange: true,
		PaymentFrom:     &from,
		PaymentTo:       &to,
		CreatedAt:       at,
	}
}

func noteAt(at time.Time, text string) models.OrderNote {
	return models.OrderNote{
		ID:        uuid.New(),
		Note:      text,
		CreatedAt: at,
	}
}

func TestAggregateMergesAllSources(t *testing.T) {
	t.Parallel()

	scannedAt := t0.Add(3 * time.Hour)
	entries := Aggregate(Input{
		Events: []models.OrderEvent{
			snapshotAt(t0),
			transitionAt(t0.Add(time.Hour), enums.OrderStatusPreparing, enums.OrderStatusInProduction),
			paymentAt(t0.Add(2*time.Hour), true),
		},
		Notes: []models.OrderNote{
			noteAt(t0.Add(30*time.Minute), "Leder ausgewählt"),
		},
		CreatedAt: t0,
		ScannedAt: &scannedAt,
	})

	require.Len(t, entries, 5)

	// strictly descending by timestamp
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Timestamp.After(entries[i].Timestamp))
	}

	byType := map[enums.ChangeLogEntryType]int{}
	for _, entry := range entries {
		byType[entry.Type]++
	}
	assert.Equal(t, 1, byType[enums.ChangeLogOrderCreation])
	assert.Equal(t, 1, byType[enums.ChangeLogStatusChange])
	assert.Equal(t, 1, byType[enums.ChangeLogPaymentChange])
	assert.Equal(t, 1, byType[enums.ChangeLogScanEvent])
	assert.Equal(t, 1, byType[enums.ChangeLogOther])
}

func TestAggregateStatusChangeNoteRendersBothStatuses(t *testing.T) {
	t.Parallel()

	entries := Aggregate(Input{
		Events: []models.OrderEvent{
			snapshotAt(t0),
			transitionAt(t0.Add(time.Hour), enums.OrderStatusPacking, enums.OrderStatusShipped),
		},
		CreatedAt: t0,
	})

	require.Len(t, entries, 2)
	assert.Equal(t, enums.ChangeLogStatusChange, entries[0].Type)
	assert.Contains(t, entries[0].Note, "packing")
	assert.Contains(t, entries[0].Note, "shipped")
}

func TestAggregateSynthesizesCreationWithoutSnapshot(t *testing.T) {
	t.Parallel()

	entries := Aggregate(Input{CreatedAt: t0})
	require.Len(t, entries, 1)
	assert.Equal(t, enums.ChangeLogOrderCreation, entries[0].Type)
	assert.Equal(t, t0, entries[0].Timestamp)
}

func TestAggregateDropsNoteNearStatusChange(t *testing.T) {
	t.Parallel()

	transitionTime := t0.Add(time.Hour)
	entries := Aggregate(Input{
		Events: []models.OrderEvent{
			snapshotAt(t0),
			transitionAt(transitionTime, enums.OrderStatusPreparing, enums.OrderStatusPacking),
		},
		Notes: []models.OrderNote{
			// the same change logged again through the note table
			noteAt(transitionTime.Add(400*time.Millisecond), "Verpackung gestartet"),
			noteAt(transitionTime.Add(5*time.Second), "Karton beschriftet"),
		},
		CreatedAt: t0,
	})

	var noteTexts []string
	for _, entry := range entries {
		if entry.Type == enums.ChangeLogOther {
			noteTexts = append(noteTexts, entry.Note)
		}
	}
	assert.Equal(t, []string{"Karton beschriftet"}, noteTexts)
}

func TestAggregateExcludesStatusMarkerNotes(t *testing.T) {
	t.Parallel()

	entries := Aggregate(Input{
		Events: []models.OrderEvent{snapshotAt(t0)},
		Notes: []models.OrderNote{
			noteAt(t0.Add(time.Hour), "Status: preparing → packing"),
			noteAt(t0.Add(2*time.Hour), "preparing -> packing"),
		},
		CreatedAt: t0,
	})

	for _, entry := range entries {
		assert.NotEqual(t, enums.ChangeLogOther, entry.Type)
	}
}

func TestAggregateClassifiesApprovalNotes(t *testing.T) {
	t.Parallel()

	entries := Aggregate(Input{
		Events: []models.OrderEvent{snapshotAt(t0)},
		Notes: []models.OrderNote{
			noteAt(t0.Add(time.Hour), "Entwurf vom Kunden freigegeben"),
		},
		CreatedAt: t0,
	})

	require.Len(t, entries, 2)
	assert.Equal(t, enums.ChangeLogApprovalChange, entries[0].Type)
}

func TestClassifyNote(t *testing.T) {
	t.Parallel()

	entryType, keep := ClassifyNote("Modell genehmigt")
	assert.True(t, keep)
	assert.Equal(t, enums.ChangeLogApprovalChange, entryType)

	_, keep = ClassifyNote("Status: packing → shipped")
	assert.False(t, keep)

	entryType, keep = ClassifyNote("Absatz nachgearbeitet")
	assert.True(t, keep)
	assert.Equal(t, enums.ChangeLogOther, entryType)
}

func TestExtractActor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Maria Weber", ExtractActor("Maria Weber geändert die Bestellung"))
	assert.Equal(t, "Hans", ExtractActor("Hans erstellt den Entwurf"))
	assert.Equal(t, "Anna Müller", ExtractActor("Notiz: Anna Müller changed delivery date"))
	assert.Equal(t, SystemActor, ExtractActor("automatisch aktualisiert"))
}
