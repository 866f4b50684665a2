package types

import (
	"encoding/json"
	"sort"
)

// SizeEntry is one row of a size chart. Two persisted encodings exist and
// both must keep working: the legacy bare number (length in millimeters)
// and the structured record {"length": n, "quantity": n}. Decoding
// normalizes either shape into this canonical form; encoding reproduces
// the original shape unless the entry was migrated by a write.
type SizeEntry struct {
	Length   *float64
	Quantity *int

	bare bool            // decoded from the legacy bare-number encoding
	raw  json.RawMessage // preserved verbatim for shapes we cannot interpret
}

// LegacyEntry builds an entry in the bare-number encoding.
func LegacyEntry(lengthMM float64) SizeEntry {
	l := lengthMM
	return SizeEntry{Length: &l, bare: true}
}

// StructuredEntry builds an entry in the structured encoding.
func StructuredEntry(lengthMM float64, quantity int) SizeEntry {
	l := lengthMM
	q := quantity
	return SizeEntry{Length: &l, Quantity: &q}
}

type structuredSizeEntry struct {
	Length   *float64 `json:"length"`
	Quantity *int     `json:"quantity,omitempty"`
}

func (e *SizeEntry) UnmarshalJSON(data []byte) error {
	*e = SizeEntry{}

	var length float64
	if err := json.Unmarshal(data, &length); err == nil {
		e.Length = &length
		e.bare = true
		return nil
	}

	var structured structuredSizeEntry
	if err := json.Unmarshal(data, &structured); err == nil {
		e.Length = structured.Length
		e.Quantity = structured.Quantity
		return nil
	}

	// Unknown shape: keep the payload so a write-back never destroys it.
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e SizeEntry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	if e.bare && e.Quantity == nil && e.Length != nil {
		return json.Marshal(*e.Length)
	}
	return json.Marshal(structuredSizeEntry{Length: e.Length, Quantity: e.Quantity})
}

// HasLength reports whether the entry carries a usable numeric length.
func (e SizeEntry) HasLength() bool {
	return e.Length != nil
}

// LengthMM returns the entry length, or zero when none is present.
func (e SizeEntry) LengthMM() float64 {
	if e.Length == nil {
		return 0
	}
	return *e.Length
}

// Qty returns the stocked quantity, treating an absent quantity as zero.
func (e SizeEntry) Qty() int {
	if e.Quantity == nil {
		return 0
	}
	return *e.Quantity
}

// SetQuantity records a new quantity, migrating a legacy bare-number
// entry to the structured encoding. Only the touched entry migrates.
func (e *SizeEntry) SetQuantity(quantity int) {
	q := quantity
	e.Quantity = &q
	e.bare = false
	e.raw = nil
}

// SizeChart maps size labels (e.g. "38") to their entries. Stored as
// jsonb on stores (stock) and products (recommendation table).
type SizeChart map[string]SizeEntry

// SortedLabels returns the chart's labels in lexicographic order, giving
// callers a stable iteration order over the underlying map.
func (c SizeChart) SortedLabels() []string {
	labels := make([]string, 0, len(c))
	for label := range c {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
