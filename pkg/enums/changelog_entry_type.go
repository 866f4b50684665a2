package enums

// ChangeLogEntryType classifies entries in the aggregated order change log.
type ChangeLogEntryType string

const (
	ChangeLogOrderCreation  ChangeLogEntryType = "order_creation"
	ChangeLogStatusChange   ChangeLogEntryType = "status_change"
	ChangeLogPaymentChange  ChangeLogEntryType = "payment_change"
	ChangeLogScanEvent      ChangeLogEntryType = "scan_event"
	ChangeLogApprovalChange ChangeLogEntryType = "approval_change"
	ChangeLogOther          ChangeLogEntryType = "other"
)

// String implements fmt.Stringer.
func (t ChangeLogEntryType) String() string {
	return string(t)
}
