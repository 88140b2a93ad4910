package enums

import "fmt"

// AdvanceOrderStatus enumerates backorder procurement states.
type AdvanceOrderStatus string

const (
	AdvanceOrderStatusPending   AdvanceOrderStatus = "pending"
	AdvanceOrderStatusConfirmed AdvanceOrderStatus = "confirmed"
	AdvanceOrderStatusOrdered   AdvanceOrderStatus = "ordered"
	AdvanceOrderStatusReceived  AdvanceOrderStatus = "received"
	AdvanceOrderStatusReady     AdvanceOrderStatus = "ready"
	AdvanceOrderStatusCancelled AdvanceOrderStatus = "cancelled"
)

var validAdvanceOrderStatuses = []AdvanceOrderStatus{
	AdvanceOrderStatusPending,
	AdvanceOrderStatusConfirmed,
	AdvanceOrderStatusOrdered,
	AdvanceOrderStatusReceived,
	AdvanceOrderStatusReady,
	AdvanceOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (a AdvanceOrderStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdvanceOrderStatus.
func (a AdvanceOrderStatus) IsValid() bool {
	for _, candidate := range validAdvanceOrderStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdvanceOrderStatus converts raw input into a AdvanceOrderStatus.
func ParseAdvanceOrderStatus(value string) (AdvanceOrderStatus, error) {
	for _, candidate := range validAdvanceOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid advance order status %q", value)
}

// IsTerminal reports whether procurement has finished or been abandoned.
func (a AdvanceOrderStatus) IsTerminal() bool {
	return a == AdvanceOrderStatusReady || a == AdvanceOrderStatusCancelled
}

// Label returns a human readable form used in notifications.
func (a AdvanceOrderStatus) Label() string {
	return statusLabel(string(a))
}
