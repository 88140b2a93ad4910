package enums

import "fmt"

// NotificationEvent names the template a dispatched message was rendered from.
type NotificationEvent string

const (
	NotificationEventOrderPlaced                  NotificationEvent = "order_placed"
	NotificationEventOrderReceived                NotificationEvent = "order_received"
	NotificationEventOrderVerificationCode        NotificationEvent = "order_verification_code"
	NotificationEventOrderStatusUpdate            NotificationEvent = "order_status_update"
	NotificationEventAdvanceOrderPlaced           NotificationEvent = "advance_order_placed"
	NotificationEventAdvanceOrderStatusUpdate     NotificationEvent = "advance_order_status_update"
	NotificationEventPrescriptionVerificationCode NotificationEvent = "prescription_verification_code"
	NotificationEventMedicineReminder             NotificationEvent = "medicine_reminder"
)

var validNotificationEvents = []NotificationEvent{
	NotificationEventOrderPlaced,
	NotificationEventOrderReceived,
	NotificationEventOrderVerificationCode,
	NotificationEventOrderStatusUpdate,
	NotificationEventAdvanceOrderPlaced,
	NotificationEventAdvanceOrderStatusUpdate,
	NotificationEventPrescriptionVerificationCode,
	NotificationEventMedicineReminder,
}

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationEvent.
func (n NotificationEvent) IsValid() bool {
	for _, candidate := range validNotificationEvents {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationEvent converts raw input into a NotificationEvent.
func ParseNotificationEvent(value string) (NotificationEvent, error) {
	for _, candidate := range validNotificationEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification event %q", value)
}
