package enums

import "fmt"

// PrescriptionStatus tracks an uploaded prescription through OCR and verification.
type PrescriptionStatus string

const (
	PrescriptionStatusUploaded   PrescriptionStatus = "uploaded"
	PrescriptionStatusProcessing PrescriptionStatus = "processing"
	PrescriptionStatusProcessed  PrescriptionStatus = "processed"
	PrescriptionStatusVerified   PrescriptionStatus = "verified"
	PrescriptionStatusFailed     PrescriptionStatus = "failed"
)

var validPrescriptionStatuses = []PrescriptionStatus{
	PrescriptionStatusUploaded,
	PrescriptionStatusProcessing,
	PrescriptionStatusProcessed,
	PrescriptionStatusVerified,
	PrescriptionStatusFailed,
}

// String implements fmt.Stringer.
func (p PrescriptionStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PrescriptionStatus.
func (p PrescriptionStatus) IsValid() bool {
	for _, candidate := range validPrescriptionStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePrescriptionStatus converts raw input into a PrescriptionStatus.
func ParsePrescriptionStatus(value string) (PrescriptionStatus, error) {
	for _, candidate := range validPrescriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prescription status %q", value)
}

var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionStatusUploaded:   {PrescriptionStatusProcessing, PrescriptionStatusFailed},
	PrescriptionStatusProcessing: {PrescriptionStatusProcessed, PrescriptionStatusFailed},
	PrescriptionStatusProcessed:  {PrescriptionStatusVerified, PrescriptionStatusFailed},
}

// CanTransitionTo reports whether moving to next keeps the forward-only lifecycle.
// Failed and verified are terminal.
func (p PrescriptionStatus) CanTransitionTo(next PrescriptionStatus) bool {
	for _, allowed := range prescriptionTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}
