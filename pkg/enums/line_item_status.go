package enums

import "fmt"

// LineItemStatus tracks the kitchen state of one line item.
type LineItemStatus string

const (
	LineItemStatusPending   LineItemStatus = "pending"
	LineItemStatusPreparing LineItemStatus = "preparing"
	LineItemStatusReady     LineItemStatus = "ready"
	LineItemStatusServed    LineItemStatus = "served"
	LineItemStatusCancelled LineItemStatus = "cancelled"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusPending,
	LineItemStatusPreparing,
	LineItemStatusReady,
	LineItemStatusServed,
	LineItemStatusCancelled,
}

// String implements fmt.Stringer.
func (l LineItemStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemStatus.
func (l LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
