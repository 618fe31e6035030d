package enums

import "fmt"

// AuditAction names what happened in an audit-log row.
type AuditAction string

const (
	AuditActionStockConsumed AuditAction = "stock_consumed"
	AuditActionStockRestored AuditAction = "stock_restored"
	AuditActionStockRestock  AuditAction = "stock_restock"
	AuditActionOrderCreated  AuditAction = "order_created"
	AuditActionOrderCancel   AuditAction = "order_cancelled"
	AuditActionOrderPaid     AuditAction = "order_paid"
)

var validAuditActions = []AuditAction{
	AuditActionStockConsumed,
	AuditActionStockRestored,
	AuditActionStockRestock,
	AuditActionOrderCreated,
	AuditActionOrderCancel,
	AuditActionOrderPaid,
}

func (a AuditAction) String() string {
	return string(a)
}

func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
