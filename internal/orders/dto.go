package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/backend/pkg/enums"
)

// ItemInput is one menu item request, used both when creating an order and
// when adding to an existing one. UnitPrice overrides the current menu
// price when set, so reprints of an old ticket keep their original pricing.
type ItemInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	UnitPrice  *decimal.Decimal
	Notes      *string
	Addons     []AddonSelection
}

// CreateOrderInput is the payload for opening an order.
type CreateOrderInput struct {
	Type    enums.OrderType
	TableID *uuid.UUID
	Notes   string
	Items   []ItemInput
}

// AddItemInput adds a menu item to an open order.
type AddItemInput struct {
	OrderID uuid.UUID
	Item    ItemInput
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status  *enums.OrderStatus
	TableID *uuid.UUID
	Limit   int
	Offset  int
}
