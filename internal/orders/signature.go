package orders

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/comanda-pos/backend/pkg/db/models"
)

// emptySignature marks a line item with no addons. A real signature can
// never collide with it because addon IDs are UUIDs.
const emptySignature = "-"

// AddonSelection is a requested addon with its per-unit count.
type AddonSelection struct {
	AddonID  uuid.UUID
	Quantity int
}

// AddonSignature reduces an addon set to a canonical string so two
// logically equal selections always compare equal. Duplicate addon IDs
// merge by summing, non-positive counts drop out, and the survivors sort
// by ID before being joined.
func AddonSignature(selections []AddonSelection) string {
	totals := make(map[uuid.UUID]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		totals[sel.AddonID] += sel.Quantity
	}
	if len(totals) == 0 {
		return emptySignature
	}

	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String()+":"+strconv.Itoa(totals[id]))
	}
	return strings.Join(parts, "|")
}

// NormalizeAddons returns the merged, sorted selection that
// AddonSignature is computed from.
func NormalizeAddons(selections []AddonSelection) []AddonSelection {
	totals := make(map[uuid.UUID]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		totals[sel.AddonID] += sel.Quantity
	}

	normalized := make([]AddonSelection, 0, len(totals))
	for id, qty := range totals {
		normalized = append(normalized, AddonSelection{AddonID: id, Quantity: qty})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].AddonID.String() < normalized[j].AddonID.String()
	})
	return normalized
}

// StoredAddonSignature computes the signature of addons already persisted
// on a line item.
func StoredAddonSignature(addons []models.OrderItemAddon) string {
	selections := make([]AddonSelection, 0, len(addons))
	for _, addon := range addons {
		selections = append(selections, AddonSelection{AddonID: addon.AddonID, Quantity: addon.Quantity})
	}
	return AddonSignature(selections)
}

// NormalizeNotes trims whitespace so "no onions " and "no onions" merge,
// and a nil pointer equals an empty string.
func NormalizeNotes(notes *string) string {
	if notes == nil {
		return ""
	}
	return strings.TrimSpace(*notes)
}
