package order

import (
	"gorm.io/gorm"

	"posbridge.GO/model/entity"
	orderEntity "posbridge.GO/model/entity/order"
	"posbridge.GO/remote"
	"posbridge.GO/service/catalog"
)

// mirror writes the remote order's state onto the local row: identity,
// version token, totals, closed-at, and a full replace of line items.
func (m *Manager) mirror(o *orderEntity.Order, ro *remote.Order) error {
	fields := map[string]interface{}{
		"external_id":      ro.ID,
		"external_version": ro.Version,
		"subtotal_amount":  ro.SubtotalMoney.Amount,
		"total_amount":     ro.TotalMoney.Amount,
		"tip_amount":       ro.TipMoney.Amount,
		"closed_at":        ro.ClosedAt,
	}
	if ro.SubtotalMoney.Currency != "" {
		fields["currency"] = ro.SubtotalMoney.Currency
	}
	if o.LocationID != 0 {
		fields["location_id"] = o.LocationID
	}
	if err := m.orders.UpdateFields(o.ID, fields); err != nil {
		return err
	}
	o.ExternalID = ro.ID
	o.ExternalVersion = ro.Version
	o.SubtotalAmount = ro.SubtotalMoney.Amount
	o.TotalAmount = ro.TotalMoney.Amount
	o.TipAmount = ro.TipMoney.Amount
	o.ClosedAt = ro.ClosedAt

	items := make([]orderEntity.LineItem, 0, len(ro.LineItems))
	for i, rl := range ro.LineItems {
		li := orderEntity.LineItem{
			ExternalUID:             rl.UID,
			CatalogObjectExternalID: rl.CatalogObjectID,
			Name:                    rl.Name,
			Quantity:                rl.Quantity,
			Note:                    rl.Note,
			Amount:                  rl.TotalMoney.Amount,
			Position:                i,
		}
		for _, rm := range rl.Modifiers {
			li.Modifiers = append(li.Modifiers, orderEntity.LineItemModifier{
				CatalogObjectExternalID: rm.CatalogObjectID,
				Name:                    rm.Name,
				Amount:                  rm.TotalMoney.Amount,
			})
		}
		items = append(items, li)
	}
	return m.orders.ReplaceLineItems(o.ID, items)
}

// lineSpecsFromLocal rebuilds remote line specs from the mirrored rows, used
// when an order has to be recreated at another location.
func lineSpecsFromLocal(items []orderEntity.LineItem) []remote.LineItemSpec {
	specs := make([]remote.LineItemSpec, 0, len(items))
	for _, li := range items {
		spec := remote.LineItemSpec{
			CatalogObjectID: li.CatalogObjectExternalID,
			Quantity:        li.Quantity,
			Note:            li.Note,
		}
		for _, mod := range li.Modifiers {
			spec.ModifierIDs = append(spec.ModifierIDs, mod.CatalogObjectExternalID)
		}
		specs = append(specs, spec)
	}
	return specs
}

func mirrorLocation(db *gorm.DB, merchantID uint, r *remote.Location) (*entity.Location, error) {
	return catalog.MirrorLocation(db, merchantID, r)
}
