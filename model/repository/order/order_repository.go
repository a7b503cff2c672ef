package order

import (
	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	orderEntity "posbridge.GO/model/entity/order"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByID loads an order with its line items and their modifiers.
func (r *OrderRepository) FindByID(id uint) (*orderEntity.Order, error) {
	var o orderEntity.Order
	err := r.db.
		Preload("LineItems.Modifiers").
		Preload("LineItems").
		First(&o, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "order %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindHydrated loads an order with every relation the notification channels
// need: customer (with user and app installs), merchant and location.
func (r *OrderRepository) FindHydrated(id uint) (*orderEntity.Order, error) {
	var o orderEntity.Order
	err := r.db.
		Preload("LineItems.Modifiers").
		Preload("LineItems").
		Preload("Customer.User").
		Preload("Customer.AppInstalls").
		Preload("Customer").
		Preload("Merchant").
		Preload("Location.Hours").
		Preload("Location").
		First(&o, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "order %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByExternalID resolves the local mirror of a remote order.
func (r *OrderRepository) FindByExternalID(merchantID uint, externalID string) (*orderEntity.Order, error) {
	var o orderEntity.Order
	err := r.db.
		Where("merchant_id = ? AND external_id = ?", merchantID, externalID).
		Preload("LineItems.Modifiers").
		Preload("LineItems").
		First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "order %s not found", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Save(o *orderEntity.Order) error {
	return r.db.Save(o).Error
}

// UpdateFields writes a partial column set without touching relations.
func (r *OrderRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&orderEntity.Order{}).Where("order_id = ?", id).Updates(fields).Error
}

// ReplaceLineItems swaps the order's full line item set inside one
// transaction, modifiers included.
func (r *OrderRepository) ReplaceLineItems(orderID uint, items []orderEntity.LineItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []orderEntity.LineItem
		if err := tx.Where("order_id = ?", orderID).Find(&existing).Error; err != nil {
			return err
		}
		for _, li := range existing {
			if err := tx.Where("line_item_id = ?", li.ID).Delete(&orderEntity.LineItemModifier{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&orderEntity.LineItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = orderID
			items[i].ID = 0
			for j := range items[i].Modifiers {
				items[i].Modifiers[j].ID = 0
			}
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the order and its line item rows. Used for compensation
// when remote creation failed mid-flight.
func (r *OrderRepository) Delete(orderID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []orderEntity.LineItem
		if err := tx.Where("order_id = ?", orderID).Find(&existing).Error; err != nil {
			return err
		}
		for _, li := range existing {
			if err := tx.Where("line_item_id = ?", li.ID).Delete(&orderEntity.LineItemModifier{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&orderEntity.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&orderEntity.Order{}, orderID).Error
	})
}
