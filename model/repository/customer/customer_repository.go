package customer

import (
	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/model/entity"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(id uint) (*entity.Customer, error) {
	var c entity.Customer
	err := r.db.Preload("User").First(&c, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "customer %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCurrentOrder marks the customer's single open order.
func (r *CustomerRepository) SetCurrentOrder(customerID, orderID uint) error {
	return r.db.Model(&entity.Customer{}).
		Where("customer_id = ?", customerID).
		Update("current_order_id", orderID).Error
}

// ClearCurrentOrder releases the customer's open order slot.
func (r *CustomerRepository) ClearCurrentOrder(customerID uint) error {
	return r.db.Model(&entity.Customer{}).
		Where("customer_id = ?", customerID).
		Update("current_order_id", nil).Error
}

// SetPreferredLocation remembers the customer's last chosen location.
func (r *CustomerRepository) SetPreferredLocation(customerID, locationID uint) error {
	return r.db.Model(&entity.Customer{}).
		Where("customer_id = ?", customerID).
		Update("preferred_location_id", locationID).Error
}
