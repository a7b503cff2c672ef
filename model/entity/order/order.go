package order

import (
	"time"

	"posbridge.GO/model/entity"
)

// Fulfillment states. proposed is the initial marker only; completed,
// canceled and failed are terminal.
const (
	StateProposed  = "proposed"
	StateReserved  = "reserved"
	StatePrepared  = "prepared"
	StateCompleted = "completed"
	StateCanceled  = "canceled"
	StateFailed    = "failed"
)

// Order mirrors a remote order. ExternalVersion is the remote optimistic
// concurrency token; all money fields are integer minor units.
type Order struct {
	ID                uint       `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	MerchantID        uint       `gorm:"column:merchant_id;index;not null" json:"merchant_id"`
	CustomerID        uint       `gorm:"column:customer_id;index;not null" json:"customer_id"`
	LocationID        uint       `gorm:"column:location_id;index;not null" json:"location_id"`
	ExternalID        string     `gorm:"column:external_id;size:64;index" json:"external_id"`
	ExternalVersion   int64      `gorm:"column:external_version;not null;default:0" json:"external_version"`
	SubtotalAmount    int64      `gorm:"column:subtotal_amount;not null;default:0" json:"subtotal_amount"`
	TotalAmount       int64      `gorm:"column:total_amount;not null;default:0" json:"total_amount"`
	TipAmount         int64      `gorm:"column:tip_amount;not null;default:0" json:"tip_amount"`
	FeeAmount         int64      `gorm:"column:fee_amount;not null;default:0" json:"fee_amount"`
	Currency          string     `gorm:"column:currency;size:3;not null;default:'USD'" json:"currency"`
	FulfillmentStatus string     `gorm:"column:fulfillment_status;size:16;not null;default:'proposed'" json:"fulfillment_status"`
	PaymentExternalID string     `gorm:"column:payment_external_id;size:64" json:"payment_external_id"`
	PickupAt          *time.Time `gorm:"column:pickup_at" json:"pickup_at,omitempty"`
	ClosedAt          *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	LineItems []LineItem        `gorm:"foreignKey:OrderID;references:ID" json:"line_items,omitempty"`
	Customer  *entity.Customer  `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	Merchant  *entity.Merchant  `gorm:"foreignKey:MerchantID;references:ID" json:"merchant,omitempty"`
	Location  *entity.Location  `gorm:"foreignKey:LocationID;references:ID" json:"location,omitempty"`
}

func (Order) TableName() string {
	return "sales_order"
}

// IsTerminalState reports whether a fulfillment state admits no transitions.
func IsTerminalState(state string) bool {
	switch state {
	case StateCompleted, StateCanceled, StateFailed:
		return true
	}
	return false
}

// IsKnownState reports whether state is part of the fulfillment vocabulary.
func IsKnownState(state string) bool {
	switch state {
	case StateProposed, StateReserved, StatePrepared, StateCompleted, StateCanceled, StateFailed:
		return true
	}
	return false
}

// LineItem is one ordered row, mirrored from the remote order. Position
// preserves remote ordering.
type LineItem struct {
	ID                      uint   `gorm:"column:line_item_id;primaryKey;autoIncrement" json:"line_item_id"`
	OrderID                 uint   `gorm:"column:order_id;index;not null" json:"order_id"`
	ExternalUID             string `gorm:"column:external_uid;size:64" json:"external_uid"`
	CatalogObjectExternalID string `gorm:"column:catalog_object_external_id;size:64;not null" json:"catalog_object_external_id"`
	Name                    string `gorm:"column:name;size:255" json:"name"`
	Quantity                int    `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Note                    string `gorm:"column:note;size:512" json:"note"`
	Amount                  int64  `gorm:"column:amount;not null;default:0" json:"amount"`
	Position                int    `gorm:"column:position;not null;default:0" json:"position"`

	Modifiers []LineItemModifier `gorm:"foreignKey:LineItemID;references:ID" json:"modifiers,omitempty"`
}

func (LineItem) TableName() string {
	return "sales_order_line_item"
}

// LineItemModifier is one applied modifier on a line item.
type LineItemModifier struct {
	ID                      uint   `gorm:"column:line_item_modifier_id;primaryKey;autoIncrement" json:"line_item_modifier_id"`
	LineItemID              uint   `gorm:"column:line_item_id;index;not null" json:"line_item_id"`
	CatalogObjectExternalID string `gorm:"column:catalog_object_external_id;size:64;not null" json:"catalog_object_external_id"`
	Name                    string `gorm:"column:name;size:255" json:"name"`
	Amount                  int64  `gorm:"column:amount;not null;default:0" json:"amount"`
}

func (LineItemModifier) TableName() string {
	return "sales_order_line_item_modifier"
}
