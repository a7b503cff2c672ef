package entity

import "time"

// Customer belongs to a merchant and holds at most one open order at a time.
// current_order_id is written only through the order lifecycle service.
type Customer struct {
	ID                  uint      `gorm:"column:customer_id;primaryKey;autoIncrement" json:"customer_id"`
	MerchantID          uint      `gorm:"column:merchant_id;index;not null" json:"merchant_id"`
	UserID              uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	ExternalID          string    `gorm:"column:external_id;size:64;index" json:"external_id"`
	PreferredLocationID *uint     `gorm:"column:preferred_location_id" json:"preferred_location_id,omitempty"`
	CurrentOrderID      *uint     `gorm:"column:current_order_id" json:"current_order_id,omitempty"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User        *User        `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	AppInstalls []AppInstall `gorm:"foreignKey:UserID;references:UserID" json:"app_installs,omitempty"`
}

func (Customer) TableName() string {
	return "customer"
}

// User is the person behind one or more customers (one per merchant).
type User struct {
	ID        uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Email     string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Phone     string    `gorm:"column:phone;size:32" json:"phone"`
	FirstName string    `gorm:"column:first_name;size:128" json:"first_name"`
	LastName  string    `gorm:"column:last_name;size:128" json:"last_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "user"
}

// AppInstall carries a push token for one device of a user.
type AppInstall struct {
	ID        uint      `gorm:"column:app_install_id;primaryKey;autoIncrement" json:"app_install_id"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	Platform  string    `gorm:"column:platform;size:16" json:"platform"`
	PushToken string    `gorm:"column:push_token;size:255" json:"push_token"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AppInstall) TableName() string {
	return "app_install"
}
