package entity

import "time"

// Merchant is a tenant: one external platform account, one catalog mirror.
type Merchant struct {
	ID          uint      `gorm:"column:merchant_id;primaryKey;autoIncrement" json:"merchant_id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	ExternalID  string    `gorm:"column:external_id;size:64;uniqueIndex" json:"external_id"`
	AccessToken string    `gorm:"column:access_token;size:255" json:"-"`
	Tier        int       `gorm:"column:tier;not null;default:0" json:"tier"`
	AppEnabled  bool      `gorm:"column:app_enabled;not null" json:"app_enabled"`
	Enabled     bool      `gorm:"column:enabled;not null" json:"enabled"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Merchant) TableName() string {
	return "merchant"
}

// HasRemoteCredentials reports whether remote calls can be made for this
// merchant (its own token, or the env fallback applied by the client factory).
func (m *Merchant) HasRemoteCredentials(fallbackToken string) bool {
	return m.AccessToken != "" || fallbackToken != ""
}
