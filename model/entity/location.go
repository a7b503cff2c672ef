package entity

import "time"

// Location mirrors a remote merchant location.
type Location struct {
	ID         uint      `gorm:"column:location_id;primaryKey;autoIncrement" json:"location_id"`
	MerchantID uint      `gorm:"column:merchant_id;index;not null" json:"merchant_id"`
	ExternalID string    `gorm:"column:external_id;size:64;index:idx_location_ext,unique" json:"external_id"`
	Name       string    `gorm:"column:name;size:255" json:"name"`
	Timezone   string    `gorm:"column:timezone;size:64;not null;default:'UTC'" json:"timezone"`
	Enabled    bool      `gorm:"column:enabled;not null" json:"enabled"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Hours []BusinessHoursPeriod `gorm:"foreignKey:LocationID;references:ID" json:"hours,omitempty"`
}

func (Location) TableName() string {
	return "location"
}

// BusinessHoursPeriod is one open interval for a location, in local time.
// Day 0 is Sunday, matching time.Weekday. Times are "15:04" strings.
type BusinessHoursPeriod struct {
	ID         uint   `gorm:"column:period_id;primaryKey;autoIncrement" json:"period_id"`
	LocationID uint   `gorm:"column:location_id;index;not null" json:"location_id"`
	DayOfWeek  int    `gorm:"column:day_of_week;not null" json:"day_of_week"`
	OpensAt    string `gorm:"column:opens_at;size:5;not null" json:"opens_at"`
	ClosesAt   string `gorm:"column:closes_at;size:5;not null" json:"closes_at"`
	Position   int    `gorm:"column:position;not null;default:0" json:"position"`
}

func (BusinessHoursPeriod) TableName() string {
	return "location_business_hours"
}
