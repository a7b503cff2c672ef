package catalog

// Owner type discriminators for polymorphic catalog attachments.
const (
	OwnerItem         = "item"
	OwnerVariation    = "variation"
	OwnerCategory     = "category"
	OwnerModifierList = "modifier_list"
	OwnerModifier     = "modifier"
)

// Image is a platform-hosted picture attached to exactly one catalog entity.
// Synced replace-by-external-id: an item with zero remote images loses all
// local ones.
type Image struct {
	ID         uint    `gorm:"column:image_id;primaryKey;autoIncrement" json:"image_id"`
	ExternalID *string `gorm:"column:external_id;size:64;index" json:"external_id,omitempty"`
	OwnerType  string  `gorm:"column:owner_type;size:16;index:idx_image_owner,priority:1;not null" json:"owner_type"`
	OwnerID    uint    `gorm:"column:owner_id;index:idx_image_owner,priority:2;not null" json:"owner_id"`
	URL        string  `gorm:"column:url;size:1024;not null" json:"url"`
	Caption    string  `gorm:"column:caption;size:255" json:"caption"`
}

func (Image) TableName() string {
	return "catalog_image"
}

// LocationOverride is a per-location price exception for a variation or a
// modifier. Absence means the base amount applies. Rows are fully replaced
// whenever the owning entity is synced.
type LocationOverride struct {
	ID         uint   `gorm:"column:override_id;primaryKey;autoIncrement" json:"override_id"`
	OwnerType  string `gorm:"column:owner_type;size:16;index:idx_override_owner,priority:1;not null" json:"owner_type"`
	OwnerID    uint   `gorm:"column:owner_id;index:idx_override_owner,priority:2;not null" json:"owner_id"`
	LocationID uint   `gorm:"column:location_id;index:idx_override_owner,priority:3,unique;not null" json:"location_id"`
	Amount     int64  `gorm:"column:amount;not null" json:"amount"`
	Currency   string `gorm:"column:currency;size:3;not null;default:'USD'" json:"currency"`
}

func (LocationOverride) TableName() string {
	return "catalog_location_override"
}

// Presence is an explicit per-location present/absent marker for an item or
// modifier, keyed by the location's external id (presence lists arrive from
// the platform before locations are necessarily mirrored).
type Presence struct {
	ID                 uint   `gorm:"column:presence_id;primaryKey;autoIncrement" json:"presence_id"`
	OwnerType          string `gorm:"column:owner_type;size:16;index:idx_presence_owner,priority:1;not null" json:"owner_type"`
	OwnerID            uint   `gorm:"column:owner_id;index:idx_presence_owner,priority:2;not null" json:"owner_id"`
	LocationExternalID string `gorm:"column:location_external_id;size:64;index:idx_presence_owner,priority:3,unique;not null" json:"location_external_id"`
	Present            bool   `gorm:"column:present;not null" json:"present"`
}

func (Presence) TableName() string {
	return "catalog_presence"
}
