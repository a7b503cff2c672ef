package catalog

import "time"

// Catalog is the per-merchant root of the mirrored catalog.
type Catalog struct {
	ID         uint      `gorm:"column:catalog_id;primaryKey;autoIncrement" json:"catalog_id"`
	MerchantID uint      `gorm:"column:merchant_id;uniqueIndex;not null" json:"merchant_id"`
	SyncedAt   time.Time `gorm:"column:synced_at" json:"synced_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Catalog) TableName() string {
	return "catalog"
}

// Category groups items. Ordinal is assigned once at creation and never
// reassigned by sync.
type Category struct {
	ID         uint    `gorm:"column:category_id;primaryKey;autoIncrement" json:"category_id"`
	CatalogID  uint    `gorm:"column:catalog_id;index:idx_category_ext,priority:1;not null" json:"catalog_id"`
	ExternalID *string `gorm:"column:external_id;size:64;index:idx_category_ext,priority:2,unique" json:"external_id,omitempty"`
	Name       string  `gorm:"column:name;size:255;not null" json:"name"`
	Ordinal    int     `gorm:"column:ordinal;not null;default:0" json:"ordinal"`
	Enabled    bool    `gorm:"column:enabled;not null" json:"enabled"`
}

func (Category) TableName() string {
	return "catalog_category"
}

// Item belongs to a category and carries location-presence fields resolved
// by the presence resolver.
type Item struct {
	ID                    uint    `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id"`
	CatalogID             uint    `gorm:"column:catalog_id;index:idx_item_ext,priority:1;not null" json:"catalog_id"`
	CategoryID            uint    `gorm:"column:category_id;index;not null" json:"category_id"`
	ExternalID            *string `gorm:"column:external_id;size:64;index:idx_item_ext,priority:2,unique" json:"external_id,omitempty"`
	Name                  string  `gorm:"column:name;size:255;not null" json:"name"`
	Description           string  `gorm:"column:description;type:text" json:"description"`
	Ordinal               int     `gorm:"column:ordinal;not null;default:0" json:"ordinal"`
	Enabled               bool    `gorm:"column:enabled;not null" json:"enabled"`
	PresentAtAllLocations bool    `gorm:"column:present_at_all_locations;not null;default:0" json:"present_at_all_locations"`

	Variations []Variation `gorm:"foreignKey:ItemID;references:ID" json:"variations,omitempty"`
}

func (Item) TableName() string {
	return "catalog_item"
}

// Variation is a sellable flavor of an item. BaseAmount is integer minor
// units; per-location exceptions live in LocationOverride rows.
type Variation struct {
	ID         uint    `gorm:"column:variation_id;primaryKey;autoIncrement" json:"variation_id"`
	ItemID     uint    `gorm:"column:item_id;index:idx_variation_ext,priority:1;not null" json:"item_id"`
	ExternalID *string `gorm:"column:external_id;size:64;index:idx_variation_ext,priority:2,unique" json:"external_id,omitempty"`
	Name       string  `gorm:"column:name;size:255;not null" json:"name"`
	Ordinal    int     `gorm:"column:ordinal;not null;default:0" json:"ordinal"`
	Enabled    bool    `gorm:"column:enabled;not null" json:"enabled"`
	BaseAmount int64   `gorm:"column:base_amount;not null;default:0" json:"base_amount"`
	Currency   string  `gorm:"column:currency;size:3;not null;default:'USD'" json:"currency"`
}

func (Variation) TableName() string {
	return "catalog_variation"
}

// ModifierList owns modifiers; selection type is single or multiple.
type ModifierList struct {
	ID            uint    `gorm:"column:modifier_list_id;primaryKey;autoIncrement" json:"modifier_list_id"`
	CatalogID     uint    `gorm:"column:catalog_id;index:idx_modlist_ext,priority:1;not null" json:"catalog_id"`
	ExternalID    *string `gorm:"column:external_id;size:64;index:idx_modlist_ext,priority:2,unique" json:"external_id,omitempty"`
	Name          string  `gorm:"column:name;size:255;not null" json:"name"`
	SelectionType string  `gorm:"column:selection_type;size:16;not null;default:'SINGLE'" json:"selection_type"`
}

func (ModifierList) TableName() string {
	return "catalog_modifier_list"
}

// Modifier belongs to one modifier list.
type Modifier struct {
	ID                    uint    `gorm:"column:modifier_id;primaryKey;autoIncrement" json:"modifier_id"`
	ModifierListID        uint    `gorm:"column:modifier_list_id;index:idx_modifier_ext,priority:1;not null" json:"modifier_list_id"`
	ExternalID            *string `gorm:"column:external_id;size:64;index:idx_modifier_ext,priority:2,unique" json:"external_id,omitempty"`
	Name                  string  `gorm:"column:name;size:255;not null" json:"name"`
	Ordinal               int     `gorm:"column:ordinal;not null;default:0" json:"ordinal"`
	BaseAmount            int64   `gorm:"column:base_amount;not null;default:0" json:"base_amount"`
	Currency              string  `gorm:"column:currency;size:3;not null;default:'USD'" json:"currency"`
	PresentAtAllLocations bool    `gorm:"column:present_at_all_locations;not null;default:0" json:"present_at_all_locations"`
}

func (Modifier) TableName() string {
	return "catalog_modifier"
}

// ItemModifierList joins items to modifier lists with per-item selection
// bounds. Fully replaced on every sync of the owning item.
type ItemModifierList struct {
	ID             uint `gorm:"column:item_modifier_list_id;primaryKey;autoIncrement" json:"item_modifier_list_id"`
	ItemID         uint `gorm:"column:item_id;index:idx_iml,priority:1;not null" json:"item_id"`
	ModifierListID uint `gorm:"column:modifier_list_id;index:idx_iml,priority:2,unique;not null" json:"modifier_list_id"`
	MinSelected    int  `gorm:"column:min_selected;not null;default:0" json:"min_selected"`
	MaxSelected    int  `gorm:"column:max_selected;not null;default:0" json:"max_selected"`
	Enabled        bool `gorm:"column:enabled;not null" json:"enabled"`
}

func (ItemModifierList) TableName() string {
	return "catalog_item_modifier_list"
}
