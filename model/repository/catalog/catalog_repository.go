package catalog

import (
	"fmt"

	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/core/cache"
	catalogEntity "posbridge.GO/model/entity/catalog"
)

const readCacheTTL = 300 // seconds

// CatalogRepository is the read side of the mirrored catalog, serving the
// GraphQL and menu endpoints. List queries go through the process cache
// under the "catalog:<id>" tag; a sync pass invalidates the whole tag.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) tag(catalogID uint) string {
	return fmt.Sprintf("catalog:%d", catalogID)
}

// ForMerchant resolves the merchant's catalog root.
func (r *CatalogRepository) ForMerchant(merchantID uint) (*catalogEntity.Catalog, error) {
	var cat catalogEntity.Catalog
	err := r.db.Where("merchant_id = ?", merchantID).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "no catalog for merchant %d", merchantID)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Categories returns enabled categories in ordinal order.
func (r *CatalogRepository) Categories(catalogID uint) ([]catalogEntity.Category, error) {
	c := cache.GetInstance()
	if v, ok := c.GetN("categories", catalogID); ok {
		return v.([]catalogEntity.Category), nil
	}
	var rows []catalogEntity.Category
	err := r.db.
		Where("catalog_id = ? AND enabled = ?", catalogID, true).
		Order("ordinal ASC, category_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	c.SetN([]interface{}{"categories", catalogID}, rows, readCacheTTL, []string{r.tag(catalogID)})
	return rows, nil
}

// ItemsForCategory returns enabled items with their variations.
func (r *CatalogRepository) ItemsForCategory(catalogID, categoryID uint) ([]catalogEntity.Item, error) {
	c := cache.GetInstance()
	if v, ok := c.GetN("items", catalogID, categoryID); ok {
		return v.([]catalogEntity.Item), nil
	}
	var rows []catalogEntity.Item
	err := r.db.
		Where("catalog_id = ? AND category_id = ? AND enabled = ?", catalogID, categoryID, true).
		Order("ordinal ASC, item_id ASC").
		Preload("Variations").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	c.SetN([]interface{}{"items", catalogID, categoryID}, rows, readCacheTTL, []string{r.tag(catalogID)})
	return rows, nil
}

// ItemsByIDs loads items preserving the given order (used by search).
func (r *CatalogRepository) ItemsByIDs(ids []uint) ([]catalogEntity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []catalogEntity.Item
	if err := r.db.Where("item_id IN ?", ids).Preload("Variations").Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]catalogEntity.Item, len(rows))
	for _, it := range rows {
		byID[it.ID] = it
	}
	out := make([]catalogEntity.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// ItemByExternalID resolves an item by its platform id.
func (r *CatalogRepository) ItemByExternalID(catalogID uint, externalID string) (*catalogEntity.Item, error) {
	var it catalogEntity.Item
	err := r.db.
		Where("catalog_id = ? AND external_id = ?", catalogID, externalID).
		Preload("Variations").
		First(&it).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "item %s not found", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// VariationByExternalID resolves a sellable variation within a catalog.
func (r *CatalogRepository) VariationByExternalID(catalogID uint, externalID string) (*catalogEntity.Variation, error) {
	var v catalogEntity.Variation
	err := r.db.
		Joins("JOIN catalog_item ON catalog_item.item_id = catalog_variation.item_id").
		Where("catalog_item.catalog_id = ? AND catalog_variation.external_id = ?", catalogID, externalID).
		First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "variation %s not found", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ModifierByExternalID resolves a modifier within a catalog.
func (r *CatalogRepository) ModifierByExternalID(catalogID uint, externalID string) (*catalogEntity.Modifier, error) {
	var m catalogEntity.Modifier
	err := r.db.
		Joins("JOIN catalog_modifier_list ON catalog_modifier_list.modifier_list_id = catalog_modifier.modifier_list_id").
		Where("catalog_modifier_list.catalog_id = ? AND catalog_modifier.external_id = ?", catalogID, externalID).
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "modifier %s not found", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ModifierListsForItem returns the item's enabled modifier lists with their
// modifiers, ordered.
func (r *CatalogRepository) ModifierListsForItem(itemID uint) ([]ItemModifierListView, error) {
	var links []catalogEntity.ItemModifierList
	err := r.db.
		Where("item_id = ? AND enabled = ?", itemID, true).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	out := make([]ItemModifierListView, 0, len(links))
	for _, link := range links {
		var list catalogEntity.ModifierList
		if err := r.db.First(&list, link.ModifierListID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		var mods []catalogEntity.Modifier
		err := r.db.
			Where("modifier_list_id = ?", list.ID).
			Order("ordinal ASC, modifier_id ASC").
			Find(&mods).Error
		if err != nil {
			return nil, err
		}
		out = append(out, ItemModifierListView{
			List:        list,
			Modifiers:   mods,
			MinSelected: link.MinSelected,
			MaxSelected: link.MaxSelected,
		})
	}
	return out, nil
}

// ItemModifierListView is a modifier list joined with its per-item bounds.
type ItemModifierListView struct {
	List        catalogEntity.ModifierList
	Modifiers   []catalogEntity.Modifier
	MinSelected int
	MaxSelected int
}

// ImagesFor returns the owner's images.
func (r *CatalogRepository) ImagesFor(ownerType string, ownerID uint) ([]catalogEntity.Image, error) {
	var rows []catalogEntity.Image
	err := r.db.
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("image_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PresenceFor returns the owner's explicit presence markers.
func (r *CatalogRepository) PresenceFor(ownerType string, ownerID uint) ([]catalogEntity.Presence, error) {
	var rows []catalogEntity.Presence
	err := r.db.
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
