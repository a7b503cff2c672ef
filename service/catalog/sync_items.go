package catalog

import (
	"fmt"

	catalogEntity "posbridge.GO/model/entity/catalog"
	"posbridge.GO/remote"
)

// upsertCategories creates/updates categories and rebuilds the external-id
// index the item pass depends on. Ordinal is assigned from the remote
// position at creation only; merchants may reorder locally afterwards.
func (p *syncPass) upsertCategories() error {
	var locals []catalogEntity.Category
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	byExt := make(map[string]*catalogEntity.Category, len(locals))
	for i := range locals {
		if locals[i].ExternalID != nil {
			byExt[*locals[i].ExternalID] = &locals[i]
		}
	}

	p.categoryIDByExt = make(map[string]uint, len(p.snap.categories))
	for ordinal, obj := range p.snap.categories {
		data, err := obj.DecodeCategory()
		if err != nil {
			return err
		}
		if local, ok := byExt[obj.ID]; ok {
			if err := p.tx.Model(local).Update("name", data.Name).Error; err != nil {
				return fmt.Errorf("update category %s: %w", obj.ID, err)
			}
			p.categoryIDByExt[obj.ID] = local.ID
			p.res.Updated["category"]++
			continue
		}
		ext := obj.ID
		row := catalogEntity.Category{
			CatalogID:  p.catalog.ID,
			ExternalID: &ext,
			Name:       data.Name,
			Ordinal:    ordinal,
			Enabled:    true,
		}
		if err := p.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create category %s: %w", obj.ID, err)
		}
		p.categoryIDByExt[obj.ID] = row.ID
		p.res.Created["category"]++
	}
	return nil
}

// upsertItems creates/updates items with their variations, modifier list
// associations, images and presence rows. An item naming an unknown category
// aborts the pass. Individual variation or override save failures are warned
// and skipped so one bad row cannot sink the whole catalog.
func (p *syncPass) upsertItems() error {
	var locals []catalogEntity.Item
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	byExt := make(map[string]*catalogEntity.Item, len(locals))
	for i := range locals {
		if locals[i].ExternalID != nil {
			byExt[*locals[i].ExternalID] = &locals[i]
		}
	}

	// Creation ordinals count within the item's category, not across the
	// whole snapshot.
	nextOrdinal := make(map[uint]int)
	for _, dec := range p.items {
		categoryID, ok := p.categoryIDByExt[dec.data.CategoryID]
		if !ok {
			return fmt.Errorf("item %s references unknown category %s", dec.id, dec.data.CategoryID)
		}
		ordinal := nextOrdinal[categoryID]
		nextOrdinal[categoryID]++

		var itemID uint
		if local, ok := byExt[dec.id]; ok {
			updates := map[string]interface{}{
				"category_id":              categoryID,
				"name":                     dec.data.Name,
				"description":              dec.data.Description,
				"present_at_all_locations": dec.data.Presence.PresentAtAllLocations,
			}
			if err := p.tx.Model(local).Updates(updates).Error; err != nil {
				return fmt.Errorf("update item %s: %w", dec.id, err)
			}
			itemID = local.ID
			p.res.Updated["item"]++
		} else {
			ext := dec.id
			row := catalogEntity.Item{
				CatalogID:             p.catalog.ID,
				CategoryID:            categoryID,
				ExternalID:            &ext,
				Name:                  dec.data.Name,
				Description:           dec.data.Description,
				Ordinal:               ordinal,
				Enabled:               true,
				PresentAtAllLocations: dec.data.Presence.PresentAtAllLocations,
			}
			if err := p.tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create item %s: %w", dec.id, err)
			}
			itemID = row.ID
			p.res.Created["item"]++
		}

		p.syncVariations(itemID, dec)
		if err := p.replaceAssociations(itemID, dec); err != nil {
			return err
		}
		if err := p.replaceImages(catalogEntity.OwnerItem, itemID, dec.data.Images); err != nil {
			return err
		}
		p.replacePresence(catalogEntity.OwnerItem, itemID, dec.id, dec.data.Presence)
	}
	return nil
}

// syncVariations upserts the item's variations. A failing variation is
// warned and skipped; its siblings still land.
func (p *syncPass) syncVariations(itemID uint, dec decodedItem) {
	var locals []catalogEntity.Variation
	if err := p.tx.Where("item_id = ?", itemID).Find(&locals).Error; err != nil {
		p.res.warnf("load variations of item %s: %v", dec.id, err)
		return
	}
	byExt := make(map[string]*catalogEntity.Variation, len(locals))
	for i := range locals {
		if locals[i].ExternalID != nil {
			byExt[*locals[i].ExternalID] = &locals[i]
		}
	}

	for ordinal, v := range dec.data.Variations {
		var varID uint
		if local, ok := byExt[v.ID]; ok {
			updates := map[string]interface{}{
				"item_id":     itemID,
				"name":        v.Name,
				"base_amount": v.Amount,
				"currency":    currencyOrUSD(v.Currency),
			}
			if err := p.tx.Model(local).Updates(updates).Error; err != nil {
				p.res.warnf("update variation %s of item %s: %v", v.ID, dec.id, err)
				continue
			}
			varID = local.ID
			p.res.Updated["variation"]++
		} else {
			ext := v.ID
			row := catalogEntity.Variation{
				ItemID:     itemID,
				ExternalID: &ext,
				Name:       v.Name,
				Ordinal:    ordinal,
				Enabled:    true,
				BaseAmount: v.Amount,
				Currency:   currencyOrUSD(v.Currency),
			}
			if err := p.tx.Create(&row).Error; err != nil {
				p.res.warnf("create variation %s of item %s: %v", v.ID, dec.id, err)
				continue
			}
			varID = row.ID
			p.res.Created["variation"]++
		}
		p.replaceOverrides(catalogEntity.OwnerVariation, varID, v.ID, v.Overrides)
	}
}

// replaceAssociations fully replaces the item's modifier list links. A ref
// to an unknown list is warned and skipped; the list may simply not be
// published yet.
func (p *syncPass) replaceAssociations(itemID uint, dec decodedItem) error {
	if err := p.tx.Where("item_id = ?", itemID).Delete(&catalogEntity.ItemModifierList{}).Error; err != nil {
		return fmt.Errorf("clear associations of item %s: %w", dec.id, err)
	}
	for _, ref := range dec.data.ModifierList {
		listID, ok := p.modListIDByExt[ref.ModifierListID]
		if !ok {
			p.res.warnf("item %s references unknown modifier list %s", dec.id, ref.ModifierListID)
			continue
		}
		row := catalogEntity.ItemModifierList{
			ItemID:         itemID,
			ModifierListID: listID,
			MinSelected:    ref.MinSelected,
			MaxSelected:    ref.MaxSelected,
			Enabled:        ref.Enabled,
		}
		if err := p.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("associate item %s with list %s: %w", dec.id, ref.ModifierListID, err)
		}
	}
	return nil
}

// replaceImages mirrors the owner's image set by external id. Zero remote
// images clears the local set.
func (p *syncPass) replaceImages(ownerType string, ownerID uint, images []remote.ImageData) error {
	var locals []catalogEntity.Image
	err := p.tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).Find(&locals).Error
	if err != nil {
		return fmt.Errorf("load images of %s %d: %w", ownerType, ownerID, err)
	}

	plan := Diff(locals, images,
		func(img catalogEntity.Image) string { return extID(img.ExternalID) },
		func(img remote.ImageData) string { return img.ID },
	)
	for _, img := range plan.Delete {
		if err := p.tx.Delete(&catalogEntity.Image{}, img.ID).Error; err != nil {
			return fmt.Errorf("delete image %d: %w", img.ID, err)
		}
	}
	for _, pair := range plan.Update {
		updates := map[string]interface{}{
			"url":     pair.Remote.URL,
			"caption": pair.Remote.Caption,
		}
		if err := p.tx.Model(&catalogEntity.Image{}).Where("image_id = ?", pair.Local.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update image %s: %w", pair.Remote.ID, err)
		}
	}
	for _, img := range plan.Create {
		ext := img.ID
		row := catalogEntity.Image{
			ExternalID: &ext,
			OwnerType:  ownerType,
			OwnerID:    ownerID,
			URL:        img.URL,
			Caption:    img.Caption,
		}
		if err := p.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create image %s: %w", img.ID, err)
		}
	}
	return nil
}
