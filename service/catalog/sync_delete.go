package catalog

import (
	"fmt"

	catalogEntity "posbridge.GO/model/entity/catalog"
	"posbridge.GO/remote"
)

// decoded object wrappers, built once per pass and shared by the delete and
// upsert phases.
type decodedItem struct {
	id   string
	data *remote.ItemData
}

type decodedModifier struct {
	id   string
	data *remote.ModifierData
}

func (p *syncPass) decodeSnapshot() error {
	if p.items != nil {
		return nil
	}
	p.items = make([]decodedItem, 0, len(p.snap.items))
	for _, obj := range p.snap.items {
		d, err := obj.DecodeItem()
		if err != nil {
			return err
		}
		p.items = append(p.items, decodedItem{id: obj.ID, data: d})
	}
	p.modifiers = make([]decodedModifier, 0, len(p.snap.modifiers))
	for _, obj := range p.snap.modifiers {
		d, err := obj.DecodeModifier()
		if err != nil {
			return err
		}
		p.modifiers = append(p.modifiers, decodedModifier{id: obj.ID, data: d})
	}
	return nil
}

func extID(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// deleteAbsent removes every mirrored row whose external id is gone from the
// remote snapshot, in dependency order: variations, modifier lists (with
// their modifiers), remaining modifiers, categories, items. Locally
// originated rows (nil external id) are never touched.
func (p *syncPass) deleteAbsent() error {
	if err := p.decodeSnapshot(); err != nil {
		return err
	}
	if err := p.deleteAbsentVariations(); err != nil {
		return err
	}
	if err := p.deleteAbsentModifierLists(); err != nil {
		return err
	}
	if err := p.deleteAbsentModifiers(); err != nil {
		return err
	}
	if err := p.deleteAbsentCategories(); err != nil {
		return err
	}
	return p.deleteAbsentItems()
}

func (p *syncPass) deleteAbsentVariations() error {
	var locals []catalogEntity.Variation
	err := p.tx.
		Joins("JOIN catalog_item ON catalog_item.item_id = catalog_variation.item_id").
		Where("catalog_item.catalog_id = ?", p.catalog.ID).
		Find(&locals).Error
	if err != nil {
		return fmt.Errorf("load variations: %w", err)
	}

	var remoteIDs []string
	for _, it := range p.items {
		for _, v := range it.data.Variations {
			remoteIDs = append(remoteIDs, v.ID)
		}
	}

	plan := Diff(locals, remoteIDs,
		func(v catalogEntity.Variation) string { return extID(v.ExternalID) },
		func(id string) string { return id },
	)
	for _, v := range plan.Delete {
		if err := p.deleteOverrides(catalogEntity.OwnerVariation, v.ID); err != nil {
			return err
		}
		if err := p.tx.Delete(&catalogEntity.Variation{}, v.ID).Error; err != nil {
			return fmt.Errorf("delete variation %d: %w", v.ID, err)
		}
		p.res.Deleted["variation"]++
	}
	return nil
}

func (p *syncPass) deleteAbsentModifierLists() error {
	var locals []catalogEntity.ModifierList
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load modifier lists: %w", err)
	}

	plan := Diff(locals, p.snap.modLists,
		func(l catalogEntity.ModifierList) string { return extID(l.ExternalID) },
		func(o remote.CatalogObject) string { return o.ID },
	)
	for _, l := range plan.Delete {
		// Modifiers of a deleted list go with it; the modifier delete pass
		// then only sees surviving lists.
		var mods []catalogEntity.Modifier
		if err := p.tx.Where("modifier_list_id = ?", l.ID).Find(&mods).Error; err != nil {
			return fmt.Errorf("load modifiers of list %d: %w", l.ID, err)
		}
		for _, m := range mods {
			if err := p.deleteModifierRow(m); err != nil {
				return err
			}
		}
		if err := p.tx.Where("modifier_list_id = ?", l.ID).Delete(&catalogEntity.ItemModifierList{}).Error; err != nil {
			return fmt.Errorf("delete associations of list %d: %w", l.ID, err)
		}
		if err := p.tx.Delete(&catalogEntity.ModifierList{}, l.ID).Error; err != nil {
			return fmt.Errorf("delete modifier list %d: %w", l.ID, err)
		}
		p.res.Deleted["modifier_list"]++
	}
	return nil
}

func (p *syncPass) deleteAbsentModifiers() error {
	// Re-filtered through catalog_modifier_list so modifiers of just-deleted
	// lists are already gone.
	var locals []catalogEntity.Modifier
	err := p.tx.
		Joins("JOIN catalog_modifier_list ON catalog_modifier_list.modifier_list_id = catalog_modifier.modifier_list_id").
		Where("catalog_modifier_list.catalog_id = ?", p.catalog.ID).
		Find(&locals).Error
	if err != nil {
		return fmt.Errorf("load modifiers: %w", err)
	}

	plan := Diff(locals, p.modifiers,
		func(m catalogEntity.Modifier) string { return extID(m.ExternalID) },
		func(d decodedModifier) string { return d.id },
	)
	for _, m := range plan.Delete {
		if err := p.deleteModifierRow(m); err != nil {
			return err
		}
	}
	return nil
}

func (p *syncPass) deleteModifierRow(m catalogEntity.Modifier) error {
	if err := p.deleteOverrides(catalogEntity.OwnerModifier, m.ID); err != nil {
		return err
	}
	if err := p.deletePresence(catalogEntity.OwnerModifier, m.ID); err != nil {
		return err
	}
	if err := p.tx.Delete(&catalogEntity.Modifier{}, m.ID).Error; err != nil {
		return fmt.Errorf("delete modifier %d: %w", m.ID, err)
	}
	p.res.Deleted["modifier"]++
	return nil
}

func (p *syncPass) deleteAbsentCategories() error {
	var locals []catalogEntity.Category
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	plan := Diff(locals, p.snap.categories,
		func(c catalogEntity.Category) string { return extID(c.ExternalID) },
		func(o remote.CatalogObject) string { return o.ID },
	)
	for _, c := range plan.Delete {
		if err := p.deleteImages(catalogEntity.OwnerCategory, c.ID); err != nil {
			return err
		}
		if err := p.tx.Delete(&catalogEntity.Category{}, c.ID).Error; err != nil {
			return fmt.Errorf("delete category %d: %w", c.ID, err)
		}
		p.res.Deleted["category"]++
	}
	return nil
}

func (p *syncPass) deleteAbsentItems() error {
	var locals []catalogEntity.Item
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	plan := Diff(locals, p.items,
		func(i catalogEntity.Item) string { return extID(i.ExternalID) },
		func(d decodedItem) string { return d.id },
	)
	for _, i := range plan.Delete {
		if err := p.tx.Where("item_id = ?", i.ID).Delete(&catalogEntity.ItemModifierList{}).Error; err != nil {
			return fmt.Errorf("delete associations of item %d: %w", i.ID, err)
		}
		if err := p.deleteImages(catalogEntity.OwnerItem, i.ID); err != nil {
			return err
		}
		if err := p.deletePresence(catalogEntity.OwnerItem, i.ID); err != nil {
			return err
		}
		if err := p.tx.Delete(&catalogEntity.Item{}, i.ID).Error; err != nil {
			return fmt.Errorf("delete item %d: %w", i.ID, err)
		}
		p.res.Deleted["item"]++
	}
	return nil
}

func (p *syncPass) deleteOverrides(ownerType string, ownerID uint) error {
	err := p.tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&catalogEntity.LocationOverride{}).Error
	if err != nil {
		return fmt.Errorf("delete overrides of %s %d: %w", ownerType, ownerID, err)
	}
	return nil
}

func (p *syncPass) deletePresence(ownerType string, ownerID uint) error {
	err := p.tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&catalogEntity.Presence{}).Error
	if err != nil {
		return fmt.Errorf("delete presence of %s %d: %w", ownerType, ownerID, err)
	}
	return nil
}

func (p *syncPass) deleteImages(ownerType string, ownerID uint) error {
	err := p.tx.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&catalogEntity.Image{}).Error
	if err != nil {
		return fmt.Errorf("delete images of %s %d: %w", ownerType, ownerID, err)
	}
	return nil
}
