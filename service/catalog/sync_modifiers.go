package catalog

import (
	"fmt"

	catalogEntity "posbridge.GO/model/entity/catalog"
	"posbridge.GO/remote"
)

// upsertModifierLists creates/updates the catalog's modifier lists and
// rebuilds the external-id index the modifier and item passes depend on.
func (p *syncPass) upsertModifierLists() error {
	var locals []catalogEntity.ModifierList
	if err := p.tx.Where("catalog_id = ?", p.catalog.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load modifier lists: %w", err)
	}
	byExt := make(map[string]*catalogEntity.ModifierList, len(locals))
	for i := range locals {
		if locals[i].ExternalID != nil {
			byExt[*locals[i].ExternalID] = &locals[i]
		}
	}

	p.modListIDByExt = make(map[string]uint, len(p.snap.modLists))
	for _, obj := range p.snap.modLists {
		data, err := obj.DecodeModifierList()
		if err != nil {
			return err
		}
		if local, ok := byExt[obj.ID]; ok {
			updates := map[string]interface{}{
				"name":           data.Name,
				"selection_type": selectionTypeOrSingle(data.SelectionType),
			}
			if err := p.tx.Model(local).Updates(updates).Error; err != nil {
				return fmt.Errorf("update modifier list %s: %w", obj.ID, err)
			}
			p.modListIDByExt[obj.ID] = local.ID
			p.res.Updated["modifier_list"]++
			continue
		}
		ext := obj.ID
		row := catalogEntity.ModifierList{
			CatalogID:     p.catalog.ID,
			ExternalID:    &ext,
			Name:          data.Name,
			SelectionType: selectionTypeOrSingle(data.SelectionType),
		}
		if err := p.tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create modifier list %s: %w", obj.ID, err)
		}
		p.modListIDByExt[obj.ID] = row.ID
		p.res.Created["modifier_list"]++
	}
	return nil
}

func selectionTypeOrSingle(s string) string {
	if s == "" {
		return "SINGLE"
	}
	return s
}

// upsertModifiers creates/updates modifiers. A modifier whose owning list is
// unknown aborts the pass: applying it would detach it from its list, and a
// later pass cannot repair which list it belonged to.
func (p *syncPass) upsertModifiers() error {
	var locals []catalogEntity.Modifier
	err := p.tx.
		Joins("JOIN catalog_modifier_list ON catalog_modifier_list.modifier_list_id = catalog_modifier.modifier_list_id").
		Where("catalog_modifier_list.catalog_id = ?", p.catalog.ID).
		Find(&locals).Error
	if err != nil {
		return fmt.Errorf("load modifiers: %w", err)
	}
	byExt := make(map[string]*catalogEntity.Modifier, len(locals))
	for i := range locals {
		if locals[i].ExternalID != nil {
			byExt[*locals[i].ExternalID] = &locals[i]
		}
	}

	for ordinal, dec := range p.modifiers {
		listID, ok := p.modListIDByExt[dec.data.ModifierListID]
		if !ok {
			return fmt.Errorf("modifier %s references unknown modifier list %s", dec.id, dec.data.ModifierListID)
		}

		var modID uint
		if local, ok := byExt[dec.id]; ok {
			updates := map[string]interface{}{
				"modifier_list_id":         listID,
				"name":                     dec.data.Name,
				"base_amount":              dec.data.Amount,
				"currency":                 currencyOrUSD(dec.data.Currency),
				"present_at_all_locations": dec.data.Presence.PresentAtAllLocations,
			}
			if err := p.tx.Model(local).Updates(updates).Error; err != nil {
				return fmt.Errorf("update modifier %s: %w", dec.id, err)
			}
			modID = local.ID
			p.res.Updated["modifier"]++
		} else {
			ext := dec.id
			row := catalogEntity.Modifier{
				ModifierListID:        listID,
				ExternalID:            &ext,
				Name:                  dec.data.Name,
				Ordinal:               ordinal,
				BaseAmount:            dec.data.Amount,
				Currency:              currencyOrUSD(dec.data.Currency),
				PresentAtAllLocations: dec.data.Presence.PresentAtAllLocations,
			}
			if err := p.tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create modifier %s: %w", dec.id, err)
			}
			modID = row.ID
			p.res.Created["modifier"]++
		}

		p.replacePresence(catalogEntity.OwnerModifier, modID, dec.id, dec.data.Presence)
		p.replaceOverrides(catalogEntity.OwnerModifier, modID, dec.id, dec.data.Overrides)
	}
	return nil
}

func currencyOrUSD(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}

// replacePresence fully replaces the owner's explicit presence markers.
// Failures are warned and skipped: a stale presence row degrades visibility,
// not correctness, and the next pass repairs it.
func (p *syncPass) replacePresence(ownerType string, ownerID uint, extID string, pd remote.PresenceData) {
	if err := p.deletePresence(ownerType, ownerID); err != nil {
		p.res.warnf("replace presence of %s %s: %v", ownerType, extID, err)
		return
	}
	rows := make([]catalogEntity.Presence, 0, len(pd.PresentAtLocationIDs)+len(pd.AbsentAtLocationIDs))
	for _, loc := range pd.PresentAtLocationIDs {
		rows = append(rows, catalogEntity.Presence{OwnerType: ownerType, OwnerID: ownerID, LocationExternalID: loc, Present: true})
	}
	for _, loc := range pd.AbsentAtLocationIDs {
		rows = append(rows, catalogEntity.Presence{OwnerType: ownerType, OwnerID: ownerID, LocationExternalID: loc, Present: false})
	}
	if len(rows) == 0 {
		return
	}
	if err := p.tx.Create(&rows).Error; err != nil {
		p.res.warnf("replace presence of %s %s: %v", ownerType, extID, err)
	}
}

// replaceOverrides fully replaces the owner's per-location price exceptions.
// Overrides naming a location we have not mirrored are skipped with a
// warning; the rest still land.
func (p *syncPass) replaceOverrides(ownerType string, ownerID uint, extID string, overrides []remote.OverrideData) {
	if err := p.deleteOverrides(ownerType, ownerID); err != nil {
		p.res.warnf("replace overrides of %s %s: %v", ownerType, extID, err)
		return
	}
	for _, o := range overrides {
		locID, ok := p.locationIDByExt[o.LocationID]
		if !ok {
			p.res.warnf("override of %s %s names unknown location %s", ownerType, extID, o.LocationID)
			continue
		}
		row := catalogEntity.LocationOverride{
			OwnerType:  ownerType,
			OwnerID:    ownerID,
			LocationID: locID,
			Amount:     o.Amount,
			Currency:   currencyOrUSD(o.Currency),
		}
		if err := p.tx.Create(&row).Error; err != nil {
			p.res.warnf("save override of %s %s at %s: %v", ownerType, extID, o.LocationID, err)
		}
	}
}
