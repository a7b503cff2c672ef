package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"posbridge.GO/model/entity"
	"posbridge.GO/remote"
)

// SyncLocations mirrors the merchant's remote locations and their business
// hours. Locations absent from the remote list are disabled, not deleted —
// historical orders keep referencing them.
func (e *Engine) SyncLocations(ctx context.Context, merchant *entity.Merchant, api remote.API, res *SyncResult) error {
	remotes, err := api.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	var locals []entity.Location
	if err := e.db.Where("merchant_id = ?", merchant.ID).Find(&locals).Error; err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	plan := Diff(locals, remotes,
		func(l entity.Location) string { return l.ExternalID },
		func(r remote.Location) string { return r.ID },
	)

	return e.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range plan.Create {
			loc := entity.Location{
				MerchantID: merchant.ID,
				ExternalID: r.ID,
				Name:       r.Name,
				Timezone:   timezoneOrUTC(r.Timezone),
				Enabled:    r.Status != "INACTIVE",
			}
			if err := tx.Create(&loc).Error; err != nil {
				return fmt.Errorf("create location %s: %w", r.ID, err)
			}
			if err := replaceHours(tx, loc.ID, r.Hours); err != nil {
				return err
			}
			res.Created["location"]++
		}
		for _, p := range plan.Update {
			updates := map[string]interface{}{
				"name":     p.Remote.Name,
				"timezone": timezoneOrUTC(p.Remote.Timezone),
				"enabled":  p.Remote.Status != "INACTIVE",
			}
			if err := tx.Model(&entity.Location{}).Where("location_id = ?", p.Local.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update location %s: %w", p.Remote.ID, err)
			}
			if err := replaceHours(tx, p.Local.ID, p.Remote.Hours); err != nil {
				return err
			}
			res.Updated["location"]++
		}
		for _, l := range plan.Delete {
			if err := tx.Model(&entity.Location{}).Where("location_id = ?", l.ID).Update("enabled", false).Error; err != nil {
				return fmt.Errorf("disable location %s: %w", l.ExternalID, err)
			}
			res.Updated["location"]++
		}
		return nil
	})
}

// MirrorLocation upserts a single remote location (used when order creation
// has to resolve the merchant's main location before a full sync ran).
func MirrorLocation(db *gorm.DB, merchantID uint, r *remote.Location) (*entity.Location, error) {
	var loc entity.Location
	err := db.Where("merchant_id = ? AND external_id = ?", merchantID, r.ID).First(&loc).Error
	if err == gorm.ErrRecordNotFound {
		loc = entity.Location{
			MerchantID: merchantID,
			ExternalID: r.ID,
			Name:       r.Name,
			Timezone:   timezoneOrUTC(r.Timezone),
			Enabled:    r.Status != "INACTIVE",
		}
		if err := db.Create(&loc).Error; err != nil {
			return nil, fmt.Errorf("mirror location %s: %w", r.ID, err)
		}
		if err := replaceHours(db, loc.ID, r.Hours); err != nil {
			return nil, err
		}
		return &loc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load location %s: %w", r.ID, err)
	}
	return &loc, nil
}

func replaceHours(tx *gorm.DB, locationID uint, hours []remote.Period) error {
	if err := tx.Where("location_id = ?", locationID).Delete(&entity.BusinessHoursPeriod{}).Error; err != nil {
		return fmt.Errorf("clear hours for location %d: %w", locationID, err)
	}
	if len(hours) == 0 {
		return nil
	}
	rows := make([]entity.BusinessHoursPeriod, 0, len(hours))
	for i, h := range hours {
		rows = append(rows, entity.BusinessHoursPeriod{
			LocationID: locationID,
			DayOfWeek:  h.DayOfWeek,
			OpensAt:    h.StartLocalTime,
			ClosesAt:   h.EndLocalTime,
			Position:   i,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("create hours for location %d: %w", locationID, err)
	}
	return nil
}

func timezoneOrUTC(tz string) string {
	if tz == "" {
		return "UTC"
	}
	return tz
}
