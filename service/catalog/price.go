package catalog

import (
	"gorm.io/gorm"

	catalogEntity "posbridge.GO/model/entity/catalog"
)

// EffectiveAmount resolves the price of a variation or modifier at a
// location: the location override when one exists, the base amount
// otherwise.
func EffectiveAmount(db *gorm.DB, ownerType string, ownerID uint, locationID uint, baseAmount int64) (int64, error) {
	if locationID == 0 {
		return baseAmount, nil
	}
	var o catalogEntity.LocationOverride
	err := db.Where("owner_type = ? AND owner_id = ? AND location_id = ?", ownerType, ownerID, locationID).
		First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return baseAmount, nil
	}
	if err != nil {
		return 0, err
	}
	return o.Amount, nil
}

// VariationAmount is EffectiveAmount for a variation row.
func VariationAmount(db *gorm.DB, v *catalogEntity.Variation, locationID uint) (int64, error) {
	return EffectiveAmount(db, catalogEntity.OwnerVariation, v.ID, locationID, v.BaseAmount)
}

// ModifierAmount is EffectiveAmount for a modifier row.
func ModifierAmount(db *gorm.DB, m *catalogEntity.Modifier, locationID uint) (int64, error) {
	return EffectiveAmount(db, catalogEntity.OwnerModifier, m.ID, locationID, m.BaseAmount)
}
