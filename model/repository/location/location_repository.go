package location

import (
	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/model/entity"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) FindByID(id uint) (*entity.Location, error) {
	var l entity.Location
	err := r.db.Preload("Hours").First(&l, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "location %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepository) FindByExternalID(merchantID uint, externalID string) (*entity.Location, error) {
	var l entity.Location
	err := r.db.
		Where("merchant_id = ? AND external_id = ?", merchantID, externalID).
		Preload("Hours").
		First(&l).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "location %s not found", externalID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// HoursFor returns the location's open periods ordered by weekday and
// position.
func (r *LocationRepository) HoursFor(locationID uint) ([]entity.BusinessHoursPeriod, error) {
	var hours []entity.BusinessHoursPeriod
	err := r.db.
		Where("location_id = ?", locationID).
		Order("day_of_week ASC, position ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}
