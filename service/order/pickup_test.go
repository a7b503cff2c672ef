package order

import (
	"errors"
	"testing"
	"time"

	"posbridge.GO/core/apperr"
	"posbridge.GO/model/entity"
)

// monday is a fixed Monday 09:00 UTC anchor for pickup tests.
var monday = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func mondayShop() *entity.Location {
	return &entity.Location{
		ID: 1, Name: "Downtown", Timezone: "UTC", Enabled: true,
		Hours: []entity.BusinessHoursPeriod{
			{LocationID: 1, DayOfWeek: 1, OpensAt: "08:00", ClosesAt: "17:00"},
		},
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestResolvePickupTime_ExplicitValid(t *testing.T) {
	want := at(10, 0)
	got, err := resolvePickupTime(mondayShop(), &want, monday, 20*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("resolvePickupTime: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("pickup = %v, want %v", got, want)
	}
}

func TestResolvePickupTime_ExplicitInsideLeadWindow(t *testing.T) {
	explicit := at(9, 10) // 10 minutes out, lead is 20
	_, err := resolvePickupTime(mondayShop(), &explicit, monday, 20*time.Minute, 7*24*time.Hour)
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}

func TestResolvePickupTime_ExplicitBeyondHorizon(t *testing.T) {
	explicit := monday.AddDate(0, 0, 8)
	_, err := resolvePickupTime(mondayShop(), &explicit, monday, 20*time.Minute, 7*24*time.Hour)
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}

func TestResolvePickupTime_ExplicitOutsideHours(t *testing.T) {
	explicit := at(18, 0) // shop closes at 17:00
	_, err := resolvePickupTime(mondayShop(), &explicit, monday, 20*time.Minute, 7*24*time.Hour)
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}

func TestResolvePickupTime_ComputedDuringOpenHours(t *testing.T) {
	got, err := resolvePickupTime(mondayShop(), nil, monday, 20*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("resolvePickupTime: %v", err)
	}
	if want := at(9, 20); !got.Equal(want) {
		t.Errorf("pickup = %v, want now+lead %v", got, want)
	}
}

func TestResolvePickupTime_ComputedBeforeOpening(t *testing.T) {
	now := at(6, 0)
	got, err := resolvePickupTime(mondayShop(), nil, now, 20*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("resolvePickupTime: %v", err)
	}
	if want := at(8, 0); !got.Equal(want) {
		t.Errorf("pickup = %v, want opening time %v", got, want)
	}
}

func TestResolvePickupTime_ComputedRollsToNextOpenDay(t *testing.T) {
	now := at(18, 0) // after close, shop only opens Mondays
	got, err := resolvePickupTime(mondayShop(), nil, now, 20*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("resolvePickupTime: %v", err)
	}
	want := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("pickup = %v, want next Monday opening %v", got, want)
	}
}

func TestResolvePickupTime_NoSlotWithinHorizon(t *testing.T) {
	now := at(18, 0)
	_, err := resolvePickupTime(mondayShop(), nil, now, 20*time.Minute, 2*time.Hour)
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}

func TestResolvePickupTime_NoHoursConfigured(t *testing.T) {
	loc := mondayShop()
	loc.Hours = nil
	_, err := resolvePickupTime(loc, nil, monday, 20*time.Minute, 7*24*time.Hour)
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}
