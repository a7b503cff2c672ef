package order

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/model/entity"
	orderEntity "posbridge.GO/model/entity/order"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.Merchant{}, &entity.User{}, &entity.AppInstall{}, &entity.Customer{},
		&entity.Location{}, &entity.BusinessHoursPeriod{},
		&orderEntity.Order{}, &orderEntity.LineItem{}, &orderEntity.LineItemModifier{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) *orderEntity.Order {
	o := &orderEntity.Order{
		MerchantID: 1, CustomerID: 1, LocationID: 1,
		ExternalID: "rord-1", ExternalVersion: 1,
		SubtotalAmount: 500, TotalAmount: 500, Currency: "USD",
		LineItems: []orderEntity.LineItem{
			{ExternalUID: "uid-1", CatalogObjectExternalID: "var-1", Name: "Small Latte", Quantity: 1, Amount: 500,
				Modifiers: []orderEntity.LineItemModifier{
					{CatalogObjectExternalID: "mod-1", Name: "Oat Milk", Amount: 75},
				}},
		},
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestOrderRepository_FindByID(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db)

	found, err := repo.FindByID(o.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.ExternalID != "rord-1" {
		t.Errorf("ExternalID = %q, want rord-1", found.ExternalID)
	}
	if len(found.LineItems) != 1 || len(found.LineItems[0].Modifiers) != 1 {
		t.Errorf("line items = %+v, want one line with one modifier", found.LineItems)
	}
}

func TestOrderRepository_FindByID_NotFound(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.FindByID(999)
	if !errors.Is(err, apperr.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestOrderRepository_FindByExternalID(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	seedOrder(t, db)

	found, err := repo.FindByExternalID(1, "rord-1")
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if found.SubtotalAmount != 500 {
		t.Errorf("SubtotalAmount = %d, want 500", found.SubtotalAmount)
	}

	if _, err := repo.FindByExternalID(2, "rord-1"); !errors.Is(err, apperr.NotFound) {
		t.Errorf("wrong merchant err = %v, want NotFound", err)
	}
}

func TestOrderRepository_ReplaceLineItems(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db)

	replacement := []orderEntity.LineItem{
		{ExternalUID: "uid-2", CatalogObjectExternalID: "var-2", Name: "Mocha", Quantity: 2, Amount: 1200},
		{ExternalUID: "uid-3", CatalogObjectExternalID: "var-3", Name: "Scone", Quantity: 1, Amount: 300},
	}
	if err := repo.ReplaceLineItems(o.ID, replacement); err != nil {
		t.Fatalf("ReplaceLineItems: %v", err)
	}

	found, err := repo.FindByID(o.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(found.LineItems) != 2 {
		t.Fatalf("got %d line items, want 2", len(found.LineItems))
	}
	for _, li := range found.LineItems {
		if li.ExternalUID == "uid-1" {
			t.Error("old line item survived the replace")
		}
	}

	var orphans int64
	if err := db.Model(&orderEntity.LineItemModifier{}).Count(&orphans).Error; err != nil {
		t.Fatalf("count modifiers: %v", err)
	}
	if orphans != 0 {
		t.Errorf("modifier rows = %d, want 0 after replacing their lines", orphans)
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db)

	if err := repo.Delete(o.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(o.ID); !errors.Is(err, apperr.NotFound) {
		t.Errorf("err = %v, want NotFound after delete", err)
	}
	var lines int64
	if err := db.Model(&orderEntity.LineItem{}).Count(&lines).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Errorf("line item rows = %d, want 0", lines)
	}
}

func TestOrderRepository_UpdateFields(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db)

	err := repo.UpdateFields(o.ID, map[string]interface{}{
		"fulfillment_status": orderEntity.StateReserved,
		"external_version":   int64(7),
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	found, err := repo.FindByID(o.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.FulfillmentStatus != orderEntity.StateReserved || found.ExternalVersion != 7 {
		t.Errorf("order = %s v%d, want reserved v7", found.FulfillmentStatus, found.ExternalVersion)
	}
}

func TestOrderRepository_NotFoundMessageKeepsPercentLiteral(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.FindByExternalID(1, "rord-100%")
	if !errors.Is(err, apperr.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if !strings.Contains(err.Error(), "rord-100%") {
		t.Errorf("message %q must carry the id verbatim", err.Error())
	}
}
