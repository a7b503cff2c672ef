package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"posbridge.GO/core/lock"
	"posbridge.GO/model/entity"
	catalogEntity "posbridge.GO/model/entity/catalog"
	"posbridge.GO/remote"
)

func syncTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.Merchant{}, &entity.Location{}, &entity.BusinessHoursPeriod{},
		&catalogEntity.Catalog{}, &catalogEntity.Category{}, &catalogEntity.Item{},
		&catalogEntity.Variation{}, &catalogEntity.ModifierList{}, &catalogEntity.Modifier{},
		&catalogEntity.ItemModifierList{}, &catalogEntity.Image{},
		&catalogEntity.LocationOverride{}, &catalogEntity.Presence{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testMerchant(t *testing.T, db *gorm.DB) *entity.Merchant {
	m := &entity.Merchant{Name: "Beanhouse", ExternalID: "merch-1", AccessToken: "tok", Enabled: true, AppEnabled: true}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	return m
}

// fakeAPI is an in-memory remote.API serving a fixed catalog snapshot.
type fakeAPI struct {
	objects   map[string][]remote.CatalogObject
	locations []remote.Location
}

func (f *fakeAPI) ListCatalogObjects(_ context.Context, objType string) ([]remote.CatalogObject, error) {
	return f.objects[objType], nil
}

func (f *fakeAPI) ListLocations(_ context.Context) ([]remote.Location, error) {
	return f.locations, nil
}

func (f *fakeAPI) RetrieveLocation(_ context.Context, _ string) (*remote.Location, error) {
	return nil, errors.New("not supported in catalog tests")
}

func (f *fakeAPI) CreateOrder(_ context.Context, _ remote.OrderSpec, _ string) (*remote.Order, error) {
	return nil, errors.New("not supported in catalog tests")
}

func (f *fakeAPI) UpdateOrder(_ context.Context, _ string, _ remote.OrderPatch, _ string) (*remote.Order, error) {
	return nil, errors.New("not supported in catalog tests")
}

func (f *fakeAPI) ClearOrderFields(_ context.Context, _ string, _ int64, _ []string) (*remote.Order, error) {
	return nil, errors.New("not supported in catalog tests")
}

func (f *fakeAPI) CreatePayment(_ context.Context, _ remote.PaymentSpec) (*remote.Payment, error) {
	return nil, errors.New("not supported in catalog tests")
}

func obj(id, typ string, data map[string]interface{}) remote.CatalogObject {
	return remote.CatalogObject{ID: id, Type: typ, Data: data}
}

// coffeeShopAPI is one category, one item with two variations and a milk
// modifier list, at a single location.
func coffeeShopAPI() *fakeAPI {
	return &fakeAPI{
		locations: []remote.Location{
			{
				ID: "loc-1", Name: "Downtown", Timezone: "UTC", Status: "ACTIVE",
				Hours: []remote.Period{{DayOfWeek: 1, StartLocalTime: "08:00", EndLocalTime: "17:00"}},
			},
		},
		objects: map[string][]remote.CatalogObject{
			remote.TypeCategory: {
				obj("cat-drinks", remote.TypeCategory, map[string]interface{}{"name": "Drinks"}),
			},
			remote.TypeItem: {
				obj("item-latte", remote.TypeItem, map[string]interface{}{
					"name":                     "Latte",
					"description":              "Espresso with steamed milk",
					"category_id":              "cat-drinks",
					"present_at_all_locations": true,
					"variations": []map[string]interface{}{
						{"id": "var-small", "name": "Small", "amount": 500, "currency": "USD"},
						{"id": "var-large", "name": "Large", "amount": 700, "currency": "USD",
							"location_overrides": []map[string]interface{}{
								{"location_id": "loc-1", "amount": 650},
							}},
					},
					"modifier_list_info": []map[string]interface{}{
						{"modifier_list_id": "ml-milk", "min_selected": 0, "max_selected": 1, "enabled": true},
					},
				}),
			},
			remote.TypeModifierList: {
				obj("ml-milk", remote.TypeModifierList, map[string]interface{}{
					"name": "Milk", "selection_type": "SINGLE",
				}),
			},
			remote.TypeModifier: {
				obj("mod-oat", remote.TypeModifier, map[string]interface{}{
					"name": "Oat Milk", "modifier_list_id": "ml-milk", "amount": 75,
					"present_at_all_locations": true,
				}),
			},
		},
	}
}

func testEngine(db *gorm.DB) *Engine {
	return NewEngine(db, lock.New(nil, 0), nil)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestEngineSync_CreatesFullMirror(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()

	res, err := testEngine(db).Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	want := map[string]int{"location": 1, "category": 1, "item": 1, "variation": 2, "modifier_list": 1, "modifier": 1}
	for kind, n := range want {
		if res.Created[kind] != n {
			t.Errorf("Created[%s] = %d, want %d", kind, res.Created[kind], n)
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}

	var item catalogEntity.Item
	if err := db.Where("external_id = ?", "item-latte").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.Name != "Latte" || !item.PresentAtAllLocations {
		t.Errorf("item = %+v, want Latte present at all locations", item)
	}

	var variations []catalogEntity.Variation
	if err := db.Where("item_id = ?", item.ID).Order("ordinal").Find(&variations).Error; err != nil {
		t.Fatalf("load variations: %v", err)
	}
	if len(variations) != 2 {
		t.Fatalf("got %d variations, want 2", len(variations))
	}
	if variations[0].BaseAmount != 500 || variations[1].BaseAmount != 700 {
		t.Errorf("amounts = %d/%d, want 500/700", variations[0].BaseAmount, variations[1].BaseAmount)
	}
	if variations[0].Ordinal != 0 || variations[1].Ordinal != 1 {
		t.Errorf("ordinals = %d/%d, want snapshot order", variations[0].Ordinal, variations[1].Ordinal)
	}

	var assoc catalogEntity.ItemModifierList
	if err := db.Where("item_id = ?", item.ID).First(&assoc).Error; err != nil {
		t.Fatalf("load association: %v", err)
	}
	if assoc.MaxSelected != 1 || !assoc.Enabled {
		t.Errorf("association = %+v, want max 1 enabled", assoc)
	}

	var loc entity.Location
	if err := db.Where("external_id = ?", "loc-1").First(&loc).Error; err != nil {
		t.Fatalf("load location: %v", err)
	}
	var override catalogEntity.LocationOverride
	err = db.Where("owner_type = ? AND owner_id = ? AND location_id = ?",
		catalogEntity.OwnerVariation, variations[1].ID, loc.ID).First(&override).Error
	if err != nil {
		t.Fatalf("load override: %v", err)
	}
	if override.Amount != 650 {
		t.Errorf("override amount = %d, want 650", override.Amount)
	}
}

func TestEngineSync_SecondPassIsStable(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	eng := testEngine(db)

	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	res, err := eng.Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	for kind, n := range res.Created {
		if n > 0 {
			t.Errorf("second pass Created[%s] = %d, want 0", kind, n)
		}
	}
	for kind, n := range res.Deleted {
		if n > 0 {
			t.Errorf("second pass Deleted[%s] = %d, want 0", kind, n)
		}
	}
	if n := countRows(t, db, &catalogEntity.Variation{}); n != 2 {
		t.Errorf("variation rows = %d, want 2", n)
	}
	if n := countRows(t, db, &catalogEntity.ItemModifierList{}); n != 1 {
		t.Errorf("association rows = %d, want 1", n)
	}
}

func TestEngineSync_RemovedItemCascades(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	eng := testEngine(db)

	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	api.objects[remote.TypeItem] = nil
	res, err := eng.Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	if res.Deleted["item"] != 1 || res.Deleted["variation"] != 2 {
		t.Errorf("Deleted = %v, want 1 item and 2 variations", res.Deleted)
	}
	if n := countRows(t, db, &catalogEntity.Item{}); n != 0 {
		t.Errorf("item rows = %d, want 0", n)
	}
	if n := countRows(t, db, &catalogEntity.ItemModifierList{}); n != 0 {
		t.Errorf("association rows = %d, want 0", n)
	}
	if n := countRows(t, db, &catalogEntity.LocationOverride{}); n != 0 {
		t.Errorf("override rows = %d, want 0", n)
	}
	// The milk list is still published; it must survive its item.
	if n := countRows(t, db, &catalogEntity.ModifierList{}); n != 1 {
		t.Errorf("modifier list rows = %d, want 1", n)
	}
	if n := countRows(t, db, &catalogEntity.Modifier{}); n != 1 {
		t.Errorf("modifier rows = %d, want 1", n)
	}
}

func TestEngineSync_RemovedModifierListCascades(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	eng := testEngine(db)

	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	api.objects[remote.TypeModifierList] = nil
	api.objects[remote.TypeModifier] = nil
	res, err := eng.Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	if res.Deleted["modifier_list"] != 1 || res.Deleted["modifier"] != 1 {
		t.Errorf("Deleted = %v, want the list and its modifier", res.Deleted)
	}
	// The item now references a list the platform no longer publishes; that is
	// a warning, not a failure.
	if n := countRows(t, db, &catalogEntity.Item{}); n != 1 {
		t.Errorf("item rows = %d, want 1", n)
	}
	if n := countRows(t, db, &catalogEntity.ItemModifierList{}); n != 0 {
		t.Errorf("association rows = %d, want 0", n)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the dangling modifier list reference")
	}
}

func TestEngineSync_UnknownCategoryAbortsPass(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.objects[remote.TypeCategory] = nil

	_, err := testEngine(db).Sync(context.Background(), merch, api)
	if err == nil {
		t.Fatal("expected an error for an item referencing an unknown category")
	}
	// The transaction rolled back: nothing of the item landed.
	if n := countRows(t, db, &catalogEntity.Item{}); n != 0 {
		t.Errorf("item rows = %d, want 0 after rollback", n)
	}
	if n := countRows(t, db, &catalogEntity.ModifierList{}); n != 0 {
		t.Errorf("modifier list rows = %d, want 0 after rollback", n)
	}
}

func TestEngineSync_UnknownModifierListAbortsPass(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.objects[remote.TypeModifierList] = nil

	_, err := testEngine(db).Sync(context.Background(), merch, api)
	if err == nil {
		t.Fatal("expected an error for a modifier referencing an unknown list")
	}
}

func TestEngineSync_OverrideAtUnknownLocationWarns(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	items := api.objects[remote.TypeItem]
	items[0].Data["variations"] = []map[string]interface{}{
		{"id": "var-small", "name": "Small", "amount": 500,
			"location_overrides": []map[string]interface{}{
				{"location_id": "loc-unmirrored", "amount": 450},
			}},
	}

	res, err := testEngine(db).Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Created["variation"] != 1 {
		t.Errorf("Created[variation] = %d, want 1 despite the bad override", res.Created["variation"])
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the unknown override location")
	}
	if n := countRows(t, db, &catalogEntity.LocationOverride{}); n != 0 {
		t.Errorf("override rows = %d, want 0", n)
	}
}

func TestEngineSync_LocallyOriginatedRowsSurvive(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	eng := testEngine(db)

	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	var cat catalogEntity.Catalog
	if err := db.Where("merchant_id = ?", merch.ID).First(&cat).Error; err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	var category catalogEntity.Category
	if err := db.Where("catalog_id = ?", cat.ID).First(&category).Error; err != nil {
		t.Fatalf("load category: %v", err)
	}
	local := catalogEntity.Item{CatalogID: cat.ID, CategoryID: category.ID, Name: "House Special", Enabled: true}
	if err := db.Create(&local).Error; err != nil {
		t.Fatalf("create local item: %v", err)
	}

	res, err := eng.Sync(context.Background(), merch, api)
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if res.Deleted["item"] != 0 {
		t.Errorf("Deleted[item] = %d, want 0", res.Deleted["item"])
	}
	var reloaded catalogEntity.Item
	if err := db.First(&reloaded, local.ID).Error; err != nil {
		t.Errorf("locally originated item was deleted: %v", err)
	}
}

func TestSyncLocations_AbsentLocationDisabledNotDeleted(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.locations = append(api.locations, remote.Location{ID: "loc-2", Name: "Airport", Timezone: "UTC", Status: "ACTIVE"})
	eng := testEngine(db)

	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	api.locations = api.locations[:1]
	if _, err := eng.Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	var loc entity.Location
	if err := db.Where("external_id = ?", "loc-2").First(&loc).Error; err != nil {
		t.Fatalf("absent location must keep its row: %v", err)
	}
	if loc.Enabled {
		t.Error("absent location should be disabled")
	}
}

func TestEffectiveAmount(t *testing.T) {
	db := syncTestDB(t)

	v := catalogEntity.Variation{ItemID: 1, Name: "Large", BaseAmount: 700, Currency: "USD"}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("create variation: %v", err)
	}
	override := catalogEntity.LocationOverride{
		OwnerType: catalogEntity.OwnerVariation, OwnerID: v.ID, LocationID: 42, Amount: 650, Currency: "USD",
	}
	if err := db.Create(&override).Error; err != nil {
		t.Fatalf("create override: %v", err)
	}

	got, err := VariationAmount(db, &v, 42)
	if err != nil {
		t.Fatalf("VariationAmount: %v", err)
	}
	if got != 650 {
		t.Errorf("amount at overridden location = %d, want 650", got)
	}

	got, err = VariationAmount(db, &v, 7)
	if err != nil {
		t.Fatalf("VariationAmount: %v", err)
	}
	if got != 700 {
		t.Errorf("amount at plain location = %d, want base 700", got)
	}

	got, err = VariationAmount(db, &v, 0)
	if err != nil {
		t.Fatalf("VariationAmount: %v", err)
	}
	if got != 700 {
		t.Errorf("amount with no location = %d, want base 700", got)
	}
}

func TestSyncLocations_InactiveLocationMirroredDisabled(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.locations = append(api.locations, remote.Location{ID: "loc-closed", Name: "Old Mill", Timezone: "UTC", Status: "INACTIVE"})

	if _, err := testEngine(db).Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var loc entity.Location
	if err := db.Where("external_id = ?", "loc-closed").First(&loc).Error; err != nil {
		t.Fatalf("load location: %v", err)
	}
	if loc.Enabled {
		t.Error("inactive remote location must be mirrored disabled")
	}
}

func TestEngineSync_DisabledAssociationStoredDisabled(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.objects[remote.TypeItem][0].Data["modifier_list_info"] = []map[string]interface{}{
		{"modifier_list_id": "ml-milk", "min_selected": 0, "max_selected": 1, "enabled": false},
	}

	if _, err := testEngine(db).Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var link catalogEntity.ItemModifierList
	if err := db.First(&link).Error; err != nil {
		t.Fatalf("load association: %v", err)
	}
	if link.Enabled {
		t.Error("remote enabled=false association must be stored disabled")
	}
}

func TestEngineSync_ItemOrdinalsCountWithinCategory(t *testing.T) {
	db := syncTestDB(t)
	merch := testMerchant(t, db)
	api := coffeeShopAPI()
	api.objects[remote.TypeCategory] = append(api.objects[remote.TypeCategory],
		obj("cat-food", remote.TypeCategory, map[string]interface{}{"name": "Food"}))
	// Interleave categories in the snapshot: latte(drinks), bagel(food),
	// mocha(drinks).
	api.objects[remote.TypeItem] = append(api.objects[remote.TypeItem],
		obj("item-bagel", remote.TypeItem, map[string]interface{}{
			"name": "Bagel", "category_id": "cat-food", "present_at_all_locations": true,
			"variations": []map[string]interface{}{
				{"id": "var-bagel", "name": "Regular", "amount": 300, "currency": "USD"},
			},
		}),
		obj("item-mocha", remote.TypeItem, map[string]interface{}{
			"name": "Mocha", "category_id": "cat-drinks", "present_at_all_locations": true,
			"variations": []map[string]interface{}{
				{"id": "var-mocha", "name": "Regular", "amount": 600, "currency": "USD"},
			},
		}),
	)

	if _, err := testEngine(db).Sync(context.Background(), merch, api); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ordinals := map[string]int{}
	var items []catalogEntity.Item
	if err := db.Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	for _, it := range items {
		ordinals[it.Name] = it.Ordinal
	}
	if ordinals["Latte"] != 0 || ordinals["Mocha"] != 1 {
		t.Errorf("drinks ordinals = %d/%d, want 0/1 within the category", ordinals["Latte"], ordinals["Mocha"])
	}
	if ordinals["Bagel"] != 0 {
		t.Errorf("Bagel ordinal = %d, want 0 in its own category", ordinals["Bagel"])
	}
}
