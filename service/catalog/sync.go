package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"posbridge.GO/core/cache"
	"posbridge.GO/core/lock"
	"posbridge.GO/model/entity"
	catalogEntity "posbridge.GO/model/entity/catalog"
	"posbridge.GO/remote"
	"posbridge.GO/search"
)

// SyncResult holds counters and timing from one sync pass.
type SyncResult struct {
	Created   map[string]int
	Updated   map[string]int
	Deleted   map[string]int
	Warnings  []string
	FetchTime time.Duration
	DBTime    time.Duration
	TotalTime time.Duration
}

func newSyncResult() *SyncResult {
	return &SyncResult{
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Deleted: make(map[string]int),
	}
}

func (r *SyncResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Changed reports whether the pass wrote anything.
func (r *SyncResult) Changed() bool {
	for _, m := range []map[string]int{r.Created, r.Updated, r.Deleted} {
		for _, n := range m {
			if n > 0 {
				return true
			}
		}
	}
	return false
}

// Engine runs full catalog sync passes: diff the remote snapshot against the
// local mirror and apply minimal create/update/delete operations in
// dependency order, all under one transaction per merchant catalog.
type Engine struct {
	db     *gorm.DB
	locker *lock.Locker
	index  *search.Service
}

// NewEngine builds a sync engine. index may be nil to skip search indexing.
func NewEngine(db *gorm.DB, locker *lock.Locker, index *search.Service) *Engine {
	return &Engine{db: db, locker: locker, index: index}
}

// snapshot is the full remote catalog state for one pass.
type snapshot struct {
	categories []remote.CatalogObject
	items      []remote.CatalogObject
	modLists   []remote.CatalogObject
	modifiers  []remote.CatalogObject
}

// syncPass carries per-pass state through the delete and upsert phases.
type syncPass struct {
	tx      *gorm.DB
	catalog *catalogEntity.Catalog
	snap    *snapshot
	res     *SyncResult

	// snapshot objects decoded once, shared by all phases
	items     []decodedItem
	modifiers []decodedModifier

	// local location id by remote external id, for override mapping
	locationIDByExt map[string]uint
	// local modifier list id by external id, rebuilt after upsert
	modListIDByExt map[string]uint
	// local category id by external id, rebuilt after upsert
	categoryIDByExt map[string]uint
}

// Sync runs one pass for the merchant. Passes for the same catalog are
// mutually exclusive; a second caller blocks on the per-catalog lock.
func (e *Engine) Sync(ctx context.Context, merchant *entity.Merchant, api remote.API) (*SyncResult, error) {
	release, err := e.locker.Acquire(ctx, fmt.Sprintf("catalog:%d", merchant.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	startTotal := time.Now()
	res := newSyncResult()

	if err := e.SyncLocations(ctx, merchant, api, res); err != nil {
		return nil, err
	}

	startFetch := time.Now()
	snap, err := fetchSnapshot(ctx, api)
	if err != nil {
		return nil, err
	}
	res.FetchTime = time.Since(startFetch)

	cat, err := e.ensureCatalog(merchant.ID)
	if err != nil {
		return nil, err
	}

	locIDs, err := e.locationIDsByExt(merchant.ID)
	if err != nil {
		return nil, err
	}

	startDB := time.Now()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		pass := &syncPass{
			tx:              tx,
			catalog:         cat,
			snap:            snap,
			res:             res,
			locationIDByExt: locIDs,
		}
		if err := pass.deleteAbsent(); err != nil {
			return err
		}
		if err := pass.upsertModifierLists(); err != nil {
			return err
		}
		if err := pass.upsertModifiers(); err != nil {
			return err
		}
		if err := pass.upsertCategories(); err != nil {
			return err
		}
		if err := pass.upsertItems(); err != nil {
			return err
		}
		return tx.Model(cat).Update("synced_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("catalog sync merchant %d: %w", merchant.ID, err)
	}
	res.DBTime = time.Since(startDB)

	// Post-pass: read caches and the search index see the new mirror.
	cache.GetInstance().DeleteByTag(fmt.Sprintf("catalog:%d", cat.ID))
	e.reindex(ctx, cat.ID)

	res.TotalTime = time.Since(startTotal)
	return res, nil
}

func fetchSnapshot(ctx context.Context, api remote.API) (*snapshot, error) {
	snap := &snapshot{}
	var err error
	if snap.categories, err = api.ListCatalogObjects(ctx, remote.TypeCategory); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if snap.items, err = api.ListCatalogObjects(ctx, remote.TypeItem); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if snap.modLists, err = api.ListCatalogObjects(ctx, remote.TypeModifierList); err != nil {
		return nil, fmt.Errorf("list modifier lists: %w", err)
	}
	if snap.modifiers, err = api.ListCatalogObjects(ctx, remote.TypeModifier); err != nil {
		return nil, fmt.Errorf("list modifiers: %w", err)
	}
	return snap, nil
}

func (e *Engine) ensureCatalog(merchantID uint) (*catalogEntity.Catalog, error) {
	var cat catalogEntity.Catalog
	err := e.db.Where("merchant_id = ?", merchantID).First(&cat).Error
	if err == gorm.ErrRecordNotFound {
		cat = catalogEntity.Catalog{MerchantID: merchantID}
		if err := e.db.Create(&cat).Error; err != nil {
			return nil, fmt.Errorf("create catalog: %w", err)
		}
		return &cat, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &cat, nil
}

func (e *Engine) locationIDsByExt(merchantID uint) (map[string]uint, error) {
	var locs []entity.Location
	if err := e.db.Where("merchant_id = ?", merchantID).Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	m := make(map[string]uint, len(locs))
	for _, l := range locs {
		m[l.ExternalID] = l.ID
	}
	return m, nil
}

// reindex pushes the catalog's items into the search index, best-effort.
func (e *Engine) reindex(ctx context.Context, catalogID uint) {
	if e.index == nil || !e.index.Enabled() {
		return
	}
	type row struct {
		ItemID             uint
		ItemExternalID     *string
		Name               string
		Description        string
		Enabled            bool
		CategoryExternalID *string
	}
	var rows []row
	err := e.db.Table("catalog_item").
		Select("catalog_item.item_id AS item_id, catalog_item.external_id AS item_external_id, catalog_item.name, catalog_item.description, catalog_item.enabled, catalog_category.external_id AS category_external_id").
		Joins("JOIN catalog_category ON catalog_category.category_id = catalog_item.category_id").
		Where("catalog_item.catalog_id = ?", catalogID).
		Scan(&rows).Error
	if err != nil {
		log.Printf("catalog sync: reindex load catalog %d: %v", catalogID, err)
		return
	}
	docs := make([]search.ItemDoc, 0, len(rows))
	for _, r := range rows {
		doc := search.ItemDoc{ItemID: r.ItemID, Name: r.Name, Description: r.Description, Enabled: r.Enabled}
		if r.ItemExternalID != nil {
			doc.ExternalID = *r.ItemExternalID
		}
		if r.CategoryExternalID != nil {
			doc.CategoryExternalID = *r.CategoryExternalID
		}
		docs = append(docs, doc)
	}
	e.index.IndexItems(ctx, catalogID, docs)
}
