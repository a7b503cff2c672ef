package jobs

import (
	"context"
	"log"
	"time"

	"posbridge.GO/config"
	"posbridge.GO/model/entity"
	"posbridge.GO/search"
	catalogService "posbridge.GO/service/catalog"
	"posbridge.GO/service/platform"
)

// CatalogSyncJob runs a full catalog sync pass for every enabled merchant.
// With arguments it limits the pass to the named merchant external ids.
func CatalogSyncJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("catalog sync job: db: %v", err)
		return
	}

	q := db.Where("enabled = ?", true)
	if len(args) > 0 {
		q = q.Where("external_id IN ?", args)
	}
	var merchants []entity.Merchant
	if err := q.Find(&merchants).Error; err != nil {
		log.Printf("catalog sync job: load merchants: %v", err)
		return
	}

	engine := catalogService.NewEngine(db, platform.SharedLocker(), search.GetService())
	for i := range merchants {
		m := &merchants[i]
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		res, err := engine.Sync(ctx, m, platform.APIFor(m))
		cancel()
		if err != nil {
			log.Printf("catalog sync job: merchant %s: %v", m.ExternalID, err)
			continue
		}
		log.Printf("catalog sync job: merchant %s done in %s (changed=%v, warnings=%d)",
			m.ExternalID, res.TotalTime.Round(time.Millisecond), res.Changed(), len(res.Warnings))
	}
}
