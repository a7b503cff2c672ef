package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"posbridge.GO/config"
	"posbridge.GO/model/entity"
	"posbridge.GO/search"
	catalogService "posbridge.GO/service/catalog"
	"posbridge.GO/service/platform"
)

var syncMerchant string

var catalogSyncCmd = &cobra.Command{
	Use:   "catalog:sync",
	Short: "Run a full catalog sync pass for one merchant",
	Run: func(cmd *cobra.Command, args []string) {
		config.LoadAppConfig()
		config.InitRedis()

		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		var merch entity.Merchant
		if err := db.Where("external_id = ?", syncMerchant).First(&merch).Error; err != nil {
			fmt.Printf("Merchant %s not found: %v\n", syncMerchant, err)
			return
		}

		engine := catalogService.NewEngine(db, platform.SharedLocker(), search.GetService())
		res, err := engine.Sync(context.Background(), &merch, platform.APIFor(&merch))
		if err != nil {
			fmt.Printf("Sync failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Sync Report ===
Created:    %v
Updated:    %v
Deleted:    %v
Warnings:   %d
Total time: %s
  - Fetch:  %s
  - DB:     %s
===================
`, res.Created, res.Updated, res.Deleted, len(res.Warnings),
			res.TotalTime.Round(time.Millisecond),
			res.FetchTime.Round(time.Millisecond),
			res.DBTime.Round(time.Millisecond))
	},
}

func init() {
	catalogSyncCmd.Flags().StringVarP(&syncMerchant, "merchant", "m", "", "Merchant external id (required)")
	catalogSyncCmd.MarkFlagRequired("merchant")
	rootCmd.AddCommand(catalogSyncCmd)
}
