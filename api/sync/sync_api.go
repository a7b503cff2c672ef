package sync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"posbridge.GO/api"
	"posbridge.GO/model/entity"
	"posbridge.GO/search"
	catalogService "posbridge.GO/service/catalog"
	"posbridge.GO/service/platform"
)

func init() {
	api.RegisterModule(RegisterSyncRoutes)
}

func RegisterSyncRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/catalog")

	// POST /api/catalog/sync – run a full sync pass for one merchant
	g.POST("/sync", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			MerchantID uint `json:"merchant_id"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.MerchantID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "merchant_id is required"})
		}

		var merch entity.Merchant
		if err := db.First(&merch, body.MerchantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		engine := catalogService.NewEngine(db, platform.SharedLocker(), search.GetService())
		res, err := engine.Sync(c.Request().Context(), &merch, platform.APIFor(&merch))
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"created":             res.Created,
			"updated":             res.Updated,
			"deleted":             res.Deleted,
			"warnings":            res.Warnings,
			"changed":             res.Changed(),
			"fetch_ms":            res.FetchTime.Milliseconds(),
			"db_ms":               res.DBTime.Milliseconds(),
			"request_duration_ms": duration,
		})
	})
}
