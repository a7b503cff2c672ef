package order

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"posbridge.GO/api"
	orderService "posbridge.GO/service/order"
	"posbridge.GO/service/platform"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

var (
	managerOnce sync.Once
	manager     *orderService.Manager
)

func getManager(db *gorm.DB) *orderService.Manager {
	managerOnce.Do(func() {
		manager = orderService.NewManager(db, platform.SharedLocker(), platform.APIFor)
	})
	return manager
}

func orderID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/orders")
	m := getManager(db)

	// POST /api/orders – open a draft order
	g.POST("", func(c echo.Context) error {
		var body struct {
			CustomerID         uint                              `json:"customer_id"`
			MerchantID         uint                              `json:"merchant_id"`
			LocationExternalID string                            `json:"location_external_id"`
			Selections         []orderService.VariationSelection `json:"selections"`
			IdempotencyKey     string                            `json:"idempotency_key"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		o, err := m.Create(c.Request().Context(), body.CustomerID, body.MerchantID, body.LocationExternalID, body.Selections, body.IdempotencyKey)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusCreated, o)
	})

	// GET /api/orders/:id
	g.GET("/:id", func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad order id"})
		}
		o, err := m.Find(id)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusOK, o)
	})

	// PUT /api/orders/:id/location – move the order to another location
	g.PUT("/:id/location", func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad order id"})
		}
		var body struct {
			LocationExternalID string `json:"location_external_id"`
			IdempotencyKey     string `json:"idempotency_key"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		o, err := m.UpdateLocation(c.Request().Context(), id, body.LocationExternalID, body.IdempotencyKey)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusOK, o)
	})

	// PUT /api/orders/:id/line-items – replace the full line set
	g.PUT("/:id/line-items", func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad order id"})
		}
		var body struct {
			Selections     []orderService.VariationSelection `json:"selections"`
			IdempotencyKey string                            `json:"idempotency_key"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		o, err := m.UpdateLineItems(c.Request().Context(), id, body.Selections, body.IdempotencyKey)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusOK, o)
	})

	// DELETE /api/orders/:id/line-items – remove specific lines
	g.DELETE("/:id/line-items", func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad order id"})
		}
		var body struct {
			LineItemIDs []uint `json:"line_item_ids"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		o, err := m.RemoveLineItems(c.Request().Context(), id, body.LineItemIDs)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusOK, o)
	})

	// POST /api/orders/:id/payment – checkout
	g.POST("/:id/payment", func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad order id"})
		}
		var body orderService.PaymentDetails
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		o, payment, err := m.CreatePayment(c.Request().Context(), id, body)
		if err != nil {
			return api.FailJSON(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"order": o, "payment": payment})
	})
}
