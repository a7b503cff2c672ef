package webhook

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"posbridge.GO/api"
	"posbridge.GO/core/events"
)

func init() {
	api.RegisterRoute(RegisterWebhookRoutes)
}

// RegisterWebhookRoutes exposes the platform webhook receiver. Signature
// verification happens at the edge proxy; this endpoint is on the auth
// skipper list.
func RegisterWebhookRoutes(e *echo.Echo, _ *gorm.DB) {
	e.POST("/webhooks/fulfillment", func(c echo.Context) error {
		var body struct {
			OrderExternalID    string `json:"order_id"`
			MerchantExternalID string `json:"merchant_id"`
			Update             struct {
				OldState string `json:"old_state"`
				NewState string `json:"new_state"`
			} `json:"update"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.OrderExternalID == "" || body.Update.NewState == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id and update.new_state are required"})
		}

		events.Default().Publish(events.FulfillmentUpdated{
			OrderExternalID:    body.OrderExternalID,
			MerchantExternalID: body.MerchantExternalID,
			OldState:           body.Update.OldState,
			NewState:           body.Update.NewState,
		})
		// Always ack: the platform retries on non-2xx and the handler chain
		// already logged anything it dropped.
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	})
}
