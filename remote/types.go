package remote

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Catalog object type discriminators, as reported by the platform.
const (
	TypeCategory     = "CATEGORY"
	TypeItem         = "ITEM"
	TypeModifierList = "MODIFIER_LIST"
	TypeModifier     = "MODIFIER"
)

// Money is an integer minor-unit amount.
type Money struct {
	Amount   int64  `json:"amount" mapstructure:"amount"`
	Currency string `json:"currency" mapstructure:"currency"`
}

// CatalogObject is the type-tagged union returned by the catalog list
// endpoint. Data holds the per-kind payload, decoded on demand with the
// Decode* helpers.
type CatalogObject struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func (o CatalogObject) decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(o.Data); err != nil {
		return fmt.Errorf("decode %s %s: %w", o.Type, o.ID, err)
	}
	return nil
}

// CategoryData is the CATEGORY payload.
type CategoryData struct {
	Name string `mapstructure:"name"`
}

func (o CatalogObject) DecodeCategory() (*CategoryData, error) {
	var d CategoryData
	if err := o.decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PresenceData carries per-location visibility lists shared by items and
// modifiers.
type PresenceData struct {
	PresentAtAllLocations bool     `mapstructure:"present_at_all_locations"`
	PresentAtLocationIDs  []string `mapstructure:"present_at_location_ids"`
	AbsentAtLocationIDs   []string `mapstructure:"absent_at_location_ids"`
}

// OverrideData is one per-location price exception.
type OverrideData struct {
	LocationID string `mapstructure:"location_id"`
	Amount     int64  `mapstructure:"amount"`
	Currency   string `mapstructure:"currency"`
}

// VariationData is a variation nested in an ITEM payload.
type VariationData struct {
	ID        string         `mapstructure:"id"`
	Name      string         `mapstructure:"name"`
	Amount    int64          `mapstructure:"amount"`
	Currency  string         `mapstructure:"currency"`
	Overrides []OverrideData `mapstructure:"location_overrides"`
}

// ModifierListRef joins an item to a modifier list with selection bounds.
type ModifierListRef struct {
	ModifierListID string `mapstructure:"modifier_list_id"`
	MinSelected    int    `mapstructure:"min_selected"`
	MaxSelected    int    `mapstructure:"max_selected"`
	Enabled        bool   `mapstructure:"enabled"`
}

// ImageData is a platform-hosted image reference.
type ImageData struct {
	ID      string `mapstructure:"id"`
	URL     string `mapstructure:"url"`
	Caption string `mapstructure:"caption"`
}

// ItemData is the ITEM payload.
type ItemData struct {
	Name         string            `mapstructure:"name"`
	Description  string            `mapstructure:"description"`
	CategoryID   string            `mapstructure:"category_id"`
	Presence     PresenceData      `mapstructure:",squash"`
	Variations   []VariationData   `mapstructure:"variations"`
	ModifierList []ModifierListRef `mapstructure:"modifier_list_info"`
	Images       []ImageData       `mapstructure:"images"`
}

func (o CatalogObject) DecodeItem() (*ItemData, error) {
	var d ItemData
	if err := o.decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ModifierListData is the MODIFIER_LIST payload.
type ModifierListData struct {
	Name          string `mapstructure:"name"`
	SelectionType string `mapstructure:"selection_type"`
}

func (o CatalogObject) DecodeModifierList() (*ModifierListData, error) {
	var d ModifierListData
	if err := o.decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ModifierData is the MODIFIER payload.
type ModifierData struct {
	Name           string         `mapstructure:"name"`
	ModifierListID string         `mapstructure:"modifier_list_id"`
	Amount         int64          `mapstructure:"amount"`
	Currency       string         `mapstructure:"currency"`
	Presence       PresenceData   `mapstructure:",squash"`
	Overrides      []OverrideData `mapstructure:"location_overrides"`
}

func (o CatalogObject) DecodeModifier() (*ModifierData, error) {
	var d ModifierData
	if err := o.decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Location as returned by the locations endpoints. "main" is a valid id for
// RetrieveLocation.
type Location struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Timezone string   `json:"timezone"`
	Status   string   `json:"status"`
	Hours    []Period `json:"business_hours"`
}

// Period is one open interval, local to the location's timezone.
type Period struct {
	DayOfWeek      int    `json:"day_of_week"` // 0 = Sunday
	StartLocalTime string `json:"start_local_time"`
	EndLocalTime   string `json:"end_local_time"`
}

// Order states on the platform side.
const (
	OrderStateDraft    = "DRAFT"
	OrderStateOpen     = "OPEN"
	OrderStateCanceled = "CANCELED"
)

// LineItemSpec describes one requested line for create/update calls.
type LineItemSpec struct {
	CatalogObjectID string   `json:"catalog_object_id"`
	Quantity        int      `json:"quantity"`
	Note            string   `json:"note,omitempty"`
	ModifierIDs     []string `json:"modifier_ids,omitempty"`
}

// PickupSpec is the pickup fulfillment block attached at checkout.
type PickupSpec struct {
	PickupAt      time.Time `json:"pickup_at"`
	RecipientName string    `json:"recipient_name,omitempty"`
}

// OrderSpec is the body of a create-order call.
type OrderSpec struct {
	LocationID         string         `json:"location_id"`
	CustomerExternalID string         `json:"customer_id,omitempty"`
	State              string         `json:"state,omitempty"`
	LineItems          []LineItemSpec `json:"line_items"`
	Pickup             *PickupSpec    `json:"pickup,omitempty"`
}

// OrderPatch is the body of an update-order call. Version is the optimistic
// concurrency token; LineItems fully replace the remote list when non-nil.
type OrderPatch struct {
	Version   int64          `json:"version"`
	State     string         `json:"state,omitempty"`
	LineItems []LineItemSpec `json:"line_items,omitempty"`
}

// LineItemModifier mirrors one applied modifier on a remote line item.
type LineItemModifier struct {
	UID             string `json:"uid"`
	CatalogObjectID string `json:"catalog_object_id"`
	Name            string `json:"name"`
	TotalMoney      Money  `json:"total_money"`
}

// LineItem mirrors one remote order line.
type LineItem struct {
	UID             string             `json:"uid"`
	CatalogObjectID string             `json:"catalog_object_id"`
	Name            string             `json:"name"`
	Quantity        int                `json:"quantity"`
	Note            string             `json:"note"`
	TotalMoney      Money              `json:"total_money"`
	Modifiers       []LineItemModifier `json:"modifiers"`
}

// Order is the platform's view of an order.
type Order struct {
	ID            string     `json:"id"`
	Version       int64      `json:"version"`
	LocationID    string     `json:"location_id"`
	State         string     `json:"state"`
	LineItems     []LineItem `json:"line_items"`
	SubtotalMoney Money      `json:"subtotal_money"`
	TotalMoney    Money      `json:"total_money"`
	TipMoney      Money      `json:"tip_money"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// PaymentSpec is the body of a create-payment call.
type PaymentSpec struct {
	IdempotencyKey     string `json:"idempotency_key"`
	OrderID            string `json:"order_id"`
	SourceToken        string `json:"source_token"`
	CustomerExternalID string `json:"customer_id,omitempty"`
	Amount             Money  `json:"amount_money"`
	TipMoney           Money  `json:"tip_money"`
	AppFeeMoney        Money  `json:"app_fee_money"`
}

// Payment is the platform's view of a captured payment.
type Payment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	TotalMoney  Money  `json:"total_money"`
	TipMoney    Money  `json:"tip_money"`
	AppFeeMoney Money  `json:"app_fee_money"`
}
