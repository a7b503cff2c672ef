package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"posbridge.GO/config"
	"posbridge.GO/core/apperr"
	"posbridge.GO/core/lock"
	"posbridge.GO/model/entity"
	orderEntity "posbridge.GO/model/entity/order"
	catalogRepo "posbridge.GO/model/repository/catalog"
	customerRepo "posbridge.GO/model/repository/customer"
	locationRepo "posbridge.GO/model/repository/location"
	orderRepo "posbridge.GO/model/repository/order"
	"posbridge.GO/remote"
)

// Manager orchestrates the order lifecycle against the remote order API.
// Mutations on one customer's current order are serialized through the
// per-customer lock; the remote order's version token is the only
// cross-process consistency mechanism.
type Manager struct {
	db        *gorm.DB
	locker    *lock.Locker
	orders    *orderRepo.OrderRepository
	customers *customerRepo.CustomerRepository
	locations *locationRepo.LocationRepository
	catalogs  *catalogRepo.CatalogRepository
	apiFor    func(merchant *entity.Merchant) remote.API
}

// NewManager builds an order Manager. apiFor produces a platform client for
// the merchant's credentials.
func NewManager(db *gorm.DB, locker *lock.Locker, apiFor func(*entity.Merchant) remote.API) *Manager {
	return &Manager{
		db:        db,
		locker:    locker,
		orders:    orderRepo.NewOrderRepository(db),
		customers: customerRepo.NewCustomerRepository(db),
		locations: locationRepo.NewLocationRepository(db),
		catalogs:  catalogRepo.NewCatalogRepository(db),
		apiFor:    apiFor,
	}
}

// VariationSelection is one requested line: a variation plus chosen
// modifiers, all by platform external id.
type VariationSelection struct {
	VariationExternalID string   `json:"variation_external_id"`
	Quantity            int      `json:"quantity"`
	Note                string   `json:"note,omitempty"`
	ModifierExternalIDs []string `json:"modifier_external_ids,omitempty"`
}

// Find loads an order with its line items.
func (m *Manager) Find(orderID uint) (*orderEntity.Order, error) {
	return m.orders.FindByID(orderID)
}

func (m *Manager) lockCustomer(ctx context.Context, customerID uint) (func(), error) {
	return m.locker.Acquire(ctx, fmt.Sprintf("customer:%d", customerID))
}

func (m *Manager) merchant(id uint) (*entity.Merchant, error) {
	var mr entity.Merchant
	err := m.db.First(&mr, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.New(apperr.KindNotFound, "merchant %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &mr, nil
}

// Create opens a draft order for the customer. Fails with Conflict when the
// customer already has a current order, with UnprocessableState when the
// merchant has no remote credentials, and with ValidationFailure when a
// selection does not resolve against the catalog mirror — all before any
// remote call.
func (m *Manager) Create(ctx context.Context, customerID, merchantID uint, locationExternalID string, selections []VariationSelection, idempotencyKey string) (*orderEntity.Order, error) {
	idempotencyKey = orDefaultKey(idempotencyKey)
	release, err := m.lockCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	defer release()

	cust, err := m.customers.FindByID(customerID)
	if err != nil {
		return nil, err
	}
	if cust.CurrentOrderID != nil {
		return nil, apperr.New(apperr.KindConflict, "customer %d already has order %d in progress", customerID, *cust.CurrentOrderID)
	}

	merch, err := m.merchant(merchantID)
	if err != nil {
		return nil, err
	}
	if !merch.HasRemoteCredentials(config.AppConfig.PlatformToken) {
		return nil, apperr.New(apperr.KindUnprocessable, "merchant %d has no platform credentials", merchantID)
	}
	api := m.apiFor(merch)

	loc, err := m.resolveLocation(ctx, api, merch, cust, locationExternalID)
	if err != nil {
		return nil, err
	}

	lineSpecs, err := m.buildLineSpecs(merch.ID, selections)
	if err != nil {
		return nil, err
	}

	// Local row first so the remote order can be mirrored onto a stable id;
	// compensated by delete if the remote call fails.
	local := &orderEntity.Order{
		MerchantID: merch.ID,
		CustomerID: cust.ID,
		LocationID: loc.ID,
	}
	if err := m.db.Create(local).Error; err != nil {
		return nil, err
	}

	spec := remote.OrderSpec{
		LocationID:         loc.ExternalID,
		CustomerExternalID: cust.ExternalID,
		State:              remote.OrderStateDraft,
		LineItems:          lineSpecs,
	}
	ro, err := api.CreateOrder(ctx, spec, idempotencyKey)
	if err != nil {
		if delErr := m.orders.Delete(local.ID); delErr != nil {
			return nil, apperr.Wrap(apperr.KindRemote, err, "create order (compensating delete of %d also failed: %v)", local.ID, delErr)
		}
		return nil, apperr.Wrap(apperr.KindRemote, err, "create order")
	}

	if err := m.mirror(local, ro); err != nil {
		return nil, err
	}
	if err := m.customers.SetCurrentOrder(cust.ID, local.ID); err != nil {
		return nil, err
	}
	return m.orders.FindByID(local.ID)
}

// UpdateLocation moves the order to a new location. The platform pins an
// order's location at creation, so this creates a fresh remote order with the
// same lines and mirrors it onto the existing local row.
func (m *Manager) UpdateLocation(ctx context.Context, orderID uint, locationExternalID, idempotencyKey string) (*orderEntity.Order, error) {
	idempotencyKey = orDefaultKey(idempotencyKey)
	o, err := m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	release, err := m.lockCustomer(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the lock.
	o, err = m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	merch, err := m.merchant(o.MerchantID)
	if err != nil {
		return nil, err
	}
	api := m.apiFor(merch)

	loc, err := m.locations.FindByExternalID(merch.ID, locationExternalID)
	if err != nil {
		return nil, err
	}

	cust, err := m.customers.FindByID(o.CustomerID)
	if err != nil {
		return nil, err
	}

	spec := remote.OrderSpec{
		LocationID:         loc.ExternalID,
		CustomerExternalID: cust.ExternalID,
		State:              remote.OrderStateDraft,
		LineItems:          lineSpecsFromLocal(o.LineItems),
	}
	ro, err := api.CreateOrder(ctx, spec, idempotencyKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemote, err, "recreate order at location %s", locationExternalID)
	}

	o.LocationID = loc.ID
	if err := m.mirror(o, ro); err != nil {
		return nil, err
	}
	if err := m.customers.SetPreferredLocation(cust.ID, loc.ID); err != nil {
		return nil, err
	}
	return m.orders.FindByID(o.ID)
}

// UpdateLineItems replaces the order's full line set from the selections and
// pushes the change remotely with the stored version token. A stale token
// surfaces as RemoteFailure with no local mutation.
func (m *Manager) UpdateLineItems(ctx context.Context, orderID uint, selections []VariationSelection, idempotencyKey string) (*orderEntity.Order, error) {
	idempotencyKey = orDefaultKey(idempotencyKey)
	o, err := m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	release, err := m.lockCustomer(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err = m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	merch, err := m.merchant(o.MerchantID)
	if err != nil {
		return nil, err
	}
	api := m.apiFor(merch)

	lineSpecs, err := m.buildLineSpecs(merch.ID, selections)
	if err != nil {
		return nil, err
	}

	patch := remote.OrderPatch{
		Version:   o.ExternalVersion,
		LineItems: lineSpecs,
	}
	ro, err := api.UpdateOrder(ctx, o.ExternalID, patch, idempotencyKey)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemote, err, "update order %s", o.ExternalID)
	}

	if err := m.mirror(o, ro); err != nil {
		return nil, err
	}
	return m.orders.FindByID(o.ID)
}

// RemoveLineItems clears specific lines from the remote order by their
// remote uids and mirrors the result.
func (m *Manager) RemoveLineItems(ctx context.Context, orderID uint, lineItemIDs []uint) (*orderEntity.Order, error) {
	o, err := m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	release, err := m.lockCustomer(ctx, o.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err = m.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	merch, err := m.merchant(o.MerchantID)
	if err != nil {
		return nil, err
	}
	api := m.apiFor(merch)

	byID := make(map[uint]string, len(o.LineItems))
	for _, li := range o.LineItems {
		byID[li.ID] = li.ExternalUID
	}
	paths := make([]string, 0, len(lineItemIDs))
	for _, id := range lineItemIDs {
		uid, ok := byID[id]
		if !ok || uid == "" {
			return nil, apperr.New(apperr.KindValidation, "line item %d not on order %d", id, orderID)
		}
		paths = append(paths, "line_items["+uid+"]")
	}

	ro, err := api.ClearOrderFields(ctx, o.ExternalID, o.ExternalVersion, paths)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemote, err, "clear lines on order %s", o.ExternalID)
	}

	if err := m.mirror(o, ro); err != nil {
		return nil, err
	}
	return m.orders.FindByID(o.ID)
}

// resolveLocation walks explicit argument, customer preference, then the
// merchant's remote "main" location (mirrored on first sight).
func (m *Manager) resolveLocation(ctx context.Context, api remote.API, merch *entity.Merchant, cust *entity.Customer, explicit string) (*entity.Location, error) {
	if explicit != "" {
		return m.locations.FindByExternalID(merch.ID, explicit)
	}
	if cust.PreferredLocationID != nil {
		return m.locations.FindByID(*cust.PreferredLocationID)
	}
	rl, err := api.RetrieveLocation(ctx, "main")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRemote, err, "retrieve main location")
	}
	return mirrorLocation(m.db, merch.ID, rl)
}

// buildLineSpecs resolves selections against the catalog mirror. Any
// unresolvable variation or modifier fails the whole call before a remote
// request is made.
func (m *Manager) buildLineSpecs(merchantID uint, selections []VariationSelection) ([]remote.LineItemSpec, error) {
	if len(selections) == 0 {
		return nil, apperr.New(apperr.KindValidation, "order needs at least one selection")
	}
	cat, err := m.catalogs.ForMerchant(merchantID)
	if err != nil {
		return nil, err
	}

	specs := make([]remote.LineItemSpec, 0, len(selections))
	for _, sel := range selections {
		if sel.VariationExternalID == "" {
			return nil, apperr.New(apperr.KindValidation, "selection missing variation id")
		}
		if _, err := m.catalogs.VariationByExternalID(cat.ID, sel.VariationExternalID); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "unknown variation %s", sel.VariationExternalID)
		}
		for _, modID := range sel.ModifierExternalIDs {
			if _, err := m.catalogs.ModifierByExternalID(cat.ID, modID); err != nil {
				return nil, apperr.Wrap(apperr.KindValidation, err, "unknown modifier %s", modID)
			}
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		specs = append(specs, remote.LineItemSpec{
			CatalogObjectID: sel.VariationExternalID,
			Quantity:        qty,
			Note:            sel.Note,
			ModifierIDs:     sel.ModifierExternalIDs,
		})
	}
	return specs, nil
}

// orDefaultKey keeps remote mutations idempotent even when the caller did
// not supply a key.
func orDefaultKey(idempotencyKey string) string {
	if idempotencyKey == "" {
		return uuid.NewString()
	}
	return idempotencyKey
}
