package order

import (
	"context"
	"time"

	"posbridge.GO/config"
	"posbridge.GO/core/apperr"
	orderEntity "posbridge.GO/model/entity/order"
	"posbridge.GO/remote"
)

// PaymentDetails carries the checkout request.
type PaymentDetails struct {
	SourceToken    string     `json:"source_token"`
	TipAmount      int64      `json:"tip_amount"`
	PickupAt       *time.Time `json:"pickup_at,omitempty"`
	RecipientName  string     `json:"recipient_name,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// CreatePayment is the checkout path: validate merchant and pickup, cancel
// the remote draft, open a fresh remote order with the pickup block, capture
// the payment with the tiered application fee, mirror totals, and only then
// release the customer's current-order slot. A remote failure anywhere
// leaves the current-order pointer untouched.
func (m *Manager) CreatePayment(ctx context.Context, orderID uint, details PaymentDetails) (*orderEntity.Order, *remote.Payment, error) {
	o, err := m.orders.FindByID(orderID)
	if err != nil {
		return nil, nil, err
	}

	release, err := m.lockCustomer(ctx, o.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	o, err = m.orders.FindByID(orderID)
	if err != nil {
		return nil, nil, err
	}

	merch, err := m.merchant(o.MerchantID)
	if err != nil {
		return nil, nil, err
	}
	cust, err := m.customers.FindByID(o.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := m.locations.FindByID(o.LocationID)
	if err != nil {
		return nil, nil, err
	}

	fees, err := config.LoadFees()
	if err != nil {
		return nil, nil, err
	}

	// Preconditions, each its own unprocessable-state failure.
	if !merch.HasRemoteCredentials(config.AppConfig.PlatformToken) {
		return nil, nil, apperr.New(apperr.KindUnprocessable, "merchant %d has no platform credentials", merch.ID)
	}
	if !loc.Enabled {
		return nil, nil, apperr.New(apperr.KindUnprocessable, "location %s is disabled", loc.ExternalID)
	}
	numerator, ok := fees.Numerators[merch.Tier]
	if !ok {
		return nil, nil, apperr.New(apperr.KindUnprocessable, "merchant %d has unsupported tier %d", merch.ID, merch.Tier)
	}
	if !merch.AppEnabled {
		return nil, nil, apperr.New(apperr.KindUnprocessable, "merchant %d has the app disabled", merch.ID)
	}
	if cust.ExternalID == "" {
		return nil, nil, apperr.New(apperr.KindUnprocessable, "customer %d has no platform id", cust.ID)
	}

	pickupAt, err := resolvePickupTime(loc, details.PickupAt, time.Now(), config.AppConfig.PickupLeadTime, config.AppConfig.PickupHorizon)
	if err != nil {
		return nil, nil, err
	}

	api := m.apiFor(merch)
	idemKey := orDefaultKey(details.IdempotencyKey)

	// The draft cannot carry a fulfillment block after the fact; cancel it
	// and open a fresh order with pickup attached.
	cancel := remote.OrderPatch{Version: o.ExternalVersion, State: remote.OrderStateCanceled}
	if _, err := api.UpdateOrder(ctx, o.ExternalID, cancel, idemKey+"-cancel"); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindRemote, err, "cancel draft order %s", o.ExternalID)
	}

	recipient := details.RecipientName
	if recipient == "" && cust.User != nil {
		recipient = cust.User.FirstName
	}
	spec := remote.OrderSpec{
		LocationID:         loc.ExternalID,
		CustomerExternalID: cust.ExternalID,
		State:              remote.OrderStateOpen,
		LineItems:          lineSpecsFromLocal(o.LineItems),
		Pickup: &remote.PickupSpec{
			PickupAt:      pickupAt,
			RecipientName: recipient,
		},
	}
	ro, err := api.CreateOrder(ctx, spec, idemKey+"-order")
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindRemote, err, "open order for payment")
	}
	if err := m.mirror(o, ro); err != nil {
		return nil, nil, err
	}

	fee := ro.SubtotalMoney.Amount * numerator / fees.Denominator

	payment, err := api.CreatePayment(ctx, remote.PaymentSpec{
		IdempotencyKey:     idemKey,
		OrderID:            ro.ID,
		SourceToken:        details.SourceToken,
		CustomerExternalID: cust.ExternalID,
		Amount:             remote.Money{Amount: ro.TotalMoney.Amount, Currency: ro.TotalMoney.Currency},
		TipMoney:           remote.Money{Amount: details.TipAmount, Currency: ro.TotalMoney.Currency},
		AppFeeMoney:        remote.Money{Amount: fee, Currency: ro.TotalMoney.Currency},
	})
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindRemote, err, "create payment for order %s", ro.ID)
	}

	fields := map[string]interface{}{
		"payment_external_id": payment.ID,
		"fee_amount":          payment.AppFeeMoney.Amount,
		"tip_amount":          payment.TipMoney.Amount,
		"total_amount":        payment.TotalMoney.Amount,
		"pickup_at":           pickupAt,
	}
	if err := m.orders.UpdateFields(o.ID, fields); err != nil {
		return nil, nil, err
	}
	if err := m.customers.ClearCurrentOrder(cust.ID); err != nil {
		return nil, nil, err
	}

	final, err := m.orders.FindByID(o.ID)
	if err != nil {
		return nil, nil, err
	}
	return final, payment, nil
}
