package fulfillment

import (
	"log"

	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/core/events"
	"posbridge.GO/model/entity"
	orderEntity "posbridge.GO/model/entity/order"
	orderRepo "posbridge.GO/model/repository/order"
)

// Machine applies fulfillment state transitions reported by the platform.
// State is persisted before any notification goes out; notification failures
// never roll it back.
type Machine struct {
	db         *gorm.DB
	orders     *orderRepo.OrderRepository
	dispatcher *Dispatcher
}

// NewMachine builds a Machine. dispatcher may be nil to skip notifications.
func NewMachine(db *gorm.DB, dispatcher *Dispatcher) *Machine {
	return &Machine{
		db:         db,
		orders:     orderRepo.NewOrderRepository(db),
		dispatcher: dispatcher,
	}
}

// allowed forward edges; canceled and failed are reachable from every
// non-terminal state and handled separately.
var forward = map[string]map[string]bool{
	orderEntity.StateProposed: {orderEntity.StateReserved: true, orderEntity.StatePrepared: true, orderEntity.StateCompleted: true},
	orderEntity.StateReserved: {orderEntity.StatePrepared: true, orderEntity.StateCompleted: true},
	orderEntity.StatePrepared: {orderEntity.StateCompleted: true},
}

func transitionAllowed(from, to string) bool {
	if orderEntity.IsTerminalState(from) {
		return false
	}
	if to == orderEntity.StateCanceled || to == orderEntity.StateFailed {
		return true
	}
	return forward[from][to]
}

// HandleEvent resolves the local order and applies the reported state.
// Duplicate events (same state) and proposed targets are ignored; an edge
// outside the transition table is logged and dropped rather than failed, the
// platform is authoritative about its own timeline.
func (m *Machine) HandleEvent(evt events.FulfillmentUpdated) error {
	var merch entity.Merchant
	err := m.db.Where("external_id = ?", evt.MerchantExternalID).First(&merch).Error
	if err == gorm.ErrRecordNotFound {
		return apperr.New(apperr.KindNotFound, "merchant %s not found", evt.MerchantExternalID)
	}
	if err != nil {
		return err
	}

	o, err := m.orders.FindByExternalID(merch.ID, evt.OrderExternalID)
	if err != nil {
		return err
	}

	newState := evt.NewState
	if !orderEntity.IsKnownState(newState) {
		return apperr.New(apperr.KindValidation, "unknown fulfillment state %q", newState)
	}
	if newState == o.FulfillmentStatus {
		return nil
	}
	if newState == orderEntity.StateProposed {
		return nil
	}
	if !transitionAllowed(o.FulfillmentStatus, newState) {
		log.Printf("fulfillment: dropping %s -> %s for order %s", o.FulfillmentStatus, newState, o.ExternalID)
		return nil
	}

	if err := m.orders.UpdateFields(o.ID, map[string]interface{}{"fulfillment_status": newState}); err != nil {
		return err
	}

	if m.dispatcher != nil {
		m.dispatcher.Enqueue(Intent{OrderID: o.ID, NewState: newState})
	}
	return nil
}

// SubscribeTo wires the machine onto the event bus.
func (m *Machine) SubscribeTo(bus *events.Bus) {
	bus.Subscribe(func(evt events.FulfillmentUpdated) {
		if err := m.HandleEvent(evt); err != nil {
			log.Printf("fulfillment: event for order %s: %v", evt.OrderExternalID, err)
		}
	})
}
