package fulfillment

import (
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"posbridge.GO/core/apperr"
	"posbridge.GO/core/events"
	"posbridge.GO/model/entity"
	orderEntity "posbridge.GO/model/entity/order"
	"posbridge.GO/notify"
)

func fulfillmentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.Merchant{}, &entity.User{}, &entity.AppInstall{}, &entity.Customer{},
		&entity.Location{}, &entity.BusinessHoursPeriod{},
		&orderEntity.Order{}, &orderEntity.LineItem{}, &orderEntity.LineItemModifier{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status string) *orderEntity.Order {
	merch := &entity.Merchant{Name: "Beanhouse", ExternalID: "merch-1", Enabled: true, AppEnabled: true}
	if err := db.Create(merch).Error; err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	o := &orderEntity.Order{
		MerchantID: merch.ID, CustomerID: 1, LocationID: 1,
		ExternalID: "rord-1", FulfillmentStatus: status,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func fulfillmentEvent(newState string) events.FulfillmentUpdated {
	return events.FulfillmentUpdated{
		OrderExternalID:    "rord-1",
		MerchantExternalID: "merch-1",
		NewState:           newState,
	}
}

// recordingSender captures delivered states; err, when set, makes every
// delivery fail.
type recordingSender struct {
	mu     sync.Mutex
	name   string
	err    error
	states []string
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(_ *orderEntity.Order, newState string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, newState)
	return s.err
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.states))
	copy(out, s.states)
	return out
}

func status(t *testing.T, db *gorm.DB, id uint) string {
	var o orderEntity.Order
	if err := db.First(&o, id).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return o.FulfillmentStatus
}

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{orderEntity.StateProposed, orderEntity.StateReserved, true},
		{orderEntity.StateProposed, orderEntity.StatePrepared, true},
		{orderEntity.StateProposed, orderEntity.StateCompleted, true},
		{orderEntity.StateReserved, orderEntity.StatePrepared, true},
		{orderEntity.StateReserved, orderEntity.StateCompleted, true},
		{orderEntity.StatePrepared, orderEntity.StateCompleted, true},
		{orderEntity.StatePrepared, orderEntity.StateReserved, false},
		{orderEntity.StateCompleted, orderEntity.StateReserved, false},
		{orderEntity.StateCompleted, orderEntity.StateCanceled, false},
		{orderEntity.StateCanceled, orderEntity.StateReserved, false},
		{orderEntity.StateFailed, orderEntity.StateCompleted, false},
		{orderEntity.StateProposed, orderEntity.StateCanceled, true},
		{orderEntity.StateReserved, orderEntity.StateFailed, true},
		{orderEntity.StatePrepared, orderEntity.StateCanceled, true},
	}
	for _, c := range cases {
		if got := transitionAllowed(c.from, c.to); got != c.want {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestHandleEvent_PersistsThenNotifies(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateProposed)
	sender := &recordingSender{name: "test"}
	d := NewDispatcher(db, []notify.Sender{sender}, 8)
	d.Start()
	m := NewMachine(db, d)

	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateReserved)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	d.Stop()

	if got := status(t, db, o.ID); got != orderEntity.StateReserved {
		t.Errorf("status = %s, want reserved", got)
	}
	if got := sender.sent(); len(got) != 1 || got[0] != orderEntity.StateReserved {
		t.Errorf("notifications = %v, want [reserved]", got)
	}
}

func TestHandleEvent_DuplicateStateIgnored(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateReserved)
	sender := &recordingSender{name: "test"}
	d := NewDispatcher(db, []notify.Sender{sender}, 8)
	d.Start()
	m := NewMachine(db, d)

	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateReserved)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	d.Stop()

	if got := status(t, db, o.ID); got != orderEntity.StateReserved {
		t.Errorf("status = %s, want unchanged reserved", got)
	}
	if got := sender.sent(); len(got) != 0 {
		t.Errorf("notifications = %v, want none for a duplicate", got)
	}
}

func TestHandleEvent_ProposedTargetIgnored(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateReserved)
	m := NewMachine(db, nil)

	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateProposed)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := status(t, db, o.ID); got != orderEntity.StateReserved {
		t.Errorf("status = %s, want unchanged reserved", got)
	}
}

func TestHandleEvent_IllegalEdgeDropped(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StatePrepared)
	sender := &recordingSender{name: "test"}
	d := NewDispatcher(db, []notify.Sender{sender}, 8)
	d.Start()
	m := NewMachine(db, d)

	// Backwards edge: logged and dropped, not an error.
	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateReserved)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	d.Stop()

	if got := status(t, db, o.ID); got != orderEntity.StatePrepared {
		t.Errorf("status = %s, want unchanged prepared", got)
	}
	if got := sender.sent(); len(got) != 0 {
		t.Errorf("notifications = %v, want none for a dropped edge", got)
	}
}

func TestHandleEvent_TerminalStateFrozen(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateCompleted)
	m := NewMachine(db, nil)

	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateCanceled)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := status(t, db, o.ID); got != orderEntity.StateCompleted {
		t.Errorf("status = %s, want terminal completed", got)
	}
}

func TestHandleEvent_CancelFromAnyNonTerminal(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StatePrepared)
	m := NewMachine(db, nil)

	if err := m.HandleEvent(fulfillmentEvent(orderEntity.StateCanceled)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got := status(t, db, o.ID); got != orderEntity.StateCanceled {
		t.Errorf("status = %s, want canceled", got)
	}
}

func TestHandleEvent_UnknownState(t *testing.T) {
	db := fulfillmentTestDB(t)
	seedOrder(t, db, orderEntity.StateProposed)
	m := NewMachine(db, nil)

	err := m.HandleEvent(fulfillmentEvent("teleported"))
	if !errors.Is(err, apperr.ValidationFailure) {
		t.Errorf("err = %v, want ValidationFailure", err)
	}
}

func TestHandleEvent_UnknownMerchant(t *testing.T) {
	db := fulfillmentTestDB(t)
	m := NewMachine(db, nil)

	evt := fulfillmentEvent(orderEntity.StateReserved)
	evt.MerchantExternalID = "merch-nope"
	if err := m.HandleEvent(evt); !errors.Is(err, apperr.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestDispatcher_ChannelFailureIsolation(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateProposed)
	broken := &recordingSender{name: "broken", err: errors.New("provider down")}
	healthy := &recordingSender{name: "healthy"}
	d := NewDispatcher(db, []notify.Sender{broken, healthy}, 8)
	d.Start()

	d.Enqueue(Intent{OrderID: o.ID, NewState: orderEntity.StateReserved})
	d.Stop()

	if got := broken.sent(); len(got) != 1 {
		t.Errorf("broken channel deliveries = %v, want 1 attempt", got)
	}
	if got := healthy.sent(); len(got) != 1 || got[0] != orderEntity.StateReserved {
		t.Errorf("healthy channel deliveries = %v, want [reserved]", got)
	}
}

func TestMachine_SubscribeTo(t *testing.T) {
	db := fulfillmentTestDB(t)
	o := seedOrder(t, db, orderEntity.StateProposed)
	m := NewMachine(db, nil)

	bus := &events.Bus{}
	m.SubscribeTo(bus)
	bus.Publish(fulfillmentEvent(orderEntity.StateReserved))

	if got := status(t, db, o.ID); got != orderEntity.StateReserved {
		t.Errorf("status = %s, want reserved after bus delivery", got)
	}
}
