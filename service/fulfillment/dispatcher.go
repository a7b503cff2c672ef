package fulfillment

import (
	"log"
	"sync"

	"gorm.io/gorm"

	orderRepo "posbridge.GO/model/repository/order"
	"posbridge.GO/notify"
)

// Intent is one queued notification batch: deliver the order's new state on
// every channel.
type Intent struct {
	OrderID  uint
	NewState string
}

// Dispatcher drains notification intents off a buffered queue and fans each
// out to the registered channels. Channel failures are isolated: one broken
// provider neither blocks its siblings nor the queue.
type Dispatcher struct {
	orders  *orderRepo.OrderRepository
	senders []notify.Sender
	queue   chan Intent

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewDispatcher builds a Dispatcher over the given channels.
func NewDispatcher(db *gorm.DB, senders []notify.Sender, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		orders:  orderRepo.NewOrderRepository(db),
		senders: senders,
		queue:   make(chan Intent, queueSize),
		stop:    make(chan struct{}),
	}
}

// Start launches the drain loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case intent := <-d.queue:
				d.deliver(intent)
			case <-d.stop:
				// Drain what is already queued, then exit.
				for {
					select {
					case intent := <-d.queue:
						d.deliver(intent)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the loop down after draining pending intents.
func (d *Dispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
}

// Enqueue queues an intent; a full queue drops the notification with a log
// line instead of blocking the state machine.
func (d *Dispatcher) Enqueue(intent Intent) {
	select {
	case d.queue <- intent:
	default:
		log.Printf("fulfillment: notification queue full, dropping order %d -> %s", intent.OrderID, intent.NewState)
	}
}

func (d *Dispatcher) deliver(intent Intent) {
	o, err := d.orders.FindHydrated(intent.OrderID)
	if err != nil {
		log.Printf("fulfillment: hydrate order %d: %v", intent.OrderID, err)
		return
	}
	for _, s := range d.senders {
		if err := s.Send(o, intent.NewState); err != nil {
			log.Printf("fulfillment: %s notification for order %s: %v", s.Name(), o.ExternalID, err)
		}
	}
}
