package notify

import (
	"log"

	orderEntity "posbridge.GO/model/entity/order"
)

// Sender delivers a fulfillment update on one channel. The order passed is
// fully hydrated: customer with user and app installs, merchant, location.
type Sender interface {
	Name() string
	Send(o *orderEntity.Order, newState string) error
}

// LogSender writes the notification to the process log. Stands in for a
// real provider in development and tests; production deploys register their
// own senders.
type LogSender struct {
	Channel string
}

func (s *LogSender) Name() string { return s.Channel }

func (s *LogSender) Send(o *orderEntity.Order, newState string) error {
	recipient := ""
	if o.Customer != nil && o.Customer.User != nil {
		recipient = o.Customer.User.Email
	}
	log.Printf("notify[%s]: order %s -> %s (recipient %s)", s.Channel, o.ExternalID, newState, recipient)
	return nil
}

// DefaultSenders returns the three standard channels backed by the log.
func DefaultSenders() []Sender {
	return []Sender{
		&LogSender{Channel: "message"},
		&LogSender{Channel: "mail"},
		&LogSender{Channel: "push"},
	}
}
