package service

// Channels subscribers can listen on.
const (
	ChannelOrders      = "orders"
	ChannelTables      = "tables"
	ChannelIngredients = "ingredients"
)

// Notifier fans a change event out to realtime subscribers. Publishing is
// fire-and-forget: implementations must never block or return an error to
// the transition that triggered the event.
type Notifier interface {
	Publish(channel, event string, payload any)
}

// NopNotifier discards all events. Used in tests and tooling.
type NopNotifier struct{}

func (NopNotifier) Publish(channel, event string, payload any) {}
