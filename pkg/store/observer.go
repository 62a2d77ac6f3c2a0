package store

// Observer receives lifecycle events from stores. Implementations must be safe
// for concurrent use and must not call back into the store that reports.
// See package metrics for a Prometheus implementation.
type Observer interface {
	// StorePublished is called after a publish was accepted.
	StorePublished(store string)

	// StoreSubscribed and StoreUnsubscribed track subscriber registrations.
	StoreSubscribed(store string)
	StoreUnsubscribed(store string)

	// StoreClosed is called once, on the first Close.
	StoreClosed(store string)

	// SubscriberFailed is called for each subscriber panic.
	SubscriberFailed(store string)

	// StoreSettled is called when an asynchronous initializer settles on an
	// open store. err is nil on success.
	StoreSettled(store string, err error)

	// StoreRecomputed is called after each combiner evaluation of a computed
	// store. err is non-nil when the combiner panicked or a cycle was found.
	StoreRecomputed(store string, err error)
}

// NopObserver ignores every event. Embed it to implement only some methods.
type NopObserver struct{}

func (NopObserver) StorePublished(string) {}
func (NopObserver) StoreSubscribed(string) {}
func (NopObserver) StoreUnsubscribed(string) {}
func (NopObserver) StoreClosed(string) {}
func (NopObserver) SubscriberFailed(string) {}
func (NopObserver) StoreSettled(string, error) {}
func (NopObserver) StoreRecomputed(string, error) {}

var _ Observer = NopObserver{}
