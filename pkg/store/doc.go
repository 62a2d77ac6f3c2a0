// Package store provides the reactive value core for vstore.
//
// A Store holds one value, hands it to observers on every publish, and can be
// permanently closed. A Computed derives its value from one or more parent
// stores through a pure combiner and republishes whenever any parent does.
//
// # Core Types
//
// Store[T] is a mutable value container:
//
//	count := store.New(0)
//	value := count.Unwrap()          // Read
//	count.Publish(5)                 // Write (notifies subscribers)
//	stop := count.Subscribe(func(n int) {
//	    fmt.Println("count is", n)   // Called once now, then on every publish
//	})
//	defer stop()
//
// Stores can also start from a producer, synchronous or asynchronous:
//
//	cfg := store.NewFunc(loadDefaults)
//	user := store.NewAsync(ctx, func(ctx context.Context) (User, error) {
//	    return api.FetchUser(ctx, id)
//	})
//	if err := user.Wait(ctx); err != nil { ... }
//
// Computed[T] is a read-only derived store:
//
//	total := store.Computed2(price, qty, func(p float64, q int) float64 {
//	    return p * float64(q)
//	})
//
// Every parent publish triggers one recomputation over the current values of
// all parents followed by one publish on the computed store. There is no
// batching and no equality check.
//
// # Closing
//
// Close makes Publish a permanent no-op. Unwrap keeps returning the last
// accepted value, and Subscribe still delivers that value once. Closing a
// Computed detaches it from its parents; closing a store created with
// NewAsync cancels the producer's context and discards its result.
//
// # Errors
//
// Publish never returns an error. A panicking subscriber or combiner, or a
// failing asynchronous initializer, is reported on the store's error side
// channel (OnError). Delivery to the remaining subscribers continues.
//
// # Thread Safety
//
// A store guards its own fields with a mutex and never calls observers while
// holding it. Notification itself is synchronous on the publishing goroutine;
// the asynchronous initializer publishes from its own goroutine.
package store
