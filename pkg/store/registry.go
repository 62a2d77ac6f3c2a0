package store

// registry is an ordered list of callbacks keyed by a monotonic id.
// The same callback may be added more than once; each add is a separate entry.
type registry[F any] struct {
	next    uint64
	entries []entry[F]
}

type entry[F any] struct {
	id uint64
	fn F
}

// add appends fn and returns its id.
func (r *registry[F]) add(fn F) uint64 {
	id := r.reserve()
	r.put(id, fn)
	return id
}

// reserve allocates an id without registering anything under it.
func (r *registry[F]) reserve() uint64 {
	r.next++
	return r.next
}

// put appends fn under an id obtained from reserve.
func (r *registry[F]) put(id uint64, fn F) {
	r.entries = append(r.entries, entry[F]{id: id, fn: fn})
}

// remove deletes the entry with the given id, keeping the order of the rest.
func (r *registry[F]) remove(id uint64) bool {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot returns a copy of the entries so callers can iterate without a lock.
func (r *registry[F]) snapshot() []entry[F] {
	if len(r.entries) == 0 {
		return nil
	}
	out := make([]entry[F], len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *registry[F]) len() int {
	return len(r.entries)
}
