package subscription

import "sync"

type Closer interface {
	Close()
}

// Registry groups open subscriptions by owner so they can be closed together,
// e.g. on sign-out.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	owners map[string]map[uint64]*Ticket
}

// Ticket is an owner's place in the registry, taken before the subscription
// starts so a sign-out in the meantime is not missed.
type Ticket struct {
	registry *Registry
	owner    string
	id       uint64
	closer   Closer
	revoked  bool
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]map[uint64]*Ticket)}
}

func (r *Registry) Reserve(owner string) *Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t := &Ticket{registry: r, owner: owner, id: r.nextID}
	if r.owners[owner] == nil {
		r.owners[owner] = make(map[uint64]*Ticket)
	}
	r.owners[owner][t.id] = t
	return t
}

// Attach binds c to the ticket. When the owner was closed since Reserve, c is
// closed right away and Attach returns false.
func (t *Ticket) Attach(c Closer) bool {
	t.registry.mu.Lock()
	if t.revoked {
		t.registry.mu.Unlock()
		c.Close()
		return false
	}
	t.closer = c
	t.registry.mu.Unlock()
	return true
}

// Release forgets the ticket without closing anything.
func (t *Ticket) Release() {
	r := t.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners[t.owner], t.id)
	if len(r.owners[t.owner]) == 0 {
		delete(r.owners, t.owner)
	}
}

// Count includes tickets whose subscription is still starting.
func (r *Registry) Count(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners[owner])
}

// CloseOwner closes every subscription of owner and returns how many.
func (r *Registry) CloseOwner(owner string) int {
	r.mu.Lock()
	tickets := r.owners[owner]
	delete(r.owners, owner)
	closers := revoke(tickets)
	r.mu.Unlock()

	for _, c := range closers {
		c.Close()
	}
	return len(closers)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	var closers []Closer
	for _, tickets := range r.owners {
		closers = append(closers, revoke(tickets)...)
	}
	r.owners = make(map[string]map[uint64]*Ticket)
	r.mu.Unlock()

	for _, c := range closers {
		c.Close()
	}
}

// revoke must be called with the registry locked.
func revoke(tickets map[uint64]*Ticket) []Closer {
	closers := make([]Closer, 0, len(tickets))
	for _, t := range tickets {
		t.revoked = true
		if t.closer != nil {
			closers = append(closers, t.closer)
		}
	}
	return closers
}
