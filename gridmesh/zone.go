package gridmesh

// ZoneRegistry is the shared single-owner registry of this design: a cell
// belongs to at most one CellZone at a time. Assigning it to a new zone
// evicts it from whichever zone currently holds it. This is the only
// mutable shared state a Grid exposes after construction.
type ZoneRegistry struct {
	owner map[CellID]*CellZone
}

func NewZoneRegistry() *ZoneRegistry {
	return &ZoneRegistry{owner: make(map[CellID]*CellZone)}
}

// NewZone creates a named, initially-empty zone bound to this registry.
func (r *ZoneRegistry) NewZone(name string) *CellZone {
	return &CellZone{name: name, registry: r, members: make(map[CellID]struct{})}
}

// ZoneOf reports which zone currently owns id, or nil if unassigned.
func (r *ZoneRegistry) ZoneOf(id CellID) *CellZone {
	return r.owner[id]
}

func (r *ZoneRegistry) assign(z *CellZone, id CellID) {
	if cur, ok := r.owner[id]; ok {
		if cur == z {
			return
		}
		delete(cur.members, id)
	}
	z.members[id] = struct{}{}
	r.owner[id] = z
}

func (r *ZoneRegistry) unassign(z *CellZone, id CellID) {
	if cur, ok := r.owner[id]; ok && cur == z {
		delete(z.members, id)
		delete(r.owner, id)
	}
}

// CellZone is a named, registry-backed set of cells. Reassigning a cell
// to a different CellZone (Add) silently removes it from its previous
// owner; there is no way to belong to two zones from the same registry
// at once.
type CellZone struct {
	name string
	registry *ZoneRegistry
	members map[CellID]struct{}
}

func (z *CellZone) Name() string { return z.name }

func (z *CellZone) Add(id CellID) { z.registry.assign(z, id) }

func (z *CellZone) AddAll(ids []CellID) {
	for _, id := range ids {
		z.Add(id)
	}
}

func (z *CellZone) Remove(id CellID) { z.registry.unassign(z, id) }

func (z *CellZone) Contains(id CellID) bool {
	_, ok := z.members[id]
	return ok
}

func (z *CellZone) Len() int { return len(z.members) }

// Cells returns the current membership in unspecified order.
func (z *CellZone) Cells() []CellID {
	out := make([]CellID, 0, len(z.members))
	for id := range z.members {
		out = append(out, id)
	}
	return out
}

// Clear evicts every member of z, freeing them for reassignment.
func (z *CellZone) Clear() {
	for id := range z.members {
		delete(z.registry.owner, id)
	}
	z.members = make(map[CellID]struct{})
}
