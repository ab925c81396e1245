package domain

import "slices"

// Inventory is the root of the tree. It holds its top-level components
// strongly and never becomes their owner: anything added here is unowned.
type Inventory struct {
	items []Component
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Add appends c as a top-level component, detaching it from any previous
// owning group. Re-adding a present component is a no-op.
func (inv *Inventory) Add(c Component) {
	if isNil(c) || inv.Contains(c) {
		return
	}
	if prev := c.Owner(); prev != nil {
		prev.Remove(c)
	}
	c.SetOwner(nil)
	inv.items = append(inv.items, c)
}

// Remove drops the top-level component c and detaches the observers of
// every plant it owns, directly or through nested groups and decorators.
func (inv *Inventory) Remove(c Component) {
	if isNil(c) {
		return
	}
	i := slices.IndexFunc(inv.items, func(o Component) bool { return o == c })
	if i < 0 {
		return
	}
	inv.items = slices.Delete(inv.items, i, i+1)
	forEachOwned(c, func(n Component) {
		if p, ok := AsPlant(n); ok {
			p.DetachAllObservers()
		}
	})
}

// Take drops the top-level component c without touching observers, for
// callers that are re-homing it elsewhere in the tree.
func (inv *Inventory) Take(c Component) bool {
	i := slices.IndexFunc(inv.items, func(o Component) bool { return o == c })
	if i < 0 {
		return false
	}
	inv.items = slices.Delete(inv.items, i, i+1)
	return true
}

// Replace puts next in old's top-level slot. next is detached from any
// owning group and old keeps its observers. It reports false when old is
// not top-level or next already is.
func (inv *Inventory) Replace(old, next Component) bool {
	if isNil(old) || isNil(next) || inv.Contains(next) {
		return false
	}
	i := slices.IndexFunc(inv.items, func(o Component) bool { return o == old })
	if i < 0 {
		return false
	}
	if prev := next.Owner(); prev != nil {
		prev.Remove(next)
	}
	next.SetOwner(nil)
	inv.items[i] = next
	return true
}

// Contains reports whether c is a top-level component.
func (inv *Inventory) Contains(c Component) bool {
	return slices.Contains(inv.items, c)
}

// Components returns a copy of the top-level components.
func (inv *Inventory) Components() []Component {
	return slices.Clone(inv.items)
}

// Len reports the number of top-level components.
func (inv *Inventory) Len() int { return len(inv.items) }

// Price sums the owned forest. Views add nothing of their own: what they
// reference is counted where it is owned.
func (inv *Inventory) Price() float64 {
	var total float64
	for _, c := range inv.items {
		total += ownedPrice(c)
	}
	return total
}

func ownedPrice(c Component) float64 {
	switch v := c.(type) {
	case *Group:
		var total float64
		for _, child := range v.owned {
			total += ownedPrice(child)
		}
		return total
	case *Decorator:
		if v.wrapped == nil {
			return v.spec.surcharge
		}
		return ownedPrice(v.wrapped) + v.spec.surcharge
	default:
		return c.Price()
	}
}

// CreateIterator iterates every top-level component and its subtree in
// pre-order. The implicit root is not yielded.
func (inv *Inventory) CreateIterator() Iterator {
	return inv.CreateIteratorWith(PreOrder{})
}

// CreateIteratorWith iterates the forest as children of an implicit
// non-owning root traversed with strategy.
func (inv *Inventory) CreateIteratorWith(strategy TraversalStrategy) Iterator {
	return newSliceIterator(inv.flatten(strategy))
}

// All returns the pre-order traversal of the forest.
func (inv *Inventory) All() []Component {
	return inv.flatten(PreOrder{})
}

// Plants returns every plant in the owned forest, unwrapping decorators,
// in pre-order. Plants reachable only through views are not included.
func (inv *Inventory) Plants() []*Plant {
	var out []*Plant
	for _, top := range inv.items {
		out = appendPlants(out, top)
	}
	return out
}

// PlantsOf returns the plants c owns, c itself included, unwrapping
// decorators.
func PlantsOf(c Component) []*Plant {
	return appendPlants(nil, c)
}

// OwnedTree returns c and everything it owns in pre-order. View references
// are not followed.
func OwnedTree(c Component) []Component {
	var out []Component
	forEachOwned(c, func(n Component) { out = append(out, n) })
	return out
}

func appendPlants(out []*Plant, c Component) []*Plant {
	forEachOwned(c, func(n Component) {
		if p, ok := n.(*Plant); ok {
			out = append(out, p)
		}
	})
	return out
}

// Find locates a component anywhere in the owned forest by identifier.
func (inv *Inventory) Find(id ID) (Component, bool) {
	var found Component
	for _, top := range inv.items {
		forEachOwned(top, func(n Component) {
			if found == nil && n.ID() == id {
				found = n
			}
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func (inv *Inventory) flatten(strategy TraversalStrategy) []Component {
	if strategy == nil {
		strategy = PreOrder{}
	}
	root := &Group{name: "inventory"}
	for _, c := range inv.items {
		root.refs = append(root.refs, componentRef{resolve: func() Component { return c }})
	}
	all := strategy.Traverse(root, nil)
	return slices.DeleteFunc(all, func(c Component) bool { return c == Component(root) })
}

// forEachOwned visits c and everything it owns: owned group children and
// decorator chains, but not view references.
func forEachOwned(c Component, fn func(Component)) {
	if isNil(c) {
		return
	}
	fn(c)
	switch v := c.(type) {
	case *Group:
		for _, child := range v.owned {
			forEachOwned(child, fn)
		}
	case *Decorator:
		forEachOwned(v.wrapped, fn)
	}
}
