package core

import (
	"errors"
	"fmt"

	"nurserycore/pkg/domain"
)

// ErrInvalidPlacement is returned when a group would end up inside itself.
var ErrInvalidPlacement = errors.New("invalid placement")

// ErrNotFound is returned when an identifier does not resolve to a
// component of the expected kind.
type ErrNotFound struct {
	Kind string
	ID   domain.ID
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// nursery is the mutable state guarded by the service lock. It doubles as
// the rule view.
type nursery struct {
	ids       *domain.IDAllocator
	inventory *domain.Inventory
	engine    *domain.RulesEngine
	day       int
	season    domain.Season
	changes   []domain.Change
}

func (n *nursery) Day() int { return n.day }

func (n *nursery) Plants() []*domain.Plant { return n.inventory.Plants() }

func (n *nursery) FindComponent(id domain.ID) (domain.Component, bool) {
	return n.inventory.Find(id)
}

func (n *nursery) record(change domain.Change) {
	n.changes = append(n.changes, change)
}

func (n *nursery) takeChanges() []domain.Change {
	out := n.changes
	n.changes = nil
	return out
}

func (n *nursery) group(id domain.ID) (*domain.Group, error) {
	c, ok := n.inventory.Find(id)
	g, isGroup := c.(*domain.Group)
	if !ok || !isGroup {
		return nil, ErrNotFound{Kind: "group", ID: id}
	}
	return g, nil
}

// place puts c under parent, or at the top level when parent is zero.
func (n *nursery) place(c domain.Component, parent domain.ID) error {
	if parent == 0 {
		n.inventory.Add(c)
		return nil
	}
	g, err := n.group(parent)
	if err != nil {
		return err
	}
	if g.OwnsChildren() {
		taken := n.inventory.Take(c)
		g.Add(c)
		if c.Owner() != g {
			if taken {
				n.inventory.Add(c)
			}
			return fmt.Errorf("%w: %s under %s", ErrInvalidPlacement, c.Name(), g.Name())
		}
		return nil
	}
	if !n.owned(c) {
		// a view alone would let c be collected
		n.inventory.Add(c)
	}
	g.Add(c)
	if !g.Contains(c) {
		return fmt.Errorf("%w: %s under %s", ErrInvalidPlacement, c.Name(), g.Name())
	}
	return nil
}

// findForSale returns the first owned item whose plant matches spec,
// preferring mature plants over any other stage. Matches reached through a
// view or inside a decorator resolve to the item that holds them.
func (n *nursery) findForSale(spec Specification) (domain.Component, *domain.Plant) {
	matches := domain.NewFiltered(domain.PreOrder{}, func(c domain.Component) bool {
		if _, isGroup := c.(*domain.Group); isGroup {
			return false
		}
		p, ok := domain.AsPlant(c)
		return ok && spec.Matches(p)
	})
	it := n.inventory.CreateIteratorWith(matches)
	wrappers := n.wrappers()
	seen := map[domain.Component]bool{}
	var fallback domain.Component
	for it.HasNext() {
		c := outermost(wrappers, it.Next())
		if seen[c] || !n.owned(c) {
			continue
		}
		seen[c] = true
		p, _ := domain.AsPlant(c)
		if p.Stage() == domain.StageMature {
			return c, p
		}
		if fallback == nil {
			fallback = c
		}
	}
	if fallback == nil {
		return nil, nil
	}
	p, _ := domain.AsPlant(fallback)
	return fallback, p
}

// resolve finds id in the owned forest and returns the item that holds it:
// the outermost decorator wrapping it, or the component itself.
func (n *nursery) resolve(id domain.ID) (domain.Component, error) {
	c, ok := n.inventory.Find(id)
	if !ok {
		return nil, ErrNotFound{Kind: "component", ID: id}
	}
	return outermost(n.wrappers(), c), nil
}

// wrappers maps every decorated component in the owned forest to the
// decorator wrapping it.
func (n *nursery) wrappers() map[domain.Component]*domain.Decorator {
	out := map[domain.Component]*domain.Decorator{}
	for _, top := range n.inventory.Components() {
		for _, node := range domain.OwnedTree(top) {
			if d, ok := node.(*domain.Decorator); ok && d.Unwrap() != nil {
				out[d.Unwrap()] = d
			}
		}
	}
	return out
}

func outermost(wrappers map[domain.Component]*domain.Decorator, c domain.Component) domain.Component {
	for {
		d, ok := wrappers[c]
		if !ok {
			return c
		}
		c = d
	}
}

// owned reports whether c is held by the owned forest: top-level or inside
// an owning group. Components reachable only through a view or from inside
// a decorator are not.
func (n *nursery) owned(c domain.Component) bool {
	if c.Owner() != nil {
		return c.Owner().OwnsChildren()
	}
	return n.inventory.Contains(c)
}

// detach removes c from the tree entirely: its owner or the top level, and
// every view referencing it. Its plants stop being observed. c must be a
// held item, not something wrapped inside a decorator.
func (n *nursery) detach(c domain.Component) error {
	if owner := c.Owner(); owner != nil {
		owner.Remove(c)
	} else if !n.inventory.Take(c) {
		return fmt.Errorf("%w: %s is not held by the nursery", ErrInvalidPlacement, c.Name())
	}
	gone := domain.OwnedTree(c)
	for _, node := range n.inventory.All() {
		if g, ok := node.(*domain.Group); ok && !g.OwnsChildren() {
			for _, member := range gone {
				g.Remove(member)
			}
		}
	}
	for _, p := range domain.PlantsOf(c) {
		p.DetachAllObservers()
	}
	return nil
}

// replace swaps old for next wherever old sits: its owner or top-level
// slot, and every view referencing it.
func (n *nursery) replace(old, next domain.Component) error {
	if owner := old.Owner(); owner != nil {
		if !owner.Replace(old, next) {
			return fmt.Errorf("%w: %s under %s", ErrInvalidPlacement, next.Name(), owner.Name())
		}
	} else if !n.inventory.Replace(old, next) {
		return fmt.Errorf("%w: %s is not held by the nursery", ErrInvalidPlacement, old.Name())
	}
	for _, node := range n.inventory.All() {
		if g, ok := node.(*domain.Group); ok && !g.OwnsChildren() {
			g.Replace(old, next)
		}
	}
	return nil
}

// checkpoint is a state-preserving copy used to roll back a blocked day.
// Clones drop view references, so view membership is kept by identifier.
type checkpoint struct {
	day   int
	items []domain.Component
	views map[domain.ID][]domain.ID
}

func (n *nursery) checkpoint() checkpoint {
	items := n.inventory.Components()
	cp := checkpoint{day: n.day, items: make([]domain.Component, 0, len(items)), views: map[domain.ID][]domain.ID{}}
	for _, c := range items {
		cp.items = append(cp.items, c.Clone())
	}
	for _, node := range n.inventory.All() {
		g, ok := node.(*domain.Group)
		if !ok || g.OwnsChildren() {
			continue
		}
		if _, done := cp.views[g.ID()]; done {
			continue
		}
		members := g.Members()
		ids := make([]domain.ID, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID())
		}
		cp.views[g.ID()] = ids
	}
	return cp
}

func (n *nursery) rollback(cp checkpoint) {
	inv := domain.NewInventory()
	for _, c := range cp.items {
		inv.Add(c)
	}
	for viewID, members := range cp.views {
		found, ok := inv.Find(viewID)
		view, isGroup := found.(*domain.Group)
		if !ok || !isGroup {
			continue
		}
		for _, id := range members {
			if c, ok := inv.Find(id); ok {
				view.Add(c)
			}
		}
	}
	n.inventory = inv
	n.day = cp.day
	n.changes = nil
}
