// Package domain defines the nursery inventory model: plants, decorated
// plants and groups arranged as a single-owner composite tree, together with
// the traversal strategies and iterators used to read it.
package domain

import "weak"

// Component is the capability set shared by every node of the inventory
// tree. Leaves and composites are treated uniformly through it; Add and
// Remove are no-ops on anything that is not a Group.
type Component interface {
	ID() ID
	SetID(ID)
	Name() string
	Price() float64
	CreateIterator() Iterator
	// Clone returns a state-preserving deep copy that keeps the identifier.
	Clone() Component
	// BlueprintClone returns a fresh instance with a new identifier and
	// default runtime state.
	BlueprintClone() Component
	Serialize() string
	Deserialize(data string) error
	TypeName() string
	Owner() *Group
	SetOwner(*Group)
	Add(Component)
	Remove(Component)
}

// base carries identity and the weak owner back-reference.
type base struct {
	id    ID
	ids   *IDAllocator
	owner weak.Pointer[Group]
}

func newBase(ids *IDAllocator) base {
	ids = allocatorOrDefault(ids)
	return base{id: ids.Next(), ids: ids}
}

func (b *base) ID() ID { return b.id }

func (b *base) SetID(id ID) {
	b.id = id
	b.ids.Observe(id)
}

// Owner returns the owning group, or nil for unowned components.
func (b *base) Owner() *Group {
	return b.owner.Value()
}

func (b *base) SetOwner(g *Group) {
	if g == nil {
		b.owner = weak.Pointer[Group]{}
		return
	}
	b.owner = weak.Make(g)
}

func (b *base) Add(Component) {}

func (b *base) Remove(Component) {}

// componentRef is a non-owning handle on a component held by a view group.
type componentRef struct {
	resolve func() Component
}

func (r componentRef) get() Component {
	if r.resolve == nil {
		return nil
	}
	return r.resolve()
}

// weakRef builds a reference that does not keep c alive. Component types
// outside this package cannot be weakened and are held strongly.
func weakRef(c Component) componentRef {
	switch v := c.(type) {
	case *Plant:
		return componentRef{resolve: weakOf(v)}
	case *Group:
		return componentRef{resolve: weakOf(v)}
	case *Decorator:
		return componentRef{resolve: weakOf(v)}
	default:
		return componentRef{resolve: func() Component { return c }}
	}
}

func weakOf[T any, P interface {
	*T
	Component
}](p P) func() Component {
	w := weak.Make((*T)(p))
	return func() Component {
		if v := w.Value(); v != nil {
			return P(v)
		}
		return nil
	}
}

// isNil reports whether c is nil or a typed nil pointer.
func isNil(c Component) bool {
	if c == nil {
		return true
	}
	switch v := c.(type) {
	case *Plant:
		return v == nil
	case *Group:
		return v == nil
	case *Decorator:
		return v == nil
	}
	return false
}
