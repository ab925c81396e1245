package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Group is the composite node of the inventory tree. An owning group holds
// its children strongly and is recorded as their owner; a non-owning group
// (a view) holds weak references to components owned elsewhere.
type Group struct {
	base
	name  string
	owns  bool
	owned []Component
	refs  []componentRef
}

// NewGroup constructs an empty group. ownsChildren is fixed for the life of
// the group.
func NewGroup(ids *IDAllocator, name string, ownsChildren bool) *Group {
	return &Group{base: newBase(ids), name: name, owns: ownsChildren}
}

// NewView is NewGroup for a non-owning group.
func NewView(ids *IDAllocator, name string) *Group {
	return NewGroup(ids, name, false)
}

func (g *Group) Name() string { return g.name }

func (g *Group) TypeName() string { return groupTag }

// OwnsChildren reports whether the group owns what it holds.
func (g *Group) OwnsChildren() bool { return g.owns }

// Add inserts c. An owning group takes ownership, detaching c from its
// previous owner first; a view records a weak reference. Nil, duplicates
// and additions that would make the group contain itself are ignored.
func (g *Group) Add(c Component) {
	if isNil(c) {
		return
	}
	if sub, ok := c.(*Group); ok && sub.reaches(g) {
		return
	}
	if !g.owns {
		if g.references(c) {
			return
		}
		g.refs = append(g.refs, weakRef(c))
		return
	}
	prev := c.Owner()
	if prev == g {
		return
	}
	if prev != nil {
		prev.Remove(c)
	}
	g.owned = append(g.owned, c)
	c.SetOwner(g)
}

// Remove detaches c. Owned children lose their owner; referenced children
// are only dropped from the view. Absent components are ignored.
func (g *Group) Remove(c Component) {
	if isNil(c) {
		return
	}
	if i := slices.IndexFunc(g.owned, func(o Component) bool { return o == c }); i >= 0 {
		g.owned = slices.Delete(g.owned, i, i+1)
		if c.Owner() == g {
			c.SetOwner(nil)
		}
		return
	}
	if i := slices.IndexFunc(g.refs, func(r componentRef) bool { return r.get() == c }); i >= 0 {
		g.refs = slices.Delete(g.refs, i, i+1)
	}
}

// Replace puts next in old's slot, keeping its position among the owned
// children or the references. An owning group takes ownership of next and
// releases old. It reports false when old is not a direct member or next
// cannot be added here.
func (g *Group) Replace(old, next Component) bool {
	if isNil(old) || isNil(next) || old == next || g.Contains(next) {
		return false
	}
	if sub, ok := next.(*Group); ok && sub.reaches(g) {
		return false
	}
	if i := slices.IndexFunc(g.owned, func(o Component) bool { return o == old }); i >= 0 {
		if prev := next.Owner(); prev != nil {
			prev.Remove(next)
		}
		g.owned[i] = next
		next.SetOwner(g)
		if old.Owner() == g {
			old.SetOwner(nil)
		}
		return true
	}
	if i := slices.IndexFunc(g.refs, func(r componentRef) bool { return r.get() == old }); i >= 0 {
		g.refs[i] = weakRef(next)
		return true
	}
	return false
}

// Price sums owned children and live referenced children.
func (g *Group) Price() float64 {
	var total float64
	for _, c := range g.owned {
		total += c.Price()
	}
	for _, r := range g.refs {
		if c := r.get(); c != nil {
			total += c.Price()
		}
	}
	return total
}

// Members returns owned children followed by live referenced children, each
// in insertion order. The slice is a fresh copy.
func (g *Group) Members() []Component {
	out := make([]Component, 0, len(g.owned)+len(g.refs))
	out = append(out, g.owned...)
	for _, r := range g.refs {
		if c := r.get(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Owned returns a copy of the owned children.
func (g *Group) Owned() []Component {
	return slices.Clone(g.owned)
}

// Contains reports whether c is a direct member.
func (g *Group) Contains(c Component) bool {
	if isNil(c) {
		return false
	}
	return slices.Contains(g.owned, c) || g.references(c)
}

// PruneExpiredReferences drops referenced entries whose target has been
// collected and returns how many were dropped.
func (g *Group) PruneExpiredReferences() int {
	before := len(g.refs)
	g.refs = slices.DeleteFunc(g.refs, func(r componentRef) bool { return r.get() == nil })
	return before - len(g.refs)
}

// ReferenceSlots reports the stored reference entries, expired ones
// included.
func (g *Group) ReferenceSlots() int { return len(g.refs) }

// CreateIterator iterates the subtree in pre-order.
func (g *Group) CreateIterator() Iterator {
	return NewCompositeIterator(g, PreOrder{})
}

// CreateIteratorWith iterates the subtree with strategy.
func (g *Group) CreateIteratorWith(strategy TraversalStrategy) Iterator {
	return NewCompositeIterator(g, strategy)
}

// Clone deep-copies the owned subtree, keeping identifiers. Referenced
// children are not carried over: the copy of a view is empty.
func (g *Group) Clone() Component {
	out := &Group{base: base{id: g.id, ids: g.ids}, name: g.name, owns: g.owns}
	for _, c := range g.owned {
		out.Add(c.Clone())
	}
	return out
}

// BlueprintClone rebuilds the owned subtree with fresh identifiers and
// default runtime state.
func (g *Group) BlueprintClone() Component {
	out := NewGroup(g.ids, g.name, g.owns)
	for _, c := range g.owned {
		out.Add(c.BlueprintClone())
	}
	return out
}

type groupPayload struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	OwnsChildren bool     `json:"owns_children"`
	Children     []string `json:"children,omitempty"`
}

// Serialize renders "Group|{json}" with the owned children serialized
// inline. Referenced children are omitted.
func (g *Group) Serialize() string {
	payload := groupPayload{ID: g.id, Name: g.name, OwnsChildren: g.owns}
	for _, c := range g.owned {
		payload.Children = append(payload.Children, c.Serialize())
	}
	raw, _ := json.Marshal(payload)
	return groupTag + typeSeparator + string(raw)
}

// Deserialize replaces the owned children and name with the decoded ones.
// References are kept. On error the group is left untouched.
func (g *Group) Deserialize(data string) error {
	payload, err := parseGroupPayload(data)
	if err != nil {
		return err
	}
	if payload.OwnsChildren != g.owns {
		return newDeserializationError(groupTag, fmt.Sprintf("owns_children=%t does not match group", payload.OwnsChildren), nil)
	}
	children := make([]Component, 0, len(payload.Children))
	for i, text := range payload.Children {
		c, err := DecodeComponent(text, g.ids)
		if err != nil {
			return newDeserializationError(groupTag, fmt.Sprintf("child %d", i), err)
		}
		children = append(children, c)
	}
	for _, c := range g.owned {
		if c.Owner() == g {
			c.SetOwner(nil)
		}
	}
	g.owned = nil
	g.name = payload.Name
	if payload.ID != 0 {
		g.SetID(payload.ID)
	}
	for _, c := range children {
		g.Add(c)
	}
	return nil
}

func parseGroupPayload(data string) (groupPayload, error) {
	var payload groupPayload
	tag, body, ok := splitTag(data)
	if !ok {
		return payload, newDeserializationError(groupTag, "missing type tag", nil)
	}
	if tag != groupTag {
		return payload, newDeserializationError(groupTag, fmt.Sprintf("type tag %q does not match", tag), nil)
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return payload, newDeserializationError(groupTag, "invalid payload", err)
	}
	return payload, nil
}

func (g *Group) references(c Component) bool {
	return slices.ContainsFunc(g.refs, func(r componentRef) bool { return r.get() == c })
}

// reaches reports whether target is g or lies anywhere below g.
func (g *Group) reaches(target *Group) bool {
	seen := map[*Group]bool{}
	var walk func(*Group) bool
	walk = func(n *Group) bool {
		if n == target {
			return true
		}
		if seen[n] {
			return false
		}
		seen[n] = true
		for _, c := range n.Members() {
			if sub, ok := c.(*Group); ok && walk(sub) {
				return true
			}
		}
		return false
	}
	return walk(g)
}
