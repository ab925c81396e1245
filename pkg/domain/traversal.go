package domain

import "iter"

// TraversalStrategy flattens a tree rooted at root, appending nodes to out
// and returning the extended slice. Traverse never mutates the tree; a nil
// root leaves out unchanged.
type TraversalStrategy interface {
	Traverse(root Component, out []Component) []Component
}

// members returns the children a traversal descends into.
func members(c Component) []Component {
	if g, ok := c.(*Group); ok && g != nil {
		return g.Members()
	}
	return nil
}

// PreOrder visits a node before its children, children in insertion order.
type PreOrder struct{}

func (PreOrder) Traverse(root Component, out []Component) []Component {
	if isNil(root) {
		return out
	}
	out = append(out, root)
	for _, child := range members(root) {
		out = PreOrder{}.Traverse(child, out)
	}
	return out
}

// LevelOrder visits the tree breadth first.
type LevelOrder struct{}

func (LevelOrder) Traverse(root Component, out []Component) []Component {
	if isNil(root) {
		return out
	}
	queue := []Component{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		out = append(out, node)
		queue = append(queue, members(node)...)
	}
	return out
}

// Filtered runs Base to completion and keeps only the nodes Keep accepts,
// preserving their relative order.
type Filtered struct {
	Base TraversalStrategy
	Keep func(Component) bool
}

// NewFiltered wraps base with keep. A nil base means PreOrder.
func NewFiltered(base TraversalStrategy, keep func(Component) bool) Filtered {
	return Filtered{Base: base, Keep: keep}
}

func (f Filtered) Traverse(root Component, out []Component) []Component {
	base := f.Base
	if base == nil {
		base = PreOrder{}
	}
	all := base.Traverse(root, nil)
	if f.Keep == nil {
		return append(out, all...)
	}
	for _, c := range all {
		if f.Keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Walk returns the traversal of root as a sequence. The order is fixed
// when iteration starts.
func Walk(root Component, strategy TraversalStrategy) iter.Seq[Component] {
	if strategy == nil {
		strategy = PreOrder{}
	}
	return func(yield func(Component) bool) {
		for _, c := range strategy.Traverse(root, nil) {
			if !yield(c) {
				return
			}
		}
	}
}

// IsPlant matches undecorated plants.
func IsPlant(c Component) bool {
	_, ok := c.(*Plant)
	return ok
}

// IsLeaf matches anything that is not a Group.
func IsLeaf(c Component) bool {
	_, ok := c.(*Group)
	return !ok
}

// AsPlant returns the plant at the core of a decorator chain.
func AsPlant(c Component) (*Plant, bool) {
	for !isNil(c) {
		switch v := c.(type) {
		case *Plant:
			return v, true
		case *Decorator:
			c = v.Unwrap()
		default:
			return nil, false
		}
	}
	return nil, false
}
