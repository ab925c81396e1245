package domain

// Iterator is a forward-only cursor. Next returns nil once exhausted and
// keeps doing so on further calls.
type Iterator interface {
	HasNext() bool
	Next() Component
}

type sliceIterator struct {
	items []Component
	pos   int
}

func newSliceIterator(items []Component) *sliceIterator {
	return &sliceIterator{items: items}
}

func (it *sliceIterator) HasNext() bool {
	return it.pos < len(it.items)
}

func (it *sliceIterator) Next() Component {
	if it.pos >= len(it.items) {
		return nil
	}
	c := it.items[it.pos]
	it.pos++
	return c
}

// CompositeIterator walks a snapshot of a tree taken at construction time.
// Later mutations of the tree are not visible to it.
type CompositeIterator struct {
	sliceIterator
}

// NewCompositeIterator materializes root with strategy. A nil strategy
// means PreOrder.
func NewCompositeIterator(root Component, strategy TraversalStrategy) *CompositeIterator {
	if strategy == nil {
		strategy = PreOrder{}
	}
	return &CompositeIterator{sliceIterator{items: strategy.Traverse(root, nil)}}
}

// Remaining reports how many elements have not been returned yet.
func (it *CompositeIterator) Remaining() int {
	return len(it.items) - it.pos
}
