package domain

import "fmt"

// DecoratorKind selects the add-on a Decorator represents.
type DecoratorKind string

// Available decorator kinds. The values double as serialization tags.
const (
	GiftWrap DecoratorKind = "GiftWrap"
	Pot      DecoratorKind = "Pot"
	Ribbon   DecoratorKind = "Ribbon"
)

type decoratorSpec struct {
	suffix    string
	surcharge float64
	bareName  string
}

var decoratorSpecs = map[DecoratorKind]decoratorSpec{
	GiftWrap: {suffix: " + Gift Wrap", surcharge: 15, bareName: "Gift Wrap"},
	Pot:      {suffix: " in Pot", surcharge: 30, bareName: "Pot"},
	Ribbon:   {suffix: " with Ribbon", surcharge: 10, bareName: "Ribbon"},
}

// ParseDecoratorKind resolves a serialization tag.
func ParseDecoratorKind(s string) (DecoratorKind, bool) {
	k := DecoratorKind(s)
	_, ok := decoratorSpecs[k]
	return k, ok
}

// Decorator wraps one component and adjusts its name and price. Decorators
// chain: the wrapped component may itself be a Decorator.
type Decorator struct {
	base
	kind    DecoratorKind
	spec    decoratorSpec
	wrapped Component
}

// NewDecorator wraps c. It panics on an unknown kind.
func NewDecorator(ids *IDAllocator, kind DecoratorKind, c Component) *Decorator {
	spec, ok := decoratorSpecs[kind]
	if !ok {
		panic(fmt.Sprintf("domain: unknown decorator kind %q", kind))
	}
	if isNil(c) {
		c = nil
	}
	return &Decorator{base: newBase(ids), kind: kind, spec: spec, wrapped: c}
}

func NewGiftWrap(ids *IDAllocator, c Component) *Decorator { return NewDecorator(ids, GiftWrap, c) }

func NewPot(ids *IDAllocator, c Component) *Decorator { return NewDecorator(ids, Pot, c) }

func NewRibbon(ids *IDAllocator, c Component) *Decorator { return NewDecorator(ids, Ribbon, c) }

// Kind returns the decorator kind.
func (d *Decorator) Kind() DecoratorKind { return d.kind }

// Unwrap returns the wrapped component, or nil.
func (d *Decorator) Unwrap() Component { return d.wrapped }

func (d *Decorator) TypeName() string { return string(d.kind) }

// Name appends the decorator suffix, or returns the bare decorator name when
// nothing is wrapped.
func (d *Decorator) Name() string {
	if d.wrapped == nil {
		return d.spec.bareName
	}
	return d.wrapped.Name() + d.spec.suffix
}

func (d *Decorator) Price() float64 {
	if d.wrapped == nil {
		return d.spec.surcharge
	}
	return d.wrapped.Price() + d.spec.surcharge
}

// CreateIterator forwards to the wrapped component.
func (d *Decorator) CreateIterator() Iterator {
	if d.wrapped == nil {
		return newSliceIterator(nil)
	}
	return d.wrapped.CreateIterator()
}

// Clone copies the whole chain, keeping identifiers.
func (d *Decorator) Clone() Component {
	out := &Decorator{base: base{id: d.id, ids: d.ids}, kind: d.kind, spec: d.spec}
	if d.wrapped != nil {
		out.wrapped = d.wrapped.Clone()
	}
	return out
}

// BlueprintClone rebuilds the chain with fresh identifiers and state.
func (d *Decorator) BlueprintClone() Component {
	var inner Component
	if d.wrapped != nil {
		inner = d.wrapped.BlueprintClone()
	}
	return NewDecorator(d.ids, d.kind, inner)
}

// Serialize renders "<Kind>|<wrapped>".
func (d *Decorator) Serialize() string {
	if d.wrapped == nil {
		return d.TypeName() + typeSeparator
	}
	return d.TypeName() + typeSeparator + d.wrapped.Serialize()
}

// Deserialize checks the tag and forwards the remainder to the wrapped
// component. An empty decorator decodes the remainder into a new component.
func (d *Decorator) Deserialize(data string) error {
	tag, rest, ok := splitTag(data)
	if !ok {
		return newDeserializationError(d.TypeName(), "missing type tag", nil)
	}
	if tag != d.TypeName() {
		return newDeserializationError(d.TypeName(), fmt.Sprintf("type tag %q does not match", tag), nil)
	}
	if d.wrapped != nil {
		return d.wrapped.Deserialize(rest)
	}
	if rest == "" {
		return nil
	}
	inner, err := DecodeComponent(rest, d.ids)
	if err != nil {
		return err
	}
	d.wrapped = inner
	return nil
}
