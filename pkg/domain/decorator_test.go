package domain

import "testing"

func TestDecoratorNamesAndPrices(t *testing.T) {
	p := newTestPlant(t, nil, Rose)
	cases := []struct {
		c     Component
		name  string
		price float64
	}{
		{NewGiftWrap(nil, p), "Rose + Gift Wrap", 150},
		{NewPot(nil, p), "Rose in Pot", 165},
		{NewRibbon(nil, p), "Rose with Ribbon", 145},
		{NewRibbon(nil, NewPot(nil, p)), "Rose in Pot with Ribbon", 175},
		{NewGiftWrap(nil, nil), "Gift Wrap", 15},
		{NewPot(nil, nil), "Pot", 30},
		{NewRibbon(nil, (*Plant)(nil)), "Ribbon", 10},
	}
	for _, tc := range cases {
		if tc.c.Name() != tc.name || tc.c.Price() != tc.price {
			t.Fatalf("expected %q/%v, got %q/%v", tc.name, tc.price, tc.c.Name(), tc.c.Price())
		}
	}
}

func TestDecoratorIteratorForwards(t *testing.T) {
	p := newTestPlant(t, nil, Cactus)
	got := drain(NewGiftWrap(nil, p).CreateIterator())
	if len(got) != 1 || got[0] != Component(p) {
		t.Fatalf("expected wrapped plant, got %v", names(got))
	}
	if got := drain(NewPot(nil, nil).CreateIterator()); len(got) != 0 {
		t.Fatalf("expected empty iterator for empty decorator")
	}
}

func TestDecoratorClones(t *testing.T) {
	ids := NewIDAllocator()
	p := newTestPlant(t, ids, Fern)
	p.SetAge(7)
	d := NewRibbon(ids, NewPot(ids, p))

	clone := d.Clone().(*Decorator)
	if clone.ID() != d.ID() || clone.Name() != d.Name() {
		t.Fatalf("expected identical clone")
	}
	inner, _ := AsPlant(clone)
	if inner == p || inner.Age() != 7 || inner.ID() != p.ID() {
		t.Fatalf("expected deep state-preserving copy of chain")
	}

	bp := d.BlueprintClone().(*Decorator)
	if bp.ID() == d.ID() || bp.Name() != d.Name() || bp.Price() != d.Price() {
		t.Fatalf("expected fresh chain with same shape")
	}
	fresh, _ := AsPlant(bp)
	if fresh.Age() != 0 || fresh.ID() == p.ID() {
		t.Fatalf("expected fresh wrapped plant")
	}
	if bp.Kind() != Ribbon || bp.Unwrap().(*Decorator).Kind() != Pot {
		t.Fatalf("expected kinds preserved")
	}
}

func TestDecoratorInGroupIsOpaque(t *testing.T) {
	ids := NewIDAllocator()
	plot := NewGroup(ids, "Plot", true)
	gift := NewGiftWrap(ids, newTestPlant(t, ids, Tulip))
	plot.Add(gift)
	if gift.Owner() != plot {
		t.Fatalf("expected decorator to be owned like any component")
	}
	if plot.Price() != 120 {
		t.Fatalf("expected decorated price, got %v", plot.Price())
	}
	gift.Add(newTestPlant(t, ids, Rose))
	if gift.Price() != 120 {
		t.Fatalf("expected Add on a decorator to be a no-op")
	}
}

func TestParseDecoratorKind(t *testing.T) {
	if k, ok := ParseDecoratorKind("Pot"); !ok || k != Pot {
		t.Fatalf("expected Pot")
	}
	if _, ok := ParseDecoratorKind("Vase"); ok {
		t.Fatalf("expected unknown kind")
	}
}
