package domain

import (
	"runtime"
	"testing"
)

func newTestPlant(t *testing.T, ids *IDAllocator, name SpeciesName) *Plant {
	t.Helper()
	species, ok := LookupSpecies(string(name))
	if !ok {
		t.Fatalf("unknown species %s", name)
	}
	return NewPlant(ids, species)
}

func names(items []Component) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Name())
	}
	return out
}

func drain(it Iterator) []Component {
	var out []Component
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// collect runs the garbage collector until cond holds or attempts run out.
func collect(cond func() bool) bool {
	for range 10 {
		runtime.GC()
		if cond() {
			return true
		}
	}
	return cond()
}

// addTransient references a plant that nothing else keeps alive.
//
//go:noinline
func addTransient(view *Group, ids *IDAllocator) {
	view.Add(NewPlant(ids, MustSpecies(Daisy)))
}

// treeFixture builds Root(A(X,Y), B(Z)) with owning groups.
type treeFixture struct {
	root, a, b *Group
	x, y, z    *Plant
}

func newTreeFixture(t *testing.T) treeFixture {
	t.Helper()
	ids := NewIDAllocator()
	f := treeFixture{
		root: NewGroup(ids, "Root", true),
		a:    NewGroup(ids, "A", true),
		b:    NewGroup(ids, "B", true),
		x:    newTestPlant(t, ids, Rose),
		y:    newTestPlant(t, ids, Cactus),
		z:    newTestPlant(t, ids, Fern),
	}
	f.a.Add(f.x)
	f.a.Add(f.y)
	f.b.Add(f.z)
	f.root.Add(f.a)
	f.root.Add(f.b)
	return f
}
