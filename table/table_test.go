package table

import (
	"testing"
)

type weight struct {
	throttle float64
	roll     float64
}

func isZeroThrottle(w weight) bool {
	return w.throttle == 0
}

func TestInsertUntilFull(t *testing.T) {
	tbl := New[int](3)
	for i := 0; i < 3; i++ {
		if !tbl.Insert(i) {
			t.Errorf("Insert %v failed before full", i)
		}
	}
	if !tbl.Full() {
		t.Error("Table should be full")
	}
	if tbl.Insert(99) {
		t.Error("Insert succeeded on a full table")
	}
	if tbl.Len() != 3 || tbl.Cap() != 3 {
		t.Errorf("Bad len/cap: %v %v", tbl.Len(), tbl.Cap())
	}
}

func TestFindAndRemove(t *testing.T) {
	tbl := New[string](5)
	tbl.Insert("a")
	tbl.Insert("b")
	tbl.Insert("c")

	index, ok := tbl.Find(func(s string) bool { return s == "b" })
	if !ok || index != 1 {
		t.Errorf("Bad find: %v %v", index, ok)
	}
	if !tbl.Remove(index) {
		t.Error("Remove failed")
	}
	if tbl.Len() != 2 || tbl.At(0) != "a" || tbl.At(1) != "c" {
		t.Errorf("Bad order after remove: %v", tbl.Items())
	}
	if tbl.Remove(5) {
		t.Error("Remove out of range succeeded")
	}
	if _, ok := tbl.Find(func(s string) bool { return s == "z" }); ok {
		t.Error("Found missing item")
	}
}

func TestRemoveFunc(t *testing.T) {
	tbl := New[int](6)
	for i := 0; i < 6; i++ {
		tbl.Insert(i)
	}
	removed := tbl.RemoveFunc(func(v int) bool { return v%2 == 0 })
	if removed != 3 {
		t.Errorf("Bad removed count: %v", removed)
	}
	expected := []int{1, 3, 5}
	for i, v := range expected {
		if tbl.At(i) != v {
			t.Errorf("Bad item %v: %v", i, tbl.At(i))
		}
	}
	// Space freed by removal is usable again
	if !tbl.Insert(7) {
		t.Error("Insert after RemoveFunc failed")
	}
}

func TestEachStopsEarly(t *testing.T) {
	tbl := New[int](4)
	for i := 0; i < 4; i++ {
		tbl.Insert(i * 10)
	}
	visited := 0
	tbl.Each(func(i int, v int) bool {
		visited++
		return i < 1
	})
	if visited != 2 {
		t.Errorf("Bad visit count: %v", visited)
	}
}

func TestTerminatedLength(t *testing.T) {
	weights := []weight{
		{0.25, 1},
		{0.25, -1},
		{0, 0},
		{0.25, 1},
	}
	if count := TerminatedLength(weights, isZeroThrottle); count != 2 {
		t.Errorf("Bad count: %v", count)
	}
	if count := TerminatedLength(weights[:2], isZeroThrottle); count != 2 {
		t.Errorf("Bad count without terminator: %v", count)
	}
	if count := TerminatedLength([]weight{{0, 1}}, isZeroThrottle); count != 0 {
		t.Errorf("Bad count for leading terminator: %v", count)
	}
}

func TestFromTerminated(t *testing.T) {
	weights := []weight{{1, 1}, {1, -1}, {1, 0.5}, {0, 0}, {1, 1}}
	tbl := FromTerminated(weights, 8, isZeroThrottle)
	if tbl.Len() != 3 {
		t.Errorf("Bad len: %v", tbl.Len())
	}
	if tbl.Cap() != 8 {
		t.Errorf("Bad cap: %v", tbl.Cap())
	}

	small := FromTerminated(weights, 2, isZeroThrottle)
	if small.Len() != 2 {
		t.Errorf("Capacity not honored: %v", small.Len())
	}
}

func TestSetAndPtr(t *testing.T) {
	tbl := New[weight](2)
	tbl.Insert(weight{1, 0})
	tbl.Ptr(0).roll = 0.5
	if tbl.At(0).roll != 0.5 {
		t.Errorf("Bad roll through Ptr: %v", tbl.At(0).roll)
	}
	if tbl.Set(1, weight{}) {
		t.Error("Set past len succeeded")
	}
	tbl.Clear()
	if tbl.Len() != 0 {
		t.Errorf("Bad len after clear: %v", tbl.Len())
	}
}
