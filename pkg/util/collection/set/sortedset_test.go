package set

import (
	"testing"
)

func TestSortedSetInsert(t *testing.T) {
	s := NewSortedSet[string]()
	//
	for _, v := range []string{"c", "a", "b", "a"} {
		s.Insert(v)
	}
	//
	if len(*s) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(*s))
	}
	//
	for i, expected := range []string{"a", "b", "c"} {
		if (*s)[i] != expected {
			t.Errorf("expected %s at %d, got %s", expected, i, (*s)[i])
		}
	}
	//
	if !s.Contains("b") || s.Contains("d") {
		t.Errorf("containment check broken")
	}
}

func TestSortedSetInsertSorted(t *testing.T) {
	l := NewSortedSet[string]()
	r := NewSortedSet[string]()
	//
	for _, v := range []string{"a", "c", "e"} {
		l.Insert(v)
	}
	//
	for _, v := range []string{"b", "c", "d"} {
		r.Insert(v)
	}
	//
	l.InsertSorted(r)
	//
	expected := []string{"a", "b", "c", "d", "e"}
	//
	if len(*l) != len(expected) {
		t.Fatalf("expected %d elements, got %d", len(expected), len(*l))
	}
	//
	for i := range expected {
		if (*l)[i] != expected[i] {
			t.Errorf("expected %s at %d, got %s", expected[i], i, (*l)[i])
		}
	}
	// The right operand must be untouched.
	if len(*r) != 3 {
		t.Errorf("right operand mutated")
	}
}

func TestSortedSetClone(t *testing.T) {
	s := NewSortedSet[int]()
	s.Insert(1)
	//
	c := s.Clone()
	c.Insert(2)
	//
	if len(*s) != 1 || len(*c) != 2 {
		t.Errorf("clone shares state with its original")
	}
}

func TestUnionSortedSets(t *testing.T) {
	sets := [][]int{{1, 3}, {2, 3}, {4}}
	//
	u := UnionSortedSets(sets, func(vs []int) *SortedSet[int] {
		s := NewSortedSet[int]()
		for _, v := range vs {
			s.Insert(v)
		}
		//
		return s
	})
	//
	if len(*u) != 4 {
		t.Errorf("expected 4 elements, got %d", len(*u))
	}
}
