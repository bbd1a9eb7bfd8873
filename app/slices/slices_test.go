package slices

import (
	"reflect"
	"testing"
)

func TestIndexAndContains(t *testing.T) {
	vs := []string{"Actigraph", "E4", "Wavelet"}
	if Index(vs, "E4") != 1 {
		t.Errorf("expected index 1 for E4, got %d", Index(vs, "E4"))
	}
	if Index(vs, "Embrace") != -1 {
		t.Error("expected -1 for missing element")
	}
	if !Contains(vs, "Wavelet") || Contains(vs, "Embrace") {
		t.Error("Contains gave the wrong answer")
	}
}

func TestAppendUnique(t *testing.T) {
	vs := []string{"left"}
	vs = AppendUnique(vs, "right")
	vs = AppendUnique(vs, "left")
	if len(vs) != 2 {
		t.Errorf("expected 2 elements, got %v", vs)
	}
}

func TestSortedUnique(t *testing.T) {
	got := SortedUnique([]string{"b", "a", "b", "c", "a"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("expected sorted unique [a b c], got %v", got)
	}
}
