package lineset

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("dedups_and_sorts", func(t *testing.T) {
		ls := New(5, 3, 5, 1)
		if !reflect.DeepEqual(ls.Lines(), []int{1, 3, 5}) {
			t.Errorf("expected [1 3 5], got %v", ls.Lines())
		}
	})

	t.Run("empty", func(t *testing.T) {
		if !New().IsEmpty() {
			t.Error("expected empty set")
		}
	})
}

func TestString(t *testing.T) {
	cases := []struct {
		name  string
		lines []int
		want  string
	}{
		{"empty", nil, ""},
		{"single", []int{5}, "5"},
		{"contiguous", []int{5, 6, 7}, "5-7"},
		{"mixed", []int{5, 7, 8, 12}, "5,7-8,12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := New(tc.lines...).String(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFromString(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		ls, err := FromString("5,7-8,12")
		if err != nil {
			t.Fatal(err)
		}
		if ls.String() != "5,7-8,12" {
			t.Errorf("round trip failed: %q", ls.String())
		}
	})

	t.Run("rejects_backwards_range", func(t *testing.T) {
		if _, err := FromString("7-5"); err == nil {
			t.Error("expected error for backwards range")
		}
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		if _, err := FromString("abc"); err == nil {
			t.Error("expected error for non-numeric input")
		}
	})
}

func TestAdd(t *testing.T) {
	ls := New(3).Add(5).Add(4).Add(3)
	if ls.String() != "3-5" {
		t.Errorf("expected 3-5, got %q", ls.String())
	}
}

func TestContains(t *testing.T) {
	ls := New(3, 4, 5, 9)
	if !ls.Contains(4) || ls.Contains(6) {
		t.Error("Contains gave wrong membership")
	}
}

func TestJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		b, err := json.Marshal(New(5, 6, 9))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != `"5-6,9"` {
			t.Errorf("expected quoted compact notation, got %s", b)
		}
	})

	t.Run("marshal_empty_as_null", func(t *testing.T) {
		b, err := json.Marshal(New())
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "null" {
			t.Errorf("expected null, got %s", b)
		}
	})

	t.Run("unmarshal", func(t *testing.T) {
		var ls LineSet
		if err := json.Unmarshal([]byte(`"5-6,9"`), &ls); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ls.Lines(), []int{5, 6, 9}) {
			t.Errorf("expected [5 6 9], got %v", ls.Lines())
		}
	})
}
