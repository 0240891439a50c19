package util

import "testing"

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := CeilDiv(tc.a, tc.b); got != tc.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := Clamp(2, 0, -1); got != 0 {
		t.Errorf("expected lo when hi < lo, got %d", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey(" Honda ", "CIVIC", "2020"); got != "honda|civic|2020" {
		t.Fatalf("unexpected key %q", got)
	}
	if !ContainsFold([]string{"Honda", "Toyota"}, "  toyota") {
		t.Fatalf("expected case-insensitive match")
	}
}
