package dialogue

import "testing"

func TestPaginatorTotal(t *testing.T) {
	tests := []struct {
		options int
		size    int
		want    int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tt := range tests {
		p := NewPaginator(numbered("o", tt.options), tt.size)
		if got := p.Total(); got != tt.want {
			t.Errorf("Total(%d/%d) = %d, want %d", tt.options, tt.size, got, tt.want)
		}
	}
}

func TestPaginatorBoundariesAreNoOps(t *testing.T) {
	p := NewPaginator(numbered("o", 25), 10)

	if p.Prev() {
		t.Fatalf("prev on first page must be a no-op")
	}
	if !p.Next() || !p.Next() {
		t.Fatalf("expected two forward moves")
	}
	if p.Index() != 2 {
		t.Fatalf("index = %d, want 2", p.Index())
	}
	if p.Next() {
		t.Fatalf("next on last page must be a no-op")
	}
	if got := len(p.Page()); got != 5 {
		t.Fatalf("last page has %d options, want 5", got)
	}
}

func TestPaginatorIndexStaysInRange(t *testing.T) {
	p := NewPaginator(numbered("o", 31), 10)
	moves := []bool{true, true, false, true, true, true, true, false, false, false, false, false, true}
	for _, forward := range moves {
		if forward {
			p.Next()
		} else {
			p.Prev()
		}
		if p.Index() < 0 || p.Index() > p.Total()-1 {
			t.Fatalf("index %d out of range [0,%d]", p.Index(), p.Total()-1)
		}
	}
}

func TestPaginatorMatch(t *testing.T) {
	p := NewPaginator([]string{"Acura", "Honda", "Toyota", "2020"}, 2)

	if v, ok := p.Match("  toyota "); !ok || v != "Toyota" {
		t.Fatalf("Match(toyota) = %q, %v", v, ok)
	}
	if v, ok := p.Match("2020"); !ok || v != "2020" {
		t.Fatalf("Match(2020) = %q, %v", v, ok)
	}
	for _, miss := range []string{"", "Tesla", "0", "2", "#2", "5"} {
		if _, ok := p.Match(miss); ok {
			t.Fatalf("Match(%q) should miss", miss)
		}
	}
}
