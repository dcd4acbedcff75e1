package pager

import "testing"

func TestComputePageCount(t *testing.T) {
	cases := []struct {
		total, size, count int
	}{
		{1, 5, 1},
		{4, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{11, 5, 3},
		{15, 5, 3},
	}
	for _, tc := range cases {
		p := Compute(tc.total, 0, tc.size)
		if p.Count != tc.count {
			t.Fatalf("total=%d size=%d: count = %d, want %d", tc.total, tc.size, p.Count, tc.count)
		}
	}
}

func TestComputeWrapsForward(t *testing.T) {
	p := Compute(12, 3, 5)
	if p.Index != 0 {
		t.Fatalf("page past the end should wrap to 0, got %d", p.Index)
	}
	if p.Start != 0 || p.End != 5 {
		t.Fatalf("unexpected window after wrap: [%d:%d]", p.Start, p.End)
	}
}

func TestComputeWrapsBackward(t *testing.T) {
	p := Compute(12, -1, 5)
	if p.Index != 2 {
		t.Fatalf("negative page should wrap to last, got %d", p.Index)
	}
	if p.Start != 10 || p.End != 12 {
		t.Fatalf("unexpected window after wrap: [%d:%d]", p.Start, p.End)
	}
	if p.HasNext {
		t.Fatal("last page must not offer next")
	}
	if !p.HasPrev {
		t.Fatal("last page must offer prev")
	}
}

func TestComputeNavAffordances(t *testing.T) {
	if p := Compute(5, 0, 5); p.HasPrev || p.HasNext {
		t.Fatalf("single page must offer no navigation: %+v", p)
	}
	if p := Compute(11, 1, 5); !p.HasPrev || !p.HasNext {
		t.Fatalf("middle page must offer both: %+v", p)
	}
}

func TestComputeReconstructsList(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	var got []int
	first := Compute(len(items), 0, 5)
	for idx := 0; idx < first.Count; idx++ {
		p := Compute(len(items), idx, 5)
		if p.End-p.Start > 5 {
			t.Fatalf("page %d window too large: [%d:%d]", idx, p.Start, p.End)
		}
		got = append(got, items[p.Start:p.End]...)
	}

	if len(got) != len(items) {
		t.Fatalf("pages reconstruct %d items, want %d", len(got), len(items))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("item %d = %d after reconstruction", i, v)
		}
	}
}
