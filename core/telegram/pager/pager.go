// Package pager computes page windows for inline list views.
// It is intentionally domain-agnostic so it can be reused across bots.
package pager

// Page describes a single visible window over an ordered list.
type Page struct {
	// Start and End delimit the visible slice: items[Start:End].
	Start int
	End   int
	// Index is the effective zero-based page index after wrapping.
	Index int
	// Count is the total number of pages.
	Count int
	// HasPrev and HasNext report whether navigation affordances apply.
	HasPrev bool
	HasNext bool
}

// Compute returns the page window for the given list length, requested page
// index and page size. An out-of-range index wraps rather than clamps: one
// past the last page cycles to the first, and a negative index cycles to the
// last. Callers must special-case total == 0 before calling.
func Compute(total, index, size int) Page {
	if size <= 0 {
		size = 1
	}
	count := (total + size - 1) / size
	if count <= 0 {
		return Page{}
	}

	if index >= count {
		index = 0
	}
	if index < 0 {
		index = count - 1
	}

	start := index * size
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Start:   start,
		End:     end,
		Index:   index,
		Count:   count,
		HasPrev: index > 0,
		HasNext: index < count-1,
	}
}
