package rank

// fenwick is a binary indexed tree of occurrence counts over compressed
// value positions. Positions are 1-based.
type fenwick struct {
	tree []int
}

func newFenwick(n int) *fenwick {
	return &fenwick{tree: make([]int, n+1)}
}

func (f *fenwick) add(pos, delta int) {
	for ; pos < len(f.tree); pos += pos & -pos {
		f.tree[pos] += delta
	}
}

// prefix returns the number of stored values at positions 1..pos.
func (f *fenwick) prefix(pos int) int {
	sum := 0
	for ; pos > 0; pos -= pos & -pos {
		sum += f.tree[pos]
	}
	return sum
}
