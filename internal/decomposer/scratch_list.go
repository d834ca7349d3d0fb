package decomposer

import "github.com/fenwick-labs/percolate/internal/querytree"

// scratchList is the decomposer's scratch list with saved-offset
// discipline (§9): a single backing slice shared by every nested
// decomposition, each holding only an offset into it. This lets a nested
// call observe "what I appended in this scope" — push, iterate the
// current suffix, map the suffix in place, or drain it — without
// allocating a fresh slice per recursion level.
type scratchList struct {
	items  *[]querytree.Query
	offset int
}

func newScratchList() *scratchList {
	items := make([]querytree.Query, 0)
	return &scratchList{items: &items, offset: 0}
}

// saved returns a view of l starting at l's current end: items l already
// holds are invisible to the new view, but both share the same backing
// slice, so pushes through the new view are visible to l too.
func (l *scratchList) saved() *scratchList {
	return &scratchList{items: l.items, offset: len(*l.items)}
}

func (l *scratchList) push(q querytree.Query) {
	*l.items = append(*l.items, q)
}

func (l *scratchList) len() int {
	return len(*l.items) - l.offset
}

func (l *scratchList) isEmpty() bool {
	return l.len() == 0
}

// suffix returns the portion of the backing slice visible to l.
func (l *scratchList) suffix() []querytree.Query {
	return (*l.items)[l.offset:]
}

// mapInPlace replaces every element in l's suffix with f(element), leaving
// elements before the offset untouched.
func (l *scratchList) mapInPlace(f func(querytree.Query) querytree.Query) {
	items := *l.items
	for i := l.offset; i < len(items); i++ {
		items[i] = f(items[i])
	}
}

// drain removes and returns l's suffix, truncating the backing slice back
// to l's offset.
func (l *scratchList) drain() []querytree.Query {
	items := *l.items
	out := append([]querytree.Query(nil), items[l.offset:]...)
	*l.items = items[:l.offset]
	return out
}
