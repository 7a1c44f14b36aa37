package table

import "sort"

// Count is one group of a value count.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts groups rows by the text of column. Null cells are counted under missing so the
// counts always sum to t.Len(). Groups are ordered by descending count; equal counts keep the
// order in which the value was first seen. A missing column yields nil.
func ValueCounts(t *Table, column, missing string) []Count {
	if !t.Has(column) {
		return nil
	}
	pos := make(map[string]int)
	var out []Count
	t.Each(func(r Row) {
		v, ok := r.String(column)
		if !ok {
			v = missing
		}
		if i, seen := pos[v]; seen {
			out[i].Count++
			return
		}
		pos[v] = len(out)
		out = append(out, Count{Value: v, Count: 1})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Top returns the first n groups of counts.
func Top(counts []Count, n int) []Count {
	if len(counts) <= n {
		return counts
	}
	return counts[:n]
}

// Distinct returns the non-null values of column in first-seen order.
func Distinct(t *Table, column string) []string {
	if !t.Has(column) {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	t.Each(func(r Row) {
		v, ok := r.String(column)
		if !ok || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	})
	return out
}

// NewestN returns at most n rows ordered by the timestamp column, newest first. The sort is
// stable, so rows with equal timestamps keep their input order; rows without a timestamp sort
// last. A missing column yields the first n rows unchanged.
func NewestN(t *Table, column string, n int) *Table {
	if !t.Has(column) {
		return t.Head(n)
	}
	type keyed struct {
		row []any
		ts  int64
		ok  bool
	}
	items := make([]keyed, 0, t.Len())
	t.Each(func(r Row) {
		ts, ok := r.Time(column)
		items = append(items, keyed{row: t.rows[r.i], ts: ts.UnixNano(), ok: ok})
	})
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ts > b.ts
	})
	out := t.derive()
	for i := 0; i < len(items) && i < n; i++ {
		out.rows = append(out.rows, items[i].row)
	}
	return out
}
