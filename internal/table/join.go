package table

import (
	"fmt"
	"sort"
)

// Suffixes disambiguate column names present on both sides of a join.
// An empty suffix keeps the original name on that side.
type Suffixes struct {
	Left  string
	Right string
}

// DefaultSuffixes matches the usual dataframe convention.
var DefaultSuffixes = Suffixes{Left: "_x", Right: "_y"}

// LeftJoin keeps every row of left and attaches the matching rows of right on
// left[leftOn] == right[rightOn]. Unmatched rows get nulls for the right-hand columns;
// a key matching several right rows yields one output row per match.
//
// When leftOn and rightOn share a name the key column appears once.
func LeftJoin(left, right *Table, leftOn, rightOn string, sfx Suffixes) (*Table, error) {
	if !left.Has(leftOn) {
		return nil, fmt.Errorf("left join: left table has no column %q", leftOn)
	}
	if !right.Has(rightOn) {
		return nil, fmt.Errorf("left join: right table has no column %q", rightOn)
	}
	sharedKey := leftOn == rightOn

	var rightCols []int
	for i, c := range right.columns {
		if sharedKey && c == rightOn {
			continue
		}
		rightCols = append(rightCols, i)
	}

	overlap := make(map[string]bool)
	for _, ci := range rightCols {
		name := right.columns[ci]
		if left.Has(name) && !(sharedKey && name == leftOn) {
			overlap[name] = true
		}
	}
	if len(overlap) > 0 && sfx.Left == "" && sfx.Right == "" {
		return nil, fmt.Errorf("left join: overlapping columns %v need suffixes", keys(overlap))
	}

	columns := make([]string, 0, len(left.columns)+len(rightCols))
	for _, c := range left.columns {
		if overlap[c] {
			c += sfx.Left
		}
		columns = append(columns, c)
	}
	for _, ci := range rightCols {
		c := right.columns[ci]
		if overlap[c] {
			c += sfx.Right
		}
		columns = append(columns, c)
	}

	lookup := make(map[string][]int)
	rk := right.index[rightOn]
	for i, r := range right.rows {
		if r[rk] == nil {
			continue
		}
		k := FormatValue(r[rk])
		lookup[k] = append(lookup[k], i)
	}

	out := New(columns...)
	lk := left.index[leftOn]
	for _, lr := range left.rows {
		var matches []int
		if lr[lk] != nil {
			matches = lookup[FormatValue(lr[lk])]
		}
		if len(matches) == 0 {
			row := make([]any, 0, len(columns))
			row = append(row, lr...)
			row = append(row, make([]any, len(rightCols))...)
			out.rows = append(out.rows, row)
			continue
		}
		for _, m := range matches {
			row := make([]any, 0, len(columns))
			row = append(row, lr...)
			for _, ci := range rightCols {
				row = append(row, right.rows[m][ci])
			}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
