package plan

import (
	"errors"
	"fmt"
	"sort"
)

// orderFields returns the plans in emission order: every plan that reads
// the whole source comes before any plan that moves a single source field,
// so a custom function always sees the source intact. Within each group the
// declaration order is kept.
func orderFields(plans []FieldPlan) ([]FieldPlan, error) {
	order, err := topoSort(len(plans), func(i int) []int {
		if plans[i].Method.ReadsWholeSource() {
			return nil
		}

		var deps []int

		for j := range plans {
			if plans[j].Method.ReadsWholeSource() {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return nil, fmt.Errorf("ordering field plans: %w", err)
	}

	out := make([]FieldPlan, len(order))
	for i, idx := range order {
		out[i] = plans[idx]
	}

	return out, nil
}

// topoSort returns node indices in dependency order.
//
// depsFn(i) yields indices that must come before i. When several nodes are
// ready the smallest index is taken, so the result is deterministic and
// otherwise keeps the input order. A cycle is an error.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, errors.New("cycle detected")
	}

	return order, nil
}
