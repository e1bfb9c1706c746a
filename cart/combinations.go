package cart

// CombinationCount returns C(n, m), the number of m-leg subsets of n legs.
// It is computed iteratively and is 0 when m is out of range.
func CombinationCount(n, m int) int {
	if m < 0 || n < 0 || m > n {
		return 0
	}
	m = min(m, n-m)

	result := 1
	for i := 0; i < m; i++ {
		// result*(n-i) is always divisible by i+1 here.
		result = result * (n - i) / (i + 1)
	}
	return result
}

// AllCombinations returns every m-element subset of items, each keeping the
// original order, in lexicographic order of the original indexes.
func AllCombinations[T any](items []T, m int) [][]T {
	n := len(items)
	if m <= 0 || m > n {
		return nil
	}

	idx := make([]int, m)
	for i := range idx {
		idx[i] = i
	}

	out := make([][]T, 0, CombinationCount(n, m))
	for {
		combo := make([]T, m)
		for i, j := range idx {
			combo[i] = items[j]
		}
		out = append(out, combo)

		// advance the rightmost index that still has room
		i := m - 1
		for i >= 0 && idx[i] == n-m+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < m; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
