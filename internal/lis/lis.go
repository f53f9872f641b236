// Package lis computes longest increasing subsequences.
package lis

// Indices returns the positions, in increasing order, of a longest
// strictly increasing subsequence of values. It runs in O(n log n).
// When several subsequences share the maximum length, the one found
// is the one whose last element comes earliest among candidates of
// each length, i.e., the classic patience-sorting choice.
func Indices(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	// tails[k] is the position of the smallest value ending an
	// increasing subsequence of length k+1 found so far.
	tails := make([]int, 0, len(values))
	parent := make([]int, len(values))
	for i, v := range values {
		low, high := 0, len(tails)-1
		for low <= high {
			mid := (low + high + 1) / 2
			if values[tails[mid]] >= v {
				high = mid - 1
			} else {
				low = mid + 1
			}
		}
		if low > 0 {
			parent[i] = tails[low-1]
		} else {
			parent[i] = -1
		}
		if low == len(tails) {
			tails = append(tails, i)
		} else {
			tails[low] = i
		}
	}
	seq := make([]int, len(tails))
	k := tails[len(tails)-1]
	for j := len(seq) - 1; j >= 0; j-- {
		seq[j] = k
		k = parent[k]
	}
	return seq
}
