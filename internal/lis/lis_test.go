package lis

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestIndices(t *testing.T) {
	testCases := []struct {
		name   string
		values []int
		want   []int
	}{
		{"empty", nil, nil},
		{"single", []int{7}, []int{0}},
		{"sorted", []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
		{"reversed", []int{3, 2, 1, 0}, []int{3}},
		{"one out of place", []int{1, 2, 0}, []int{0, 1}},
		{"rotated", []int{2, 0, 1}, []int{1, 2}},
		{"mixed", []int{3, 1, 4, 0, 5, 2, 6}, []int{1, 2, 4, 6}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Indices(tc.values)); diff != "" {
				t.Errorf("unexpected indices (-want +got):\n%s", diff)
			}
		})
	}
}

// bruteForce returns the length of a longest increasing subsequence.
func bruteForce(values []int) int {
	best := make([]int, len(values))
	max := 0
	for i := range values {
		best[i] = 1
		for j := 0; j < i; j++ {
			if values[j] < values[i] && best[j]+1 > best[i] {
				best[i] = best[j] + 1
			}
		}
		if best[i] > max {
			max = best[i]
		}
	}
	return max
}

func TestIndicesAgainstBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		values := r.Perm(1 + r.Intn(30))
		got := Indices(values)
		assert.Equal(t, bruteForce(values), len(got))
		for k := 1; k < len(got); k++ {
			assert.Less(t, got[k-1], got[k])
			assert.Less(t, values[got[k-1]], values[got[k]])
		}
	}
}
