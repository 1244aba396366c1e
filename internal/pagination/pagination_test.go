package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	testCases := []struct {
		name     string
		offset   int
		limit    int
		expected []int
	}{
		{name: "first page", offset: 0, limit: 2, expected: []int{1, 2}},
		{name: "middle page", offset: 2, limit: 2, expected: []int{3, 4}},
		{name: "limit past end", offset: 3, limit: 10, expected: []int{4, 5}},
		{name: "offset at length", offset: 5, limit: 2, expected: []int{}},
		{name: "offset past length", offset: 9, limit: 2, expected: []int{}},
		{name: "zero limit", offset: 0, limit: 0, expected: []int{}},
		{name: "negative offset", offset: -1, limit: 2, expected: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slice(items, tc.offset, tc.limit))
		})
	}
}

func TestSliceDesc(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	testCases := []struct {
		name     string
		offset   int
		limit    int
		expected []int
	}{
		{name: "newest first", offset: 0, limit: 2, expected: []int{5, 4}},
		{name: "second page", offset: 2, limit: 2, expected: []int{3, 2}},
		{name: "limit past start", offset: 3, limit: 10, expected: []int{2, 1}},
		{name: "offset at length", offset: 5, limit: 2, expected: []int{}},
		{name: "offset past length", offset: 7, limit: 1, expected: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SliceDesc(items, tc.offset, tc.limit))
		})
	}
}

func TestSliceDescPreservesCreationOrder(t *testing.T) {
	items := []int{10, 20, 30, 40}
	page := SliceDesc(items, 1, 3)
	assert.Equal(t, []int{30, 20, 10}, page)
	for i := 1; i < len(page); i++ {
		assert.Greater(t, page[i-1], page[i])
	}
}

func TestSliceDoesNotAliasBacking(t *testing.T) {
	items := []int{1, 2, 3}
	page := Slice(items, 0, 3)
	page[0] = 99
	assert.Equal(t, 1, items[0])
}
