package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_Navigation(t *testing.T) {
	tests := []struct {
		name    string
		page    Page
		pages   int
		hasPrev bool
		hasNext bool
		exists  bool
	}{
		{"empty listing", Page{Number: 1, PerPage: 5, Total: 0}, 1, false, false, true},
		{"single page", Page{Number: 1, PerPage: 5, Total: 5}, 1, false, false, true},
		{"first of three", Page{Number: 1, PerPage: 5, Total: 11}, 3, false, true, true},
		{"middle", Page{Number: 2, PerPage: 5, Total: 11}, 3, true, true, true},
		{"last", Page{Number: 3, PerPage: 5, Total: 11}, 3, true, false, true},
		{"past the end", Page{Number: 4, PerPage: 5, Total: 11}, 3, true, false, false},
		{"past the end of empty", Page{Number: 2, PerPage: 5, Total: 0}, 1, true, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.pages, tc.page.Pages())
			assert.Equal(t, tc.hasPrev, tc.page.HasPrev())
			assert.Equal(t, tc.hasNext, tc.page.HasNext())
			assert.Equal(t, tc.exists, tc.page.Exists())
		})
	}
}

func TestPage_IterPages(t *testing.T) {
	p := Page{Number: 6, PerPage: 5, Total: 100} // 20 pages

	assert.Equal(t, []int{1, 0, 5, 6, 7, 0, 20}, p.IterPages(1, 1, 2, 1))

	first := Page{Number: 1, PerPage: 5, Total: 100}
	assert.Equal(t, []int{1, 2, 0, 20}, first.IterPages(1, 1, 2, 1))

	small := Page{Number: 2, PerPage: 5, Total: 15}
	assert.Equal(t, []int{1, 2, 3}, small.IterPages(1, 1, 2, 1))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(0, 5))
	assert.Equal(t, 0, offset(1, 5))
	assert.Equal(t, 10, offset(3, 5))
}
