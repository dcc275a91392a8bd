package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, PageRequest{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 10, PageRequest{Number: 2, Size: 10}.Offset())
	assert.Equal(t, 0, PageRequest{Number: 0, Size: 10}.Offset())
	assert.Equal(t, 0, PageRequest{Number: -3, Size: 10}.Offset())
}

func TestNew(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		number    int
		itemCount int
		total     int64
		pages     int
		hasNext   bool
		hasPrev   bool
	}{
		{"First Of Two", 1, 10, 15, 2, true, false},
		{"Last Of Two", 2, 5, 15, 2, false, true},
		{"Single Page", 1, 3, 3, 1, false, false},
		{"Empty", 1, 0, 0, 0, false, false},
		{"Past The End", 9, 0, 15, 2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.itemCount)
			page := New(items, PageRequest{Number: tt.number, Size: 10}, tt.total)
			assert.Equal(t, tt.pages, page.TotalPages)
			assert.Equal(t, tt.hasNext, page.HasNextPage)
			assert.Equal(t, tt.hasPrev, page.HasPreviousPage)
			assert.Equal(t, tt.total, page.TotalItems)
		})
	}
}
