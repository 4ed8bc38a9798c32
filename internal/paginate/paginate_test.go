package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name         string
		items        []string
		offset, size int
		want         []string
	}{
		{"middle page", items, 1, 2, []string{"b", "c"}},
		{"offset past end", items, 5, 2, []string{}},
		{"size past end", items, 3, 10, []string{"d", "e"}},
		{"empty input", nil, 0, 2, []string{}},
		{"zero size takes the rest", items, 1, 0, []string{"b", "c", "d", "e"}},
		{"whole list", items[:3], 0, 10, []string{"a", "b", "c"}},
		{"negative offset", items, -4, 1, []string{"a"}},
		{"negative size", items, 0, -1, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Page(tt.items, tt.offset, tt.size))
		})
	}
}

func TestPageGeneric(t *testing.T) {
	assert.Equal(t, []int{3}, Page([]int{1, 2, 3}, 2, 1))
}

func TestFooter(t *testing.T) {
	assert.Equal(t, "", Footer(3, 0, 3))
	assert.Equal(t, "(items 11-20 of 42)", Footer(42, 10, 10))
	assert.Equal(t, "(no items at offset 50 of 42)", Footer(42, 50, 0))
}
