package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		wantPage int
		wantSize int
	}{
		{"defaults", PageRequest{}, 1, 10},
		{"negative page", PageRequest{Page: -3, Size: 20}, 1, 20},
		{"size capped", PageRequest{Page: 2, Size: 500}, 2, 50},
		{"kept as is", PageRequest{Page: 3, Size: 25}, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantSize, tt.in.Size)
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	p := PageRequest{Page: 3, Size: 10}
	assert.Equal(t, 20, p.Offset())
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 0, PageCount(5, 0))
}
