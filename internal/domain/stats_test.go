package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRatingStats(t *testing.T) {
	empty := NewRatingStats(0, 0)
	assert.Equal(t, int64(0), empty.Count)
	assert.Nil(t, empty.Average, "no ratings must not report a zero average")

	stats := NewRatingStats(3, 4)
	require.NotNil(t, stats.Average)
	assert.Equal(t, 4.00, *stats.Average)

	stats = NewRatingStats(3, 11.0/3.0)
	require.NotNil(t, stats.Average)
	assert.Equal(t, 3.67, *stats.Average)
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2}, 21, 3, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 21, page.Total)

	empty := NewPage[int](nil, 0, 1, 10)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}
