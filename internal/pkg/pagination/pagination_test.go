package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	meta := GetMeta(&Params{Page: 2, Limit: 10}, 35)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, int64(35), meta.Total)
	assert.Equal(t, 4, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMeta_ExactPages(t *testing.T) {
	meta := GetMeta(&Params{Page: 3, Limit: 10}, 30)

	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMeta_Empty(t *testing.T) {
	meta := GetMeta(&Params{Page: 1, Limit: 20}, 0)

	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
