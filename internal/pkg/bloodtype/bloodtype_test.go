package bloodtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid_AllKnownTypes(t *testing.T) {
	for _, bt := range All {
		assert.True(t, IsValid(bt), "expected %s to be valid", bt)
	}
}

func TestIsValid_RejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "C+", "a+", "O", "O+ ", "AB"} {
		assert.False(t, IsValid(s), "expected %q to be invalid", s)
	}
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, 0, SortOrder(APositive))
	assert.Equal(t, 7, SortOrder(ONegative))
	assert.Equal(t, len(All), SortOrder("X+"))
	assert.Less(t, SortOrder(BNegative), SortOrder(OPositive))
}
