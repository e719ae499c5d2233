package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomIDs(t *testing.T) {
	assert.Equal(t, []int{1, 2, 5}, ParseRoomIDs("1, 2,,5"))
	assert.Equal(t, []int{1, 3}, ParseRoomIDs("1,abc,0,3"))
	assert.Equal(t, []int{4, 7, 8}, ParseRoomIDs("4", "7,8"))
	assert.Empty(t, ParseRoomIDs(""))
	assert.NotNil(t, ParseRoomIDs())
}

func TestParseEpoch(t *testing.T) {
	v, err := ParseEpoch("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), v)

	v, err = ParseEpoch(" 1700000000000.0 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), v)

	for _, bad := range []string{"yesterday", "-1", "NaN", "Inf", ""} {
		_, err = ParseEpoch(bad)
		assert.Error(t, err, bad)
	}
}
