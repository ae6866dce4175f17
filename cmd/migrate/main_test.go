package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMigrationName(t *testing.T) {
	cases := map[string]string{
		"add resource capacity":  "add_resource_capacity",
		"  Add-Booking.Slots!! ": "add_booking_slots",
		"drop__old  index":       "drop_old_index",
		"äö":                     "",
		"":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanMigrationName(in), in)
	}
}

func TestParseDownArgs(t *testing.T) {
	steps, confirmed, err := parseDownArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)
	assert.False(t, confirmed)

	steps, confirmed, err = parseDownArgs([]string{"-y", "3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	assert.True(t, confirmed)

	_, _, err = parseDownArgs([]string{"0"})
	assert.Error(t, err)
	_, _, err = parseDownArgs([]string{"two"})
	assert.Error(t, err)
}

func TestIsYes(t *testing.T) {
	assert.True(t, isYes("y\n"))
	assert.True(t, isYes(" YES "))
	assert.False(t, isYes("\n"))
	assert.False(t, isYes("nope"))
}
