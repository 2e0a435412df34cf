package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerReserveAndFree(t *testing.T) {
	l := NewLedger(5)

	assert.True(t, l.IsFree("L101", 0, []int{1, 2}))
	require.NoError(t, l.Reserve("L101", 0, []int{1, 2}))

	assert.False(t, l.IsFree("L101", 0, []int{2, 3}))
	assert.True(t, l.IsFree("L101", 0, []int{3, 4}))
	assert.True(t, l.IsFree("L101", 1, []int{1, 2}))
	assert.True(t, l.IsFree("L102", 0, []int{1, 2}))

	assert.True(t, l.OccupiedAt("L101", 0, 1))
	assert.False(t, l.OccupiedAt("L101", 0, 3))
}

func TestLedgerDoubleReserveFails(t *testing.T) {
	l := NewLedger(5)
	require.NoError(t, l.Reserve("Dr. A", 2, []int{4}))
	assert.Error(t, l.Reserve("Dr. A", 2, []int{4}))
	assert.Error(t, l.Reserve("Dr. A", 2, []int{3, 4}))
}

func TestLedgerDayBounds(t *testing.T) {
	l := NewLedger(5)
	assert.False(t, l.IsFree("L101", 5, []int{0}))
	assert.False(t, l.IsFree("L101", -1, []int{0}))
	assert.Error(t, l.Reserve("L101", 5, []int{0}))
	assert.False(t, l.OccupiedAt("L101", 9, 0))
}
