package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entriesFromDeltas(deltas []int) []EscalationEntry {
	entries := make([]EscalationEntry, len(deltas))
	for i, d := range deltas {
		entries[i] = EscalationEntry{LevelDelta: d, Timestamp: int64(i)}
	}
	return entries
}

func TestCurrentLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(-1, CurrentLevel(nil))
	assert.Equal(0, CurrentLevel(entriesFromDeltas([]int{1})))
	assert.Equal(2, CurrentLevel(entriesFromDeltas([]int{1, 1, 1, -1})))

	// clamping happens after every step, not only at the end
	assert.Equal(0, CurrentLevel(entriesFromDeltas([]int{1, -5, 1})))
	assert.Equal(-1, CurrentLevel(entriesFromDeltas([]int{-3, -1})))
}

func TestCurrentLevelFloor(t *testing.T) {
	sequences := [][]int{
		{},
		{-1, -1, -1},
		{5, -10},
		{1, -1, 1, -1, -1, -1},
		{-100, 1},
		{3, 3, -2, -9, 4},
	}
	for _, deltas := range sequences {
		level := CurrentLevel(entriesFromDeltas(deltas))
		assert.GreaterOrEqual(t, level, -1, "deltas %v", deltas)
	}
}
