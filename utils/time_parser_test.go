package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("30m")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	d, err = ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	_, err = ParseDuration("sevend")
	assert.Error(t, err)

	_, err = ParseDuration("")
	assert.Error(t, err)
}
