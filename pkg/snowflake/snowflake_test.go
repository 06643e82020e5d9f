package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	s, err := NewSnowflake(3)
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 10000)
	var last int64
	for i := 0; i < 10000; i++ {
		id, err := s.Generate()
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 10000)

	_, machineID, _ := s.ParseID(last)
	assert.Equal(t, int64(3), machineID)
}

func TestClockRollback(t *testing.T) {
	s, err := NewSnowflake(1)
	require.NoError(t, err)

	ts := int64(defaultEpoch + 1000)
	s.now = func() int64 { return ts }
	_, err = s.Generate()
	require.NoError(t, err)

	ts -= 10
	_, err = s.Generate()
	assert.Error(t, err)
}

func TestInvalidMachineID(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.Error(t, err)
	_, err = NewSnowflake(maxMachineID + 1)
	assert.Error(t, err)
}
