package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
	short := ShortID(8)
	require.True(t, len(short) <= 8)
	require.Equal(t, short, id[:len(short)])
}
