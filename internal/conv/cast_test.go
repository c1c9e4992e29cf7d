package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(123)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	_, err = IntToUint32(-1)
	assert.Error(t, err)

	got, err = IntToUint32(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxInt32), got)
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestMulInt(t *testing.T) {
	got, err := MulInt(65, 1000)
	require.NoError(t, err)
	assert.Equal(t, 65000, got)

	got, err = MulInt(0, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = MulInt(math.MaxInt/2, 3)
	assert.Error(t, err)

	_, err = MulInt(-1, 2)
	assert.Error(t, err)
}
