package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEncoder_DeterministicAndCorrectDimension(t *testing.T) {
	enc := HashEncoder{Dim: 384}
	a, err := enc.Encode(context.Background(), []string{"func Login(user string) error"})
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.Len(t, a[0], 384)

	b, err := enc.Encode(context.Background(), []string{"func Login(user string) error"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestHashEncoder_DifferentTextsDiffer(t *testing.T) {
	enc := HashEncoder{Dim: 384}
	out, err := enc.Encode(context.Background(), []string{"func Login()", "func Logout()"})
	require.NoError(t, err)
	assert.NotEqual(t, out[0], out[1])
}

func TestNoopEncoder_ReturnsZeroVectors(t *testing.T) {
	enc := NoopEncoder{Dim: 384}
	out, err := enc.Encode(context.Background(), []string{"anything"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	for _, v := range out[0] {
		assert.Equal(t, float32(0), v)
	}
}
