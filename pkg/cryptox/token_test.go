package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43)

	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "tokens should be unique")

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestEqualTokens(t *testing.T) {
	require.True(t, EqualTokens("abc", "abc"))
	require.False(t, EqualTokens("abc", "abd"))
	require.False(t, EqualTokens("abc", ""))
}

func TestRandomIntBounds(t *testing.T) {
	for range 1000 {
		n, err := RandomInt(100000, 999999)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}

	n, err := RandomInt(7, 7)
	require.NoError(t, err)
	require.Equal(t, 7, n)

	_, err = RandomInt(2, 1)
	require.Error(t, err)
}
