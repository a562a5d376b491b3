package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenLength(t *testing.T) {
	for _, n := range []int{1, 10, 30} {
		tok, err := GenerateToken(n)
		require.NoError(t, err)
		assert.Len(t, tok, n)
	}

	tok, err := GenerateToken(0)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestGenerateTokenAlphabet(t *testing.T) {
	tok, err := GenerateToken(200)
	require.NoError(t, err)
	for _, r := range tok {
		assert.True(t, strings.ContainsRune(tokenAlphabet, r), "unexpected symbol %q", r)
	}
}

func TestGenerateTokenUnique(t *testing.T) {
	a, err := GenerateToken(30)
	require.NoError(t, err)
	b, err := GenerateToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
