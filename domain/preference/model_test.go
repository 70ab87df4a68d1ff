package preference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidColor(t *testing.T) {
	t.Parallel()

	for _, color := range []string{"blue", "purple", "pink", "green", "orange", "red"} {
		require.True(t, IsValidColor(color), color)
	}

	require.False(t, IsValidColor(""))
	require.False(t, IsValidColor("Blue"))
	require.False(t, IsValidColor("teal"))
	require.True(t, IsValidColor(DefaultHighlightColor))
}
