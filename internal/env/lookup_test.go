package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrDefault(t *testing.T) {
	t.Setenv("STEEPSHOT_TEST_VALUE", "")
	assert.Equal(t, "fallback", GetOrDefault("STEEPSHOT_TEST_VALUE", "fallback"))

	t.Setenv("STEEPSHOT_TEST_VALUE", "set")
	assert.Equal(t, "set", GetOrDefault("STEEPSHOT_TEST_VALUE", "fallback"))
}

func TestInt(t *testing.T) {
	t.Setenv("STEEPSHOT_TEST_INT", "")
	_, ok, err := Int("STEEPSHOT_TEST_INT")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Setenv("STEEPSHOT_TEST_INT", " 25 ")
	v, ok, err := Int("STEEPSHOT_TEST_INT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 25, v)

	t.Setenv("STEEPSHOT_TEST_INT", "ten")
	_, _, err = Int("STEEPSHOT_TEST_INT")
	assert.ErrorContains(t, err, "STEEPSHOT_TEST_INT")
}

func TestFloat(t *testing.T) {
	t.Setenv("STEEPSHOT_TEST_FLOAT", "2.5")
	v, ok, err := Float("STEEPSHOT_TEST_FLOAT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 2.5, v, 0.0001)

	t.Setenv("STEEPSHOT_TEST_FLOAT", "fast")
	_, _, err = Float("STEEPSHOT_TEST_FLOAT")
	assert.Error(t, err)
}
