package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("MEMBERENV_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("MEMBERENV_TEST_VALUE", "fallback"))

	t.Setenv("MEMBERENV_TEST_VALUE", "")
	assert.Equal(t, "fallback", GetEnv("MEMBERENV_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MEMBERENV_TEST_UNSET_VALUE", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	n, err := GetEnvInt("MEMBERENV_TEST_UNSET_INT", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	t.Setenv("MEMBERENV_TEST_INT", "12")
	n, err = GetEnvInt("MEMBERENV_TEST_INT", 10)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	t.Setenv("MEMBERENV_TEST_INT", "twelve")
	_, err = GetEnvInt("MEMBERENV_TEST_INT", 10)
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	d, err := GetEnvDuration("MEMBERENV_TEST_UNSET_DURATION", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	t.Setenv("MEMBERENV_TEST_DURATION", "1500ms")
	d, err = GetEnvDuration("MEMBERENV_TEST_DURATION", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	for _, bad := range []string{"ten", "-1s", "0s"} {
		t.Setenv("MEMBERENV_TEST_DURATION", bad)
		_, err = GetEnvDuration("MEMBERENV_TEST_DURATION", time.Second)
		assert.Error(t, err, bad)
	}
}
