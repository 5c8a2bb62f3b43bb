package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientFromURL_InvalidURL(t *testing.T) {
	c, err := NewClientFromURL(context.Background(), "http://not-redis")
	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "invalid redis URL")
}

func TestNewClientFromURL_Unreachable(t *testing.T) {
	// grab a free port and release it so nothing is listening there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	c, err := NewClientFromURL(ctx, "redis://"+addr)
	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Contains(t, err.Error(), "redis ping failed")
	assert.Less(t, time.Since(start), pingTimeout+time.Second)
}
