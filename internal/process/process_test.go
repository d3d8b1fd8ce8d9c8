package process

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsupportedPlatformIsNoOp(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("control is live on darwin")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewController("Presenter", time.Second, logger)
	ctx := context.Background()

	assert.False(t, c.Supported())

	running, err := c.IsRunning(ctx)
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, c.Terminate(ctx))
	require.NoError(t, c.Launch(ctx))
}

func TestSupportedMatchesPlatform(t *testing.T) {
	c := NewController("Presenter", time.Second, nil)
	assert.Equal(t, runtime.GOOS == "darwin", c.Supported())
}
