// File: internal/browser/browser_test.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(ErrWaitTimeout))
	assert.True(t, IsTimeout(fmt.Errorf("%w: waiting for #el", ErrWaitTimeout)))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("op: %w", context.DeadlineExceeded)))

	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("connection refused")))
	assert.False(t, IsTimeout(context.Canceled))
}

func TestResolveUserDataDir_CreatesUnderRoot(t *testing.T) {
	root := t.TempDir()

	dir, err := ResolveUserDataDir(root, "pagepilot_Work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pagepilot_Work"), dir)
	assert.DirExists(t, dir)

	// Resolving again is idempotent.
	again, err := ResolveUserDataDir(root, "pagepilot_Work")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

func TestProfileLocks_Serializes(t *testing.T) {
	locks := NewProfileLocks()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, "/tmp/profile-a")
	require.NoError(t, err)

	// The same directory is held; a bounded second acquire must fail.
	bounded, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(bounded, "/tmp/profile-a")
	require.Error(t, err)

	// A different directory is independent.
	otherRelease, err := locks.Acquire(ctx, "/tmp/profile-b")
	require.NoError(t, err)
	otherRelease()

	release()
	release() // double release is safe

	reacquired, err := locks.Acquire(ctx, "/tmp/profile-a")
	require.NoError(t, err)
	reacquired()
}
