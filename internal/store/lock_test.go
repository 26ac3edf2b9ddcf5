package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_AcquireLock_Succeeds_When_Uncontended(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")

	lock, err := acquireLockWithTimeout(path, LockTimeout)
	require.NoError(t, err)

	lock.release()
}

func Test_AcquireLock_TimesOut_When_AlreadyHeld(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")

	held, err := acquireLockWithTimeout(path, LockTimeout)
	require.NoError(t, err)

	defer held.release()

	_, err = acquireLockWithTimeout(path, 50*time.Millisecond)
	require.ErrorIs(t, err, errLockTimeout)
}

func Test_AcquireLock_Succeeds_When_PreviousHolderReleased(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.md")

	first, err := acquireLockWithTimeout(path, LockTimeout)
	require.NoError(t, err)
	first.release()

	second, err := acquireLockWithTimeout(path, 50*time.Millisecond)
	require.NoError(t, err)
	second.release()
}
