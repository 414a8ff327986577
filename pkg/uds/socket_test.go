package uds

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"pricestream/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketPath(t *testing.T) {
	path, ok := SocketPath("ipc:///tmp/prices.sock")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/prices.sock", path)

	_, ok = SocketPath("tcp://*:9500")
	assert.False(t, ok)
}

func TestPrepareRemovesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	ln.SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())

	_, err = os.Lstat(path)
	require.NoError(t, err, "socket file should survive close")

	require.NoError(t, Prepare("ipc://"+path))
	_, err = os.Lstat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPrepareIgnoresTCP(t *testing.T) {
	assert.NoError(t, Prepare("tcp://*:9500"))
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, RemoveIfExists(filepath.Join(dir, "missing.sock")))
	assert.True(t, errors.Is(RemoveIfExists(""), exception.ErrEmptyPathUDS))

	regular := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(regular, []byte("x"), 0o600))
	assert.True(t, errors.Is(RemoveIfExists(regular), exception.ErrPathNotSocket))
	_, err := os.Stat(regular)
	assert.NoError(t, err, "regular file must not be removed")
}
