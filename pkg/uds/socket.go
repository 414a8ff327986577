package uds

import (
	"os"
	"strings"

	"pricestream/pkg/exception"

	"github.com/yanun0323/errors"
)

const ipcScheme = "ipc://"

// SocketPath extracts the filesystem path of an ipc:// endpoint.
func SocketPath(endpoint string) (string, bool) {
	if !strings.HasPrefix(endpoint, ipcScheme) {
		return "", false
	}
	return strings.TrimPrefix(endpoint, ipcScheme), true
}

// Prepare clears a stale socket file left behind by a previous process so the
// endpoint can be bound again. Non ipc endpoints are left untouched.
func Prepare(endpoint string) error {
	path, ok := SocketPath(endpoint)
	if !ok {
		return nil
	}
	if err := RemoveIfExists(path); err != nil {
		return errors.Wrap(err, "prepare "+endpoint)
	}
	return nil
}

// RemoveIfExists removes the socket file if it exists.
func RemoveIfExists(path string) error {
	if path == "" {
		return exception.ErrEmptyPathUDS
	}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return exception.ErrPathNotSocket
	}
	return os.Remove(path)
}
