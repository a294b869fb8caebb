//go:build windows

package server

import (
	"errors"
	"syscall"
)

const wsaeaddrinuse syscall.Errno = 10048

func isAddrInUse(err error) bool {
	return errors.Is(err, wsaeaddrinuse) || errors.Is(err, syscall.EADDRINUSE)
}
