// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/gwangyi/pysgutils/pkg/logger"
)

// DeviceHandle wraps an open file descriptor of a SCSI device node.
type DeviceHandle struct {
	name   string
	fd     int
	owned  bool
	closed bool
}

// OpenDevice opens a device node for pass-through use. Pass-through
// commands do not touch the block layer, so the descriptor is opened
// non-blocking to avoid waiting for a medium that may not be present.
func OpenDevice(name string, readOnly bool, verbose bool) (*DeviceHandle, error) {
	flags := unix.O_RDWR
	if readOnly {
		flags = unix.O_RDONLY
	}
	return OpenDeviceFlags(name, flags|unix.O_NONBLOCK, verbose)
}

// OpenDeviceFlags opens a device node with caller supplied open(2) flags.
func OpenDeviceFlags(name string, flags int, verbose bool) (*DeviceHandle, error) {
	if verbose {
		logger.GetLogger().Debugf("open %s, flags 0x%x", name, flags)
	}
	fd, err := unix.Open(name, flags, 0)
	if err != nil {
		errno, ok := err.(syscall.Errno)
		if !ok {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return nil, fmt.Errorf("open %s: %w", name, &OsError{Errno: int(errno)})
	}
	return &DeviceHandle{name: name, fd: fd, owned: true}, nil
}

// NewDeviceHandleFromFd wraps an already open descriptor. Closing the
// handle does not close the descriptor; its owner does that.
func NewDeviceHandleFromFd(fd int, name string) *DeviceHandle {
	return &DeviceHandle{name: name, fd: fd}
}

// Fd returns the underlying file descriptor.
func (handle *DeviceHandle) Fd() int {
	return handle.fd
}

// Name returns the device node path the handle was opened with.
func (handle *DeviceHandle) Name() string {
	return handle.name
}

// Close releases the handle. A second Close reports ErrUseAfterFree.
func (handle *DeviceHandle) Close() error {
	if handle.closed {
		return ErrUseAfterFree
	}
	handle.closed = true
	if !handle.owned {
		return nil
	}
	if err := unix.Close(handle.fd); err != nil {
		errno, ok := err.(syscall.Errno)
		if !ok {
			return fmt.Errorf("close %s: %w", handle.name, err)
		}
		return fmt.Errorf("close %s: %w", handle.name, &OsError{Errno: int(errno)})
	}
	return nil
}
