// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
//go:build linux

package sgpt

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gwangyi/pysgutils/pkg/logger"
	"github.com/gwangyi/pysgutils/pkg/sglib"
)

const (
	sgIo = 0x2285

	sgDxferNone    = -1
	sgDxferToDev   = -2
	sgDxferFromDev = -3

	// host_status codes of interest, see drivers/scsi/scsi.h.
	didOk      = 0x00
	didTimeOut = 0x03

	// low nibble of driver_status.
	driverTimeout = 0x06
	driverSense   = 0x08

	defaultTimeoutSeconds = 60
)

// sgIoHdr mirrors struct sg_io_hdr of the Linux sg driver (v3 interface).
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         uintptr
	cmdp           uintptr
	sbp            uintptr
	timeout        uint32 // milliseconds
	flags          uint32
	packID         int32
	usrPtr         uintptr
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32 // milliseconds
	info           uint32
}

// SgioTransport submits commands through the SG_IO ioctl of the Linux sg
// driver. One instance serves any number of command contexts.
type SgioTransport struct{}

// NewSgioTransport returns the Linux pass-through transport.
func NewSgioTransport() *SgioTransport {
	return &SgioTransport{}
}

func (transport *SgioTransport) NewRequest() (*Request, error) {
	return &Request{DurationMs: DurationUnknown}, nil
}

func (transport *SgioTransport) Capabilities() Capabilities {
	return CapSetFlags | CapSetPacketID | CapTransportErr | CapDuration
}

func (transport *SgioTransport) Version() string {
	return "linux sg_io v3"
}

// Submit issues the request through SG_IO and copies the results back.
// The ioctl blocks until the sg driver completes or times out the command.
func (transport *SgioTransport) Submit(request *Request, fd int, timeoutSecs int, verbose bool) int {
	if timeoutSecs <= 0 {
		timeoutSecs = defaultTimeoutSeconds
	}
	header := sgIoHdr{
		interfaceID:    'S',
		dxferDirection: sgDxferNone,
		cmdLen:         uint8(len(request.Cdb)),
		timeout:        uint32(timeoutSecs) * 1000,
		flags:          request.Flags,
		packID:         int32(request.PacketID),
		cmdp:           uintptr(unsafe.Pointer(&request.Cdb[0])),
	}
	switch {
	case len(request.DataIn) > 0:
		header.dxferDirection = sgDxferFromDev
		header.dxferLen = uint32(len(request.DataIn))
		header.dxferp = uintptr(unsafe.Pointer(&request.DataIn[0]))
	case len(request.DataOut) > 0:
		header.dxferDirection = sgDxferToDev
		header.dxferLen = uint32(len(request.DataOut))
		header.dxferp = uintptr(unsafe.Pointer(&request.DataOut[0]))
	}
	if len(request.Sense) > 0 {
		header.mxSbLen = uint8(len(request.Sense))
		header.sbp = uintptr(unsafe.Pointer(&request.Sense[0]))
	}

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL, uintptr(fd), sgIo, uintptr(unsafe.Pointer(&header)),
	)
	if errno != 0 {
		if errno == unix.EDOM {
			// The sg driver signals a queue depth problem this way.
			return SubmitBadParameters
		}
		if verbose {
			logger.GetLogger().Debugf("SG_IO ioctl: %s", sglib.SafeStrerror(int(errno)))
		}
		return -int(errno)
	}

	request.Status = header.status
	request.SenseLen = int(header.sbLenWr)
	request.Resid = int(header.resid)
	request.DurationMs = int(header.duration)
	request.TransportStatus = int(header.hostStatus)
	request.DriverStatus = int(header.driverStatus)
	if verbose {
		logger.GetLogger().Debugf(
			"SG_IO status 0x%02x, host 0x%02x, driver 0x%02x, resid %d, duration %d ms",
			header.status, header.hostStatus, header.driverStatus,
			header.resid, header.duration,
		)
	}
	if header.hostStatus == didTimeOut || header.driverStatus&0x0f == driverTimeout {
		return SubmitTimeout
	}
	return SubmitOk
}
