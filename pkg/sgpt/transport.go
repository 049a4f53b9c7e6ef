// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
// Package sgpt drives SCSI commands through a pass-through transport. A
// CommandContext owns one command at a time: configure buffers, execute
// against a DeviceHandle, read the results, then clear for reuse or
// destruct. The Transport collaborator hides how commands actually reach
// the device (the Linux sg driver in production, a scripted mock in tests).
package sgpt

// Submit return codes, shared by every Transport implementation.
const (
	// SubmitOk - the command reached the device and completed.
	SubmitOk = 0
	// SubmitBadParameters - the request was misconfigured.
	SubmitBadParameters = 1
	// SubmitTimeout - the command timed out.
	SubmitTimeout = 2
	// Negative values are -errno from the operating system.
)

// DurationUnknown marks a request whose transport did not measure how long
// the command took.
const DurationUnknown = -1

// Request carries one command through a Transport: the configuration the
// caller set on the CommandContext going in, the raw results coming out.
// Buffers are aliased, not copied, so the transport writes sense and
// data-in bytes straight into the caller's buffers.
type Request struct {
	Cdb            []byte
	Sense          []byte
	DataIn         []byte
	DataOut        []byte
	PacketID       int
	Tag            uint64
	TaskManagement int
	TaskAttr       int
	TaskPriority   int
	Flags          uint32

	Status          byte
	SenseLen        int
	Resid           int
	DurationMs      int
	TransportStatus int
	DriverStatus    int
	OsErrno         int
}

// Capabilities is the set of optional operations a Transport implements.
// Operations outside the set fail with ErrUnsupported instead of being
// probed dynamically.
type Capabilities uint32

const (
	// CapSetFlags - the transport honours queue control flags.
	CapSetFlags Capabilities = 1 << iota
	// CapSetPacketID - the transport tags commands with a packet id.
	CapSetPacketID
	// CapSetTag - the transport carries a 64 bit command tag.
	CapSetTag
	// CapTaskManagement - the transport can send task management requests.
	CapTaskManagement
	// CapTaskAttr - the transport honours task attribute and priority.
	CapTaskAttr
	// CapTransportErr - the transport reports a transport level status.
	CapTransportErr
	// CapDuration - the transport measures command duration.
	CapDuration
)

// Has reports whether every capability in wanted is present.
func (capabilities Capabilities) Has(wanted Capabilities) bool {
	return capabilities&wanted == wanted
}

// Transport submits prepared requests to a device. Submit returns
// SubmitOk, SubmitBadParameters, SubmitTimeout or -errno, and fills the
// result fields of the request on SubmitOk and SubmitTimeout.
type Transport interface {
	NewRequest() (*Request, error)
	Submit(request *Request, fd int, timeoutSecs int, verbose bool) int
	Capabilities() Capabilities
	Version() string
}
