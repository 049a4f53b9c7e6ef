// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import (
	"fmt"

	uuid "github.com/satori/go.uuid"

	"github.com/gwangyi/pysgutils/pkg/logger"
	"github.com/gwangyi/pysgutils/pkg/sglib"
)

// ResultCategory is the coarse outcome of an executed command. Higher
// numbered categories dominate when several apply.
type ResultCategory int

const (
	// ResultGood - command completed with GOOD status.
	ResultGood ResultCategory = iota
	// ResultStatus - completed with a non GOOD status and no sense data.
	ResultStatus
	// ResultSense - sense data is available.
	ResultSense
	// ResultTransportErr - the transport reported an error of its own.
	ResultTransportErr
	// ResultOsErr - the operating system rejected the submission.
	ResultOsErr
)

func (category ResultCategory) String() string {
	names := map[ResultCategory]string{
		ResultGood:         "good",
		ResultStatus:       "status",
		ResultSense:        "sense",
		ResultTransportErr: "transport error",
		ResultOsErr:        "os error",
	}
	name, ok := names[category]
	if !ok {
		return fmt.Sprintf("bad result category [%d]", int(category))
	}
	return name
}

type commandState int

const (
	stateConfigured commandState = iota
	stateExecuted
	stateDestructed
)

// CommandContext owns one in-flight SCSI command: configure it with the
// Set methods, Execute it against a device, read the result accessors,
// then Clear to reuse the context or Destruct to retire it. A context is
// not safe for concurrent use.
type CommandContext struct {
	transport Transport
	request   *Request
	id        uuid.UUID
	state     commandState
	timedOut  bool
}

// NewCommandContext asks the transport for a fresh pass-through object.
func NewCommandContext(transport Transport) (*CommandContext, error) {
	request, err := transport.NewRequest()
	if err != nil {
		return nil, err
	}
	request.DurationMs = DurationUnknown
	return &CommandContext{
		transport: transport,
		request:   request,
		id:        uuid.NewV4(),
	}, nil
}

// ID returns the correlation id stamped on this context's log lines.
func (command *CommandContext) ID() uuid.UUID {
	return command.id
}

func (command *CommandContext) guardConfigure() error {
	switch command.state {
	case stateDestructed:
		return ErrUseAfterFree
	case stateExecuted:
		return fmt.Errorf("already executed, Clear first: %w", ErrInvalidArgument)
	}
	return nil
}

// SetCdb attaches the command descriptor block. The slice is aliased, not
// copied.
func (command *CommandContext) SetCdb(cdb []byte) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	command.request.Cdb = cdb
	return nil
}

// SetSense attaches the buffer the device's sense data lands in.
func (command *CommandContext) SetSense(buffer []byte) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	command.request.Sense = buffer
	return nil
}

// SetDataIn attaches the buffer for data read from the device.
func (command *CommandContext) SetDataIn(buffer []byte) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	command.request.DataIn = buffer
	return nil
}

// SetDataOut attaches the data written to the device.
func (command *CommandContext) SetDataOut(buffer []byte) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	command.request.DataOut = buffer
	return nil
}

// SetPacketID tags the command for transports that track commands by id.
func (command *CommandContext) SetPacketID(packetID int) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	if !command.transport.Capabilities().Has(CapSetPacketID) {
		return fmt.Errorf("packet id: %w", ErrUnsupported)
	}
	command.request.PacketID = packetID
	return nil
}

// SetTag carries a 64 bit command tag on transports that support one.
func (command *CommandContext) SetTag(tag uint64) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	if !command.transport.Capabilities().Has(CapSetTag) {
		return fmt.Errorf("command tag: %w", ErrUnsupported)
	}
	command.request.Tag = tag
	return nil
}

// SetTaskManagement turns the context into a task management request on
// transports that can send one.
func (command *CommandContext) SetTaskManagement(code int) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	if !command.transport.Capabilities().Has(CapTaskManagement) {
		return fmt.Errorf("task management: %w", ErrUnsupported)
	}
	command.request.TaskManagement = code
	return nil
}

// SetTaskAttr sets the task attribute and priority on transports that
// honour them.
func (command *CommandContext) SetTaskAttr(attribute int, priority int) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	if !command.transport.Capabilities().Has(CapTaskAttr) {
		return fmt.Errorf("task attribute: %w", ErrUnsupported)
	}
	command.request.TaskAttr = attribute
	command.request.TaskPriority = priority
	return nil
}

// SetFlags passes queue control flags to transports that honour them.
func (command *CommandContext) SetFlags(flags uint32) error {
	if err := command.guardConfigure(); err != nil {
		return err
	}
	if !command.transport.Capabilities().Has(CapSetFlags) {
		return fmt.Errorf("queue flags: %w", ErrUnsupported)
	}
	command.request.Flags = flags
	return nil
}

// Execute submits the configured command and blocks until it completes or
// times out. A nil device falls back to the top of the package default
// handle stack. A misconfigured command reports ErrBadParameters and
// leaves the context configurable; every other outcome moves it to the
// executed state, where the result accessors work and a second Execute is
// refused until Clear.
func (command *CommandContext) Execute(device *DeviceHandle, timeoutSecs int, verbose bool) error {
	switch command.state {
	case stateDestructed:
		return ErrUseAfterFree
	case stateExecuted:
		return fmt.Errorf("already executed, Clear first: %w", ErrInvalidArgument)
	}
	if len(command.request.Cdb) == 0 {
		return fmt.Errorf("no cdb set: %w", ErrBadParameters)
	}
	if len(command.request.DataIn) > 0 && len(command.request.DataOut) > 0 {
		return fmt.Errorf("both data directions set: %w", ErrBadParameters)
	}
	if device == nil {
		ambient, ok := DefaultHandles().Current()
		if !ok {
			return fmt.Errorf("nil device and empty ambient handle stack: %w", ErrInvalidArgument)
		}
		device = ambient
	}
	if device.closed {
		return fmt.Errorf("device handle already closed: %w", ErrInvalidArgument)
	}
	if verbose {
		logger.GetLogger().Debugf(
			"[%s] %s to %s\n%s",
			command.id, sglib.CommandName(command.request.Cdb, sglib.PdtUnknown),
			device.Name(), sglib.HexDump(command.request.Cdb, sglib.HexNoAscii),
		)
	}
	returnCode := command.transport.Submit(command.request, device.Fd(), timeoutSecs, verbose)
	switch {
	case returnCode < 0:
		command.request.OsErrno = -returnCode
		command.state = stateExecuted
		return &OsError{Errno: -returnCode}
	case returnCode == SubmitBadParameters:
		return ErrBadParameters
	case returnCode == SubmitTimeout:
		command.state = stateExecuted
		command.timedOut = true
		return ErrTimeout
	}
	command.state = stateExecuted
	return nil
}

func (command *CommandContext) guardResults() error {
	switch command.state {
	case stateDestructed:
		return ErrUseAfterFree
	case stateConfigured:
		return ErrNotExecuted
	}
	return nil
}

// ResultCategory classifies the executed command's outcome.
func (command *CommandContext) ResultCategory() (ResultCategory, error) {
	if err := command.guardResults(); err != nil {
		return ResultGood, err
	}
	request := command.request
	switch {
	case request.OsErrno != 0:
		return ResultOsErr, nil
	case request.TransportStatus != 0:
		return ResultTransportErr, nil
	case request.SenseLen > 0:
		return ResultSense, nil
	case sglib.StatusCode(request.Status) != sglib.StatusGood:
		return ResultStatus, nil
	}
	return ResultGood, nil
}

// StatusResponse returns the SCSI status byte of the executed command.
func (command *CommandContext) StatusResponse() (sglib.StatusCode, error) {
	if err := command.guardResults(); err != nil {
		return 0, err
	}
	return sglib.StatusCode(command.request.Status), nil
}

// Resid returns how many requested data bytes the device did not move.
func (command *CommandContext) Resid() (int, error) {
	if err := command.guardResults(); err != nil {
		return 0, err
	}
	return command.request.Resid, nil
}

// SenseLen returns how many sense bytes the device returned.
func (command *CommandContext) SenseLen() (int, error) {
	if err := command.guardResults(); err != nil {
		return 0, err
	}
	return command.request.SenseLen, nil
}

// SenseBytes returns the valid prefix of the sense buffer.
func (command *CommandContext) SenseBytes() ([]byte, error) {
	if err := command.guardResults(); err != nil {
		return nil, err
	}
	if command.request.SenseLen == 0 {
		return nil, nil
	}
	return command.request.Sense[:command.request.SenseLen], nil
}

// OsErr returns the operating system error number, 0 when there was none.
func (command *CommandContext) OsErr() (int, error) {
	if err := command.guardResults(); err != nil {
		return 0, err
	}
	return command.request.OsErrno, nil
}

// OsErrStr renders the operating system error as text.
func (command *CommandContext) OsErrStr() (string, error) {
	errno, err := command.OsErr()
	if err != nil {
		return "", err
	}
	return sglib.SafeStrerror(errno), nil
}

// TransportErr returns the transport level status of the executed command.
func (command *CommandContext) TransportErr() (int, error) {
	if err := command.guardResults(); err != nil {
		return 0, err
	}
	if !command.transport.Capabilities().Has(CapTransportErr) {
		return 0, fmt.Errorf("transport error: %w", ErrUnsupported)
	}
	return command.request.TransportStatus, nil
}

var transportStatusNames = map[int]string{
	0x00: "DID_OK",
	0x01: "DID_NO_CONNECT",
	0x02: "DID_BUS_BUSY",
	0x03: "DID_TIME_OUT",
	0x04: "DID_BAD_TARGET",
	0x05: "DID_ABORT",
	0x06: "DID_PARITY",
	0x07: "DID_ERROR",
	0x08: "DID_RESET",
	0x09: "DID_BAD_INTR",
	0x0a: "DID_PASSTHROUGH",
	0x0b: "DID_SOFT_ERROR",
	0x0c: "DID_IMM_RETRY",
	0x0d: "DID_REQUEUE",
	0x0e: "DID_TRANSPORT_DISRUPTED",
	0x0f: "DID_TRANSPORT_FAILFAST",
}

// TransportErrStr renders the transport level status as text.
func (command *CommandContext) TransportErrStr() (string, error) {
	status, err := command.TransportErr()
	if err != nil {
		return "", err
	}
	name, ok := transportStatusNames[status]
	if !ok {
		return fmt.Sprintf("transport status [0x%x]", status), nil
	}
	return name, nil
}

// DurationMs returns how long the command took, or false when the
// transport did not measure it or the command has not executed.
func (command *CommandContext) DurationMs() (int, bool) {
	if command.state != stateExecuted {
		return 0, false
	}
	if !command.transport.Capabilities().Has(CapDuration) {
		return 0, false
	}
	if command.request.DurationMs == DurationUnknown {
		return 0, false
	}
	return command.request.DurationMs, true
}

// TimedOut reports whether the last Execute ended in a timeout.
func (command *CommandContext) TimedOut() bool {
	return command.timedOut
}

// ExitCategory folds the executed command's status and sense data into one
// outcome category, picking the highest numbered one when several apply.
// A CHECK CONDITION status defers entirely to the sense data that explains
// it. Timeouts and transport or operating system failures map to their own
// categories since no SCSI level outcome exists.
func (command *CommandContext) ExitCategory() (sglib.CommandOutcomeCategory, error) {
	if err := command.guardResults(); err != nil {
		return sglib.CatOther, err
	}
	if command.timedOut {
		return sglib.CatTimeout, nil
	}
	resultCategory, err := command.ResultCategory()
	if err != nil {
		return sglib.CatOther, err
	}
	if resultCategory == ResultOsErr || resultCategory == ResultTransportErr {
		return sglib.CatOther, nil
	}
	request := command.request
	status := sglib.StatusCode(request.Status)
	hasSense := request.SenseLen > 0
	if hasSense && (status == sglib.StatusCheckCondition || status == sglib.StatusCommandTerminated) {
		return sglib.CategorizeSenseWithInfo(request.Sense[:request.SenseLen]), nil
	}
	category := sglib.CategorizeStatus(status)
	if hasSense {
		category = sglib.CombineCategories(
			category, sglib.CategorizeSenseWithInfo(request.Sense[:request.SenseLen]),
		)
	}
	return category, nil
}

// Clear discards the results of the last execution and returns the
// context to the configurable state. Attached buffers and parameters stay
// attached until explicitly replaced.
func (command *CommandContext) Clear() error {
	if command.state == stateDestructed {
		return ErrUseAfterFree
	}
	request := command.request
	request.Status = 0
	request.SenseLen = 0
	request.Resid = 0
	request.DurationMs = DurationUnknown
	request.TransportStatus = 0
	request.DriverStatus = 0
	request.OsErrno = 0
	command.state = stateConfigured
	command.timedOut = false
	return nil
}

// Destruct retires the context. Every later call reports ErrUseAfterFree.
func (command *CommandContext) Destruct() {
	command.request = nil
	command.state = stateDestructed
}
