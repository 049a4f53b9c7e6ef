// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import (
	"errors"
	"testing"

	"github.com/gwangyi/pysgutils/pkg/sglib"
)

func testDevice() *DeviceHandle {
	return NewDeviceHandleFromFd(3, "/dev/mock")
}

func notReadySense() []byte {
	// Fixed format, Not Ready, medium not present.
	sense := make([]byte, 18)
	sense[0] = 0x70
	sense[2] = byte(sglib.SenseKeyNotReady)
	sense[7] = 0x0a
	sense[12] = 0x3a
	return sense
}

func configuredContext(t *testing.T, transport Transport) *CommandContext {
	command, err := NewCommandContext(transport)
	if err != nil {
		t.Fatalf("NewCommandContext failed: %s", err)
	}
	if err := command.SetCdb([]byte{0x00, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("SetCdb failed: %s", err)
	}
	return command
}

func TestExecuteInquiryGood(t *testing.T) {
	inquiryData := make([]byte, 36)
	copy(inquiryData[8:], "MOCKVEND")
	transport := NewMockTransport(MockOutcome{DataIn: inquiryData, DurationMs: 3})

	command, err := NewCommandContext(transport)
	if err != nil {
		t.Fatalf("NewCommandContext failed: %s", err)
	}
	defer command.Destruct()

	cdb := []byte{0x12, 0, 0, 0, 36, 0}
	dataIn := make([]byte, 36)
	sense := make([]byte, 32)
	if err := command.SetCdb(cdb); err != nil {
		t.Fatalf("SetCdb failed: %s", err)
	}
	if err := command.SetDataIn(dataIn); err != nil {
		t.Fatalf("SetDataIn failed: %s", err)
	}
	if err := command.SetSense(sense); err != nil {
		t.Fatalf("SetSense failed: %s", err)
	}

	if err := command.Execute(testDevice(), 5, false); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	if string(dataIn[8:16]) != "MOCKVEND" {
		t.Errorf("data-in buffer not filled: %q", dataIn[8:16])
	}
	category, err := command.ResultCategory()
	if err != nil || category != ResultGood {
		t.Errorf("ResultCategory = (%v, %v), expected (good, nil)", category, err)
	}
	status, err := command.StatusResponse()
	if err != nil || status != sglib.StatusGood {
		t.Errorf("StatusResponse = (%v, %v), expected (Good, nil)", status, err)
	}
	resid, err := command.Resid()
	if err != nil || resid != 0 {
		t.Errorf("Resid = (%d, %v), expected (0, nil)", resid, err)
	}
	duration, known := command.DurationMs()
	if !known || duration != 3 {
		t.Errorf("DurationMs = (%d, %v), expected (3, true)", duration, known)
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatClean {
		t.Errorf("ExitCategory = (%v, %v), expected (Clean, nil)", exit, err)
	}
	if len(transport.SubmittedCdbs) != 1 || transport.SubmittedCdbs[0][0] != 0x12 {
		t.Error("transport did not record the submitted cdb")
	}
}

func TestExecuteCheckConditionNotReady(t *testing.T) {
	transport := NewMockTransport(MockOutcome{
		Status: byte(sglib.StatusCheckCondition),
		Sense:  notReadySense(),
	})
	command := configuredContext(t, transport)
	defer command.Destruct()
	if err := command.SetSense(make([]byte, 32)); err != nil {
		t.Fatalf("SetSense failed: %s", err)
	}

	if err := command.Execute(testDevice(), 5, false); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	category, err := command.ResultCategory()
	if err != nil || category != ResultSense {
		t.Fatalf("ResultCategory = (%v, %v), expected (sense, nil)", category, err)
	}
	senseLen, err := command.SenseLen()
	if err != nil || senseLen != 18 {
		t.Errorf("SenseLen = (%d, %v), expected (18, nil)", senseLen, err)
	}
	senseBytes, err := command.SenseBytes()
	if err != nil {
		t.Fatalf("SenseBytes failed: %s", err)
	}
	key, ok := sglib.SenseKey(senseBytes)
	if !ok || key != sglib.SenseKeyNotReady {
		t.Errorf("sense key = (%v, %v), expected (Not Ready, true)", key, ok)
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatNotReady {
		t.Errorf("ExitCategory = (%v, %v), expected (Not Ready, nil)", exit, err)
	}
}

func TestExecuteDescriptorSenseInfoField(t *testing.T) {
	sense := []byte{
		0x72, byte(sglib.SenseKeyMediumError), 0x11, 0x00, 0, 0, 0, 12,
		0x00, 0x0a, 0x80, 0, 0, 0, 0, 0, 0, 0, 0x12, 0x34,
	}
	transport := NewMockTransport(MockOutcome{
		Status: byte(sglib.StatusCheckCondition),
		Sense:  sense,
	})
	command := configuredContext(t, transport)
	defer command.Destruct()
	if err := command.SetSense(make([]byte, 64)); err != nil {
		t.Fatalf("SetSense failed: %s", err)
	}
	if err := command.Execute(testDevice(), 5, false); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	senseBytes, err := command.SenseBytes()
	if err != nil {
		t.Fatalf("SenseBytes failed: %s", err)
	}
	valid, value := sglib.SenseInfoField(senseBytes)
	if !valid || value != 0x1234 {
		t.Errorf("info field = (%v, %#x), expected (true, 0x1234)", valid, value)
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatMediumHardWithInfo {
		t.Errorf("ExitCategory = (%v, %v), expected (Medium or hardware error with info, nil)", exit, err)
	}
}

func TestExecuteTimeoutThenClear(t *testing.T) {
	transport := NewMockTransport(
		MockOutcome{ReturnCode: SubmitTimeout, DurationMs: DurationUnknown},
		GoodOutcome,
	)
	command := configuredContext(t, transport)
	defer command.Destruct()

	err := command.Execute(testDevice(), 1, false)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute = %v, expected ErrTimeout", err)
	}
	if !command.TimedOut() {
		t.Error("TimedOut must report true after a timeout")
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatTimeout {
		t.Errorf("ExitCategory = (%v, %v), expected (Timeout, nil)", exit, err)
	}
	if _, known := command.DurationMs(); known {
		t.Error("duration must be unknown when the transport did not measure it")
	}

	if err := command.Clear(); err != nil {
		t.Fatalf("Clear failed: %s", err)
	}
	if command.TimedOut() {
		t.Error("Clear must reset the timeout flag")
	}
	// Attached buffers survive Clear, so the command can be reissued
	// without reconfiguring.
	if err := command.Execute(testDevice(), 1, false); err != nil {
		t.Fatalf("Execute after Clear failed: %s", err)
	}
}

func TestExecuteOsError(t *testing.T) {
	transport := NewMockTransport(MockOutcome{ReturnCode: -9}) // EBADF
	command := configuredContext(t, transport)
	defer command.Destruct()

	err := command.Execute(testDevice(), 1, false)
	var osError *OsError
	if !errors.As(err, &osError) || osError.Errno != 9 {
		t.Fatalf("Execute = %v, expected os error 9", err)
	}
	category, err := command.ResultCategory()
	if err != nil || category != ResultOsErr {
		t.Errorf("ResultCategory = (%v, %v), expected (os error, nil)", category, err)
	}
	errno, err := command.OsErr()
	if err != nil || errno != 9 {
		t.Errorf("OsErr = (%d, %v), expected (9, nil)", errno, err)
	}
	text, err := command.OsErrStr()
	if err != nil || text == "" {
		t.Errorf("OsErrStr = (%q, %v), expected error text", text, err)
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatOther {
		t.Errorf("ExitCategory = (%v, %v), expected (Other, nil)", exit, err)
	}
}

func TestExecuteWithoutCdb(t *testing.T) {
	command, err := NewCommandContext(NewMockTransport())
	if err != nil {
		t.Fatalf("NewCommandContext failed: %s", err)
	}
	defer command.Destruct()

	err = command.Execute(testDevice(), 1, false)
	if !errors.Is(err, ErrBadParameters) {
		t.Fatalf("Execute without cdb = %v, expected ErrBadParameters", err)
	}
	// The context stays configurable.
	if err := command.SetCdb([]byte{0x00, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("SetCdb after bad parameters failed: %s", err)
	}
	if err := command.Execute(testDevice(), 1, false); err != nil {
		t.Fatalf("Execute after fixing parameters failed: %s", err)
	}
}

func TestExecuteBothDataDirections(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()
	if err := command.SetDataIn(make([]byte, 8)); err != nil {
		t.Fatalf("SetDataIn failed: %s", err)
	}
	if err := command.SetDataOut(make([]byte, 8)); err != nil {
		t.Fatalf("SetDataOut failed: %s", err)
	}
	if err := command.Execute(testDevice(), 1, false); !errors.Is(err, ErrBadParameters) {
		t.Fatalf("Execute with both directions = %v, expected ErrBadParameters", err)
	}
}

func TestAccessorsBeforeExecute(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()

	if _, err := command.ResultCategory(); !errors.Is(err, ErrNotExecuted) {
		t.Errorf("ResultCategory before execute = %v, expected ErrNotExecuted", err)
	}
	if _, err := command.StatusResponse(); !errors.Is(err, ErrNotExecuted) {
		t.Errorf("StatusResponse before execute = %v, expected ErrNotExecuted", err)
	}
	if _, err := command.SenseLen(); !errors.Is(err, ErrNotExecuted) {
		t.Errorf("SenseLen before execute = %v, expected ErrNotExecuted", err)
	}
	if _, err := command.Resid(); !errors.Is(err, ErrNotExecuted) {
		t.Errorf("Resid before execute = %v, expected ErrNotExecuted", err)
	}
	if _, known := command.DurationMs(); known {
		t.Error("DurationMs before execute must report unknown")
	}
}

func TestExecuteTwiceWithoutClear(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()
	if err := command.Execute(testDevice(), 1, false); err != nil {
		t.Fatalf("first Execute failed: %s", err)
	}
	if err := command.Execute(testDevice(), 1, false); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("second Execute = %v, expected ErrInvalidArgument", err)
	}
	if err := command.SetCdb([]byte{0x00}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetCdb after execute = %v, expected ErrInvalidArgument", err)
	}
}

func TestUseAfterDestruct(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	command.Destruct()

	if err := command.SetCdb([]byte{0x00}); !errors.Is(err, ErrUseAfterFree) {
		t.Errorf("SetCdb after destruct = %v, expected ErrUseAfterFree", err)
	}
	if err := command.Execute(testDevice(), 1, false); !errors.Is(err, ErrUseAfterFree) {
		t.Errorf("Execute after destruct = %v, expected ErrUseAfterFree", err)
	}
	if _, err := command.ResultCategory(); !errors.Is(err, ErrUseAfterFree) {
		t.Errorf("ResultCategory after destruct = %v, expected ErrUseAfterFree", err)
	}
	if err := command.Clear(); !errors.Is(err, ErrUseAfterFree) {
		t.Errorf("Clear after destruct = %v, expected ErrUseAfterFree", err)
	}
}

func TestConstructRefused(t *testing.T) {
	transport := NewMockTransport()
	transport.FailConstruct = true
	if _, err := NewCommandContext(transport); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("NewCommandContext = %v, expected ErrResourceExhausted", err)
	}
}

func TestUnsupportedOperations(t *testing.T) {
	// The mock transport has no queue control or packet id support.
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()
	if err := command.SetFlags(1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetFlags = %v, expected ErrUnsupported", err)
	}
	if err := command.SetPacketID(7); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetPacketID = %v, expected ErrUnsupported", err)
	}
	if err := command.SetTag(0xdead); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetTag = %v, expected ErrUnsupported", err)
	}
	if err := command.SetTaskManagement(1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetTaskManagement = %v, expected ErrUnsupported", err)
	}
	if err := command.SetTaskAttr(0, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SetTaskAttr = %v, expected ErrUnsupported", err)
	}
}

func TestExitCategoryCombinesStatusAndSense(t *testing.T) {
	// A reservation conflict outranks sense data a device returned along
	// with a non check condition status.
	transport := NewMockTransport(MockOutcome{
		Status: byte(sglib.StatusReservationConflict),
		Sense:  notReadySense(),
	})
	command := configuredContext(t, transport)
	defer command.Destruct()
	if err := command.SetSense(make([]byte, 32)); err != nil {
		t.Fatalf("SetSense failed: %s", err)
	}
	if err := command.Execute(testDevice(), 1, false); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	exit, err := command.ExitCategory()
	if err != nil || exit != sglib.CatResConflict {
		t.Errorf("ExitCategory = (%v, %v), expected (Reservation conflict, nil)", exit, err)
	}
}

func TestTransportErrReporting(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()
	if err := command.Execute(testDevice(), 1, false); err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	status, err := command.TransportErr()
	if err != nil || status != 0 {
		t.Errorf("TransportErr = (%d, %v), expected (0, nil)", status, err)
	}
	text, err := command.TransportErrStr()
	if err != nil || text != "DID_OK" {
		t.Errorf("TransportErrStr = (%q, %v), expected DID_OK", text, err)
	}
}
