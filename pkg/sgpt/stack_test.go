// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import (
	"errors"
	"testing"
)

func TestHandleStackOrder(t *testing.T) {
	stack := &HandleStack{}
	if _, ok := stack.Current(); ok {
		t.Fatal("empty stack must have no current handle")
	}

	first := NewDeviceHandleFromFd(3, "/dev/first")
	second := NewDeviceHandleFromFd(4, "/dev/second")
	stack.Enter(first)
	stack.Enter(second)
	if stack.Depth() != 2 {
		t.Fatalf("Depth = %d, expected 2", stack.Depth())
	}
	current, ok := stack.Current()
	if !ok || current != second {
		t.Fatal("Current must return the most recently entered handle")
	}
	stack.Exit()
	current, ok = stack.Current()
	if !ok || current != first {
		t.Fatal("Exit must uncover the previous handle")
	}
	stack.Exit()
	if _, ok := stack.Current(); ok {
		t.Fatal("stack must be empty after matching exits")
	}
	stack.Exit() // extra exit is harmless
	if stack.Depth() != 0 {
		t.Fatal("exiting an empty stack must do nothing")
	}
}

func TestExecuteFallsBackToAmbientHandle(t *testing.T) {
	transport := NewMockTransport()
	command := configuredContext(t, transport)
	defer command.Destruct()

	// Nothing ambient yet.
	if err := command.Execute(nil, 1, false); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Execute with empty stack = %v, expected ErrInvalidArgument", err)
	}

	DefaultHandles().Enter(NewDeviceHandleFromFd(5, "/dev/ambient"))
	defer DefaultHandles().Exit()
	if err := command.Execute(nil, 1, false); err != nil {
		t.Fatalf("Execute with ambient handle failed: %s", err)
	}
	if len(transport.SubmittedCdbs) != 1 {
		t.Fatal("command did not reach the transport through the ambient handle")
	}
}

func TestClosedHandleRefused(t *testing.T) {
	command := configuredContext(t, NewMockTransport())
	defer command.Destruct()

	device := NewDeviceHandleFromFd(6, "/dev/closing")
	if err := device.Close(); err != nil {
		t.Fatalf("Close failed: %s", err)
	}
	if err := device.Close(); !errors.Is(err, ErrUseAfterFree) {
		t.Fatalf("second Close = %v, expected ErrUseAfterFree", err)
	}
	if err := command.Execute(device, 1, false); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Execute on closed handle = %v, expected ErrInvalidArgument", err)
	}
}
