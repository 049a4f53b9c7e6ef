// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package cli

import (
	"errors"
	"testing"
)

func sgptCommandList() *CommandList {
	commandList := NewCommandList("sgpt", "SCSI pass-through diagnostics")
	inquiry := commandList.AddCommand("inquiry", "issue a standard INQUIRY")
	inquiry.AddParameter("-d", "device", "device node path", "path", true)
	inquiry.AddParameter("-t", "timeout", "command timeout in seconds", "seconds", false)
	inquiry.AddFlag("-v", "verbose", "log each submitted command")
	commandList.AddCommand("version", "print the pass-through transport version")
	return commandList
}

func TestParseSeparateValue(t *testing.T) {
	commandList := sgptCommandList()
	err := commandList.Parse([]string{"sgpt", "inquiry", "--device", "/dev/sg0", "-t", "5"})
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	name, command := commandList.GetCurrentCommand()
	if name != "inquiry" || command == nil {
		t.Fatalf("current command = %q, expected inquiry", name)
	}
	device, err := command.GetParameter("device")
	if err != nil || device != "/dev/sg0" {
		t.Errorf("device = (%q, %v), expected /dev/sg0", device, err)
	}
	timeout, err := command.GetNumericParameter("timeout", 60)
	if err != nil || timeout != 5 {
		t.Errorf("timeout = (%d, %v), expected 5", timeout, err)
	}
	if command.GetFlag("verbose") {
		t.Error("verbose flag was not given")
	}
}

func TestParseEqualsAndFlag(t *testing.T) {
	commandList := sgptCommandList()
	err := commandList.Parse([]string{"sgpt", "inquiry", "--device=/dev/sg1", "-v"})
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	_, command := commandList.GetCurrentCommand()
	device, err := command.GetParameter("device")
	if err != nil || device != "/dev/sg1" {
		t.Errorf("device = (%q, %v), expected /dev/sg1", device, err)
	}
	if !command.GetFlag("verbose") {
		t.Error("verbose flag must be set")
	}
	timeout, err := command.GetNumericParameter("timeout", 60)
	if err != nil || timeout != 60 {
		t.Errorf("timeout = (%d, %v), expected default 60", timeout, err)
	}
}

func TestParseNumericMultiplier(t *testing.T) {
	commandList := sgptCommandList()
	err := commandList.Parse([]string{"sgpt", "inquiry", "-d", "/dev/sg0", "--timeout=1k"})
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	_, command := commandList.GetCurrentCommand()
	timeout, err := command.GetNumericParameter("timeout", 60)
	if err != nil || timeout != 1024 {
		t.Errorf("timeout = (%d, %v), expected 1024", timeout, err)
	}
}

func TestParseMissingRequiredParameter(t *testing.T) {
	commandList := sgptCommandList()
	err := commandList.Parse([]string{"sgpt", "inquiry", "-v"})
	var missing *ErrMissingParameters
	if !errors.As(err, &missing) {
		t.Fatalf("Parse = %v, expected ErrMissingParameters", err)
	}
}

func TestParseDanglingValue(t *testing.T) {
	commandList := sgptCommandList()
	err := commandList.Parse([]string{"sgpt", "inquiry", "-d", "/dev/sg0", "--timeout"})
	var invalid *ErrInvalidOption
	if !errors.As(err, &invalid) {
		t.Fatalf("Parse = %v, expected ErrInvalidOption", err)
	}
}

func TestParseUnknownCommandAndOption(t *testing.T) {
	commandList := sgptCommandList()
	var notFound *ErrCommandNotFound
	if err := commandList.Parse([]string{"sgpt", "format"}); !errors.As(err, &notFound) {
		t.Fatalf("Parse = %v, expected ErrCommandNotFound", err)
	}
	var invalid *ErrInvalidOption
	err := commandList.Parse([]string{"sgpt", "inquiry", "-d", "/dev/sg0", "--what"})
	if !errors.As(err, &invalid) {
		t.Fatalf("Parse = %v, expected ErrInvalidOption", err)
	}
}

func TestParseHelpRequests(t *testing.T) {
	commandList := sgptCommandList()
	var help *ErrHelpPageRequested
	if err := commandList.Parse([]string{"sgpt", "--help"}); !errors.As(err, &help) {
		t.Fatalf("Parse = %v, expected help page", err)
	}
	if err := commandList.Parse([]string{"sgpt", "inquiry", "-h"}); !errors.As(err, &help) {
		t.Fatalf("Parse = %v, expected command help page", err)
	}
	if err := commandList.Parse([]string{"sgpt"}); !errors.As(err, &help) {
		t.Fatalf("Parse with no command = %v, expected help page", err)
	}
}

func TestCommandWithoutParameters(t *testing.T) {
	commandList := sgptCommandList()
	if err := commandList.Parse([]string{"sgpt", "version"}); err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	name, _ := commandList.GetCurrentCommand()
	if name != "version" {
		t.Fatalf("current command = %q, expected version", name)
	}
}
