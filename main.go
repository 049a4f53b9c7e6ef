// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gwangyi/pysgutils/pkg/cli"
	"github.com/gwangyi/pysgutils/pkg/config"
	"github.com/gwangyi/pysgutils/pkg/logger"
	"github.com/gwangyi/pysgutils/pkg/sgbuf"
	"github.com/gwangyi/pysgutils/pkg/sglib"
	"github.com/gwangyi/pysgutils/pkg/sgpt"
)

const (
	inquiryResponseLength = 96
	readCapacity16Length  = 32
	senseBufferLength     = 32
	// Some host adapters DMA straight into the data buffer; page alignment
	// keeps every one of them happy.
	dataBufferAlignment = 4096
)

var scratchPool = sgbuf.NewScratchPool()

func addCommonParameters(command *cli.Command) *cli.Command {
	command.AddParameter("-d", "device", "device node path, e.g. /dev/sg0", "path", false)
	command.AddParameter("-c", "config", "TOML configuration file", "path", false)
	command.AddParameter("-t", "timeout", "command timeout in seconds", "seconds", false)
	command.AddParameter("-l", "log-level", "error, warning, info or debug", "level", false)
	command.AddFlag("-v", "verbose", "log every submitted command")
	command.AddFlag("-m", "mock", "run against a built-in mock device")
	return command
}

func buildCommandList() *cli.CommandList {
	commandList := cli.NewCommandList(
		"sgpt", "SCSI pass-through diagnostics",
	)
	addCommonParameters(commandList.AddCommand(
		"inquiry", "issue a standard INQUIRY and decode the response",
	))
	addCommonParameters(commandList.AddCommand(
		"tur", "issue TEST UNIT READY and report whether the unit is ready",
	))
	addCommonParameters(commandList.AddCommand(
		"readcap", "issue READ CAPACITY (16) and report the medium size",
	))
	addCommonParameters(commandList.AddCommand(
		"version", "print the pass-through transport version",
	))
	return commandList
}

func resolveSettings(command *cli.Command) (config.Config, error) {
	settings := config.Default()
	if path, err := command.GetParameter("config"); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		settings = loaded
	}
	settings.Device = command.GetParameterDefault("device", settings.Device)
	settings.LogLevel = command.GetParameterDefault("log-level", settings.LogLevel)
	if command.GetFlag("verbose") {
		settings.Verbose = true
	}
	timeout, err := command.GetNumericParameter("timeout", settings.TimeoutSeconds)
	if err != nil {
		return config.Config{}, err
	}
	settings.TimeoutSeconds = timeout
	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}
	return settings, nil
}

func mockTransportFor(commandName string) *sgpt.MockTransport {
	switch commandName {
	case "inquiry":
		response := make([]byte, inquiryResponseLength)
		response[2] = 0x06 // SPC-4
		response[4] = inquiryResponseLength - 5
		copy(response[8:], "PYSGUTIL")
		copy(response[16:], "MOCK SG DEVICE  ")
		copy(response[32:], "0001")
		return sgpt.NewMockTransport(sgpt.MockOutcome{DataIn: response, DurationMs: 1})
	case "readcap":
		response := make([]byte, readCapacity16Length)
		binary.BigEndian.PutUint64(response, 2047) // last LBA
		binary.BigEndian.PutUint32(response[8:], 512)
		return sgpt.NewMockTransport(sgpt.MockOutcome{DataIn: response, DurationMs: 1})
	}
	return sgpt.NewMockTransport()
}

func openTarget(
	commandName string, command *cli.Command, settings config.Config,
) (sgpt.Transport, *sgpt.DeviceHandle, func(), error) {
	if command.GetFlag("mock") {
		device := sgpt.NewDeviceHandleFromFd(-1, "mock")
		return mockTransportFor(commandName), device, func() {}, nil
	}
	if settings.Device == "" {
		return nil, nil, nil, fmt.Errorf("no device given, use --device or a config file")
	}
	device, err := sgpt.OpenDevice(settings.Device, false, settings.Verbose)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDevice := func() {
		if err := device.Close(); err != nil {
			logger.GetLogger().Warnf("close %s: %s", device.Name(), err)
		}
	}
	return sgpt.NewSgioTransport(), device, closeDevice, nil
}

// issue runs one command through a fresh context and reports its outcome
// category, printing sense diagnostics when the device complained.
func issue(
	transport sgpt.Transport,
	device *sgpt.DeviceHandle,
	settings config.Config,
	cdb []byte,
	dataIn []byte,
) (sglib.CommandOutcomeCategory, error) {
	log := logger.GetLogger()
	command, err := sgpt.NewCommandContext(transport)
	if err != nil {
		return sglib.CatOther, err
	}
	defer command.Destruct()

	senseScratch := scratchPool.Acquire(senseBufferLength)
	defer senseScratch.Release()
	if err := command.SetCdb(cdb); err != nil {
		return sglib.CatOther, err
	}
	if err := command.SetSense(senseScratch.Bytes()); err != nil {
		return sglib.CatOther, err
	}
	if len(dataIn) > 0 {
		if err := command.SetDataIn(dataIn); err != nil {
			return sglib.CatOther, err
		}
	}

	err = command.Execute(device, settings.TimeoutSeconds, settings.Verbose)
	if err != nil && !errors.Is(err, sgpt.ErrTimeout) {
		return sglib.CatOther, fmt.Errorf(
			"%s: %w", sglib.CommandName(cdb, sglib.PdtUnknown), err,
		)
	}
	category, err := command.ExitCategory()
	if err != nil {
		return sglib.CatOther, err
	}
	if category == sglib.CatClean {
		if duration, known := command.DurationMs(); known && settings.Verbose {
			log.Debugf("%s took %d ms", sglib.CommandName(cdb, sglib.PdtUnknown), duration)
		}
		return category, nil
	}

	log.Warnf("%s: %s", sglib.CommandName(cdb, sglib.PdtUnknown), category)
	senseBytes, err := command.SenseBytes()
	if err == nil && len(senseBytes) > 0 {
		if header := sglib.NormalizeSense(senseBytes); header != nil {
			log.Warnf(
				"sense key %s, asc/ascq 0x%02x/0x%02x",
				header.SenseKey, header.Asc, header.Ascq,
			)
		}
		fmt.Fprint(os.Stderr, sglib.HexDump(senseBytes, sglib.HexWithAscii))
	}
	return category, nil
}

func trimField(field []byte) string {
	return strings.TrimRight(string(field), " \x00")
}

func runInquiry(
	transport sgpt.Transport, device *sgpt.DeviceHandle, settings config.Config,
) (sglib.CommandOutcomeCategory, error) {
	dataBuffer, err := sgbuf.New(inquiryResponseLength, dataBufferAlignment)
	if err != nil {
		return sglib.CatOther, err
	}
	cdb := []byte{0x12, 0, 0, 0, inquiryResponseLength, 0}
	category, err := issue(transport, device, settings, cdb, dataBuffer.Bytes())
	if err != nil || category != sglib.CatClean {
		return category, err
	}
	response := dataBuffer.Bytes()
	pdt := sglib.PeripheralDeviceType(response[0] & 0x1f)
	fmt.Printf("Device type : %s\n", pdt)
	fmt.Printf("Vendor      : %s\n", trimField(response[8:16]))
	fmt.Printf("Product     : %s\n", trimField(response[16:32]))
	fmt.Printf("Revision    : %s\n", trimField(response[32:36]))
	return category, nil
}

func runTestUnitReady(
	transport sgpt.Transport, device *sgpt.DeviceHandle, settings config.Config,
) (sglib.CommandOutcomeCategory, error) {
	cdb := []byte{0x00, 0, 0, 0, 0, 0}
	category, err := issue(transport, device, settings, cdb, nil)
	if err != nil {
		return category, err
	}
	if category == sglib.CatClean {
		fmt.Println("Unit is ready")
	} else {
		fmt.Printf("Unit is not ready: %s\n", category)
	}
	return category, nil
}

func runReadCapacity(
	transport sgpt.Transport, device *sgpt.DeviceHandle, settings config.Config,
) (sglib.CommandOutcomeCategory, error) {
	dataBuffer, err := sgbuf.New(readCapacity16Length, dataBufferAlignment)
	if err != nil {
		return sglib.CatOther, err
	}
	cdb := make([]byte, 16)
	cdb[0] = 0x9e
	cdb[1] = 0x10
	binary.BigEndian.PutUint32(cdb[10:14], readCapacity16Length)
	category, err := issue(transport, device, settings, cdb, dataBuffer.Bytes())
	if err != nil || category != sglib.CatClean {
		return category, err
	}
	response := dataBuffer.Bytes()
	lastBlock := binary.BigEndian.Uint64(response[0:8])
	blockSize := binary.BigEndian.Uint32(response[8:12])
	fmt.Printf("Blocks      : %d\n", lastBlock+1)
	fmt.Printf("Block size  : %d\n", blockSize)
	fmt.Printf("Capacity    : %d bytes\n", (lastBlock+1)*uint64(blockSize))
	return category, nil
}

func main() {
	commandList := buildCommandList()
	if err := commandList.Parse(os.Args); err != nil {
		var helpRequested *cli.ErrHelpPageRequested
		if errors.As(err, &helpRequested) {
			fmt.Println(err.Error())
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	commandName, command := commandList.GetCurrentCommand()
	if command == nil {
		fmt.Fprintln(os.Stderr, "no command given")
		os.Exit(1)
	}

	settings, err := resolveSettings(command)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if level, ok := logger.ParseLevel(settings.LogLevel); ok {
		logger.SetLoggingConfig(level)
	}
	if settings.Verbose {
		logger.SetLoggingConfig(logger.Debug)
	}
	log := logger.GetLogger()

	if commandName == "version" {
		if command.GetFlag("mock") {
			fmt.Println(sgpt.NewMockTransport().Version())
		} else {
			fmt.Println(sgpt.NewSgioTransport().Version())
		}
		return
	}

	transport, device, closeDevice, err := openTarget(commandName, command, settings)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	defer closeDevice()

	var category sglib.CommandOutcomeCategory
	switch commandName {
	case "inquiry":
		category, err = runInquiry(transport, device, settings)
	case "tur":
		category, err = runTestUnitReady(transport, device, settings)
	case "readcap":
		category, err = runReadCapacity(transport, device, settings)
	}
	if err != nil {
		log.Error(err)
		os.Exit(int(sglib.CatOther))
	}
	if category != sglib.CatClean {
		os.Exit(int(category))
	}
}
