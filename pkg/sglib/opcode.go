// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import "fmt"

// CDB length by opcode group (top three bits of byte 0). Yields the wrong
// answer for variable length commands (opcode 0x7f) and some vendor specific
// commands.
var commandGroupSizes = [8]int{6, 10, 10, 12, 16, 12, 10, 10}

// CommandSize returns the CDB length implied by the opcode.
func CommandSize(opcode byte) int {
	return commandGroupSizes[(opcode>>5)&0x7]
}

// OpcodeType identifies a SCSI command by its CDB byte 0.
type OpcodeType byte

const (
	OpTestUnitReady      OpcodeType = 0x00
	OpRequestSense       OpcodeType = 0x03
	OpFormatUnit         OpcodeType = 0x04
	OpInquiry            OpcodeType = 0x12
	OpModeSelect6        OpcodeType = 0x15
	OpModeSense6         OpcodeType = 0x1a
	OpStartStopUnit      OpcodeType = 0x1b
	OpSendDiagnostic     OpcodeType = 0x1d
	OpReadCapacity10     OpcodeType = 0x25
	OpRead10             OpcodeType = 0x28
	OpWrite10            OpcodeType = 0x2a
	OpVerify10           OpcodeType = 0x2f
	OpSynchronizeCache10 OpcodeType = 0x35
	OpLogSense           OpcodeType = 0x4d
	OpModeSelect10       OpcodeType = 0x55
	OpModeSense10        OpcodeType = 0x5a
	OpRead16             OpcodeType = 0x88
	OpWrite16            OpcodeType = 0x8a
	OpSynchronizeCache16 OpcodeType = 0x91
	OpWriteSame16        OpcodeType = 0x93
	OpServiceActionIn16  OpcodeType = 0x9e
	OpReportLuns         OpcodeType = 0xa0
	OpMaintenanceIn      OpcodeType = 0xa3
	OpRead12             OpcodeType = 0xa8
	OpWrite12            OpcodeType = 0xaa
)

// Service actions of SERVICE ACTION IN(16).
const (
	ServiceActionReadCapacity16 byte = 0x10
)

// OpcodeName returns the command name given CDB byte 0. Names that depend
// on the peripheral device type resolve through pdt; give PdtUnknown when
// the type is not known.
func OpcodeName(opcode byte, pdt PeripheralDeviceType) string {
	if pdt.Decay() == PdtTape && OpcodeType(opcode) == OpFormatUnit {
		return "Format medium"
	}
	names := map[OpcodeType]string{
		OpTestUnitReady:      "Test unit ready",
		OpRequestSense:       "Request sense",
		OpFormatUnit:         "Format unit",
		OpInquiry:            "Inquiry",
		OpModeSelect6:        "Mode select (6)",
		OpModeSense6:         "Mode sense (6)",
		OpStartStopUnit:      "Start stop unit",
		OpSendDiagnostic:     "Send diagnostic",
		OpReadCapacity10:     "Read capacity (10)",
		OpRead10:             "Read (10)",
		OpWrite10:            "Write (10)",
		OpVerify10:           "Verify (10)",
		OpSynchronizeCache10: "Synchronize cache (10)",
		OpLogSense:           "Log sense",
		OpModeSelect10:       "Mode select (10)",
		OpModeSense10:        "Mode sense (10)",
		OpRead16:             "Read (16)",
		OpWrite16:            "Write (16)",
		OpSynchronizeCache16: "Synchronize cache (16)",
		OpWriteSame16:        "Write same (16)",
		OpServiceActionIn16:  "Service action in (16)",
		OpReportLuns:         "Report luns",
		OpMaintenanceIn:      "Maintenance in",
		OpRead12:             "Read (12)",
		OpWrite12:            "Write (12)",
	}
	name, ok := names[OpcodeType(opcode)]
	if !ok {
		return fmt.Sprintf("Opcode [0x%02x]", opcode)
	}
	return name
}

// OpcodeServiceActionName resolves names of commands whose meaning depends
// on the service action field.
func OpcodeServiceActionName(opcode byte, serviceAction byte, pdt PeripheralDeviceType) string {
	if OpcodeType(opcode) == OpServiceActionIn16 && serviceAction == ServiceActionReadCapacity16 {
		return "Read capacity (16)"
	}
	return OpcodeName(opcode, pdt)
}

// CommandName returns the command name given a whole CDB.
func CommandName(cdb []byte, pdt PeripheralDeviceType) string {
	if len(cdb) == 0 {
		return "Empty command"
	}
	if len(cdb) > 1 && OpcodeType(cdb[0]) == OpServiceActionIn16 {
		return OpcodeServiceActionName(cdb[0], cdb[1]&0x1f, pdt)
	}
	return OpcodeName(cdb[0], pdt)
}
