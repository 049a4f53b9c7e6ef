// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
// Package sglib decodes SCSI sense data and provides the lookup tables and
// helpers shared by utilities that speak SCSI command sets (SPC-4, SBC-3,
// SSC-3 and friends, see www.t10.org).
package sglib

import "fmt"

// StatusCode holds SCSI status values as found in SAM-4.
type StatusCode byte

const (
	StatusGood                     StatusCode = 0x00
	StatusCheckCondition           StatusCode = 0x02
	StatusConditionMet             StatusCode = 0x04
	StatusBusy                     StatusCode = 0x08
	StatusIntermediate             StatusCode = 0x10 // obsolete in SAM-4
	StatusIntermediateConditionMet StatusCode = 0x14 // obsolete in SAM-4
	StatusReservationConflict      StatusCode = 0x18
	StatusCommandTerminated        StatusCode = 0x22 // obsolete in SAM-3
	StatusTaskSetFull              StatusCode = 0x28
	StatusAcaActive                StatusCode = 0x30
	StatusTaskAborted              StatusCode = 0x40
)

func (status StatusCode) String() string {
	names := map[StatusCode]string{
		StatusGood:                     "Good",
		StatusCheckCondition:           "Check Condition",
		StatusConditionMet:             "Condition Met",
		StatusBusy:                     "Busy",
		StatusIntermediate:             "Intermediate (obsolete)",
		StatusIntermediateConditionMet: "Intermediate-Condition Met (obsolete)",
		StatusReservationConflict:      "Reservation Conflict",
		StatusCommandTerminated:        "Command Terminated (obsolete)",
		StatusTaskSetFull:              "Task Set Full",
		StatusAcaActive:                "ACA Active",
		StatusTaskAborted:              "Task Aborted",
	}
	name, ok := names[status]
	if !ok {
		return fmt.Sprintf("Unknown status [0x%x]", byte(status))
	}
	return name
}

// SenseKeyCode holds SCSI sense key values as found in SPC-4.
type SenseKeyCode byte

const (
	SenseKeyNoSense        SenseKeyCode = 0x0
	SenseKeyRecoveredError SenseKeyCode = 0x1
	SenseKeyNotReady       SenseKeyCode = 0x2
	SenseKeyMediumError    SenseKeyCode = 0x3
	SenseKeyHardwareError  SenseKeyCode = 0x4
	SenseKeyIllegalRequest SenseKeyCode = 0x5
	SenseKeyUnitAttention  SenseKeyCode = 0x6
	SenseKeyDataProtect    SenseKeyCode = 0x7
	SenseKeyBlankCheck     SenseKeyCode = 0x8
	SenseKeyVendorSpecific SenseKeyCode = 0x9
	SenseKeyCopyAborted    SenseKeyCode = 0xa
	SenseKeyAbortedCommand SenseKeyCode = 0xb
	SenseKeyReserved       SenseKeyCode = 0xc
	SenseKeyVolumeOverflow SenseKeyCode = 0xd
	SenseKeyMiscompare     SenseKeyCode = 0xe
	SenseKeyCompleted      SenseKeyCode = 0xf
)

func (key SenseKeyCode) String() string {
	names := [...]string{
		"No Sense",
		"Recovered Error",
		"Not Ready",
		"Medium Error",
		"Hardware Error",
		"Illegal Request",
		"Unit Attention",
		"Data Protect",
		"Blank Check",
		"Vendor Specific",
		"Copy Aborted",
		"Aborted Command",
		"Reserved",
		"Volume Overflow",
		"Miscompare",
		"Completed",
	}
	if int(key) >= len(names) {
		return fmt.Sprintf("Unknown sense key [0x%x]", byte(key))
	}
	return names[key]
}

// PeripheralDeviceType holds the 5 bit SCSI peripheral device type field
// from a standard INQUIRY response.
type PeripheralDeviceType byte

const (
	PdtDisk      PeripheralDeviceType = 0x00
	PdtTape      PeripheralDeviceType = 0x01
	PdtPrinter   PeripheralDeviceType = 0x02
	PdtProcessor PeripheralDeviceType = 0x03
	PdtWo        PeripheralDeviceType = 0x04
	PdtMmc       PeripheralDeviceType = 0x05
	PdtScanner   PeripheralDeviceType = 0x06
	PdtOptical   PeripheralDeviceType = 0x07
	PdtMChanger  PeripheralDeviceType = 0x08
	PdtComms     PeripheralDeviceType = 0x09
	PdtSac       PeripheralDeviceType = 0x0c
	PdtSes       PeripheralDeviceType = 0x0d
	PdtRbc       PeripheralDeviceType = 0x0e
	PdtOcrw      PeripheralDeviceType = 0x0f
	PdtBcc       PeripheralDeviceType = 0x10
	PdtOsd       PeripheralDeviceType = 0x11
	PdtAdc       PeripheralDeviceType = 0x12
	PdtSmd       PeripheralDeviceType = 0x13
	PdtZbc       PeripheralDeviceType = 0x14
	PdtWlun      PeripheralDeviceType = 0x1e
	PdtUnknown   PeripheralDeviceType = 0x1f
)

func (pdt PeripheralDeviceType) String() string {
	names := map[PeripheralDeviceType]string{
		PdtDisk:      "disk",
		PdtTape:      "tape",
		PdtPrinter:   "printer",
		PdtProcessor: "processor",
		PdtWo:        "write once optical disk",
		PdtMmc:       "cd/dvd",
		PdtScanner:   "scanner",
		PdtOptical:   "optical memory device",
		PdtMChanger:  "medium changer",
		PdtComms:     "communications",
		PdtSac:       "storage array controller",
		PdtSes:       "enclosure services device",
		PdtRbc:       "simplified direct access device",
		PdtOcrw:      "optical card reader/writer device",
		PdtBcc:       "bridge controller commands",
		PdtOsd:       "object based storage",
		PdtAdc:       "automation/drive interface",
		PdtSmd:       "security manager device",
		PdtZbc:       "host managed zoned block",
		PdtWlun:      "well known logical unit",
		PdtUnknown:   "unknown or no device type",
	}
	name, ok := names[pdt]
	if !ok {
		return fmt.Sprintf("bad pdt [0x%x]", byte(pdt))
	}
	return name
}

// Decay maps lesser used peripheral device types to the more used type they
// share most behaviour with (e.g. ZBC decays to disk, ADC to tape).
func (pdt PeripheralDeviceType) Decay() PeripheralDeviceType {
	switch pdt {
	case PdtWo, PdtOptical, PdtRbc, PdtZbc:
		return PdtDisk
	case PdtAdc:
		return PdtTape
	}
	return pdt
}

// TransportProtocol holds transport protocol identifiers.
type TransportProtocol byte

const (
	ProtocolFcp      TransportProtocol = 0
	ProtocolSpi      TransportProtocol = 1
	ProtocolSsa      TransportProtocol = 2
	ProtocolIeee1394 TransportProtocol = 3
	ProtocolSrp      TransportProtocol = 4
	ProtocolIscsi    TransportProtocol = 5
	ProtocolSas      TransportProtocol = 6
	ProtocolAdt      TransportProtocol = 7
	ProtocolAta      TransportProtocol = 8
	ProtocolUas      TransportProtocol = 9
	ProtocolSop      TransportProtocol = 0xa
	ProtocolPcie     TransportProtocol = 0xb
	ProtocolNone     TransportProtocol = 0xf
)

func (protocol TransportProtocol) String() string {
	names := map[TransportProtocol]string{
		ProtocolFcp:      "Fibre Channel Protocol",
		ProtocolSpi:      "SCSI Parallel Interface",
		ProtocolSsa:      "Serial Storage Architecture",
		ProtocolIeee1394: "IEEE 1394 (firewire)",
		ProtocolSrp:      "SCSI RDMA Protocol",
		ProtocolIscsi:    "Internet SCSI",
		ProtocolSas:      "Serial Attached SCSI",
		ProtocolAdt:      "Automation/Drive Interface Transport",
		ProtocolAta:      "ATA Packet Interface",
		ProtocolUas:      "USB Attached SCSI",
		ProtocolSop:      "SCSI over PCIe",
		ProtocolPcie:     "PCIe",
		ProtocolNone:     "No specific protocol",
	}
	name, ok := names[protocol]
	if !ok {
		return fmt.Sprintf("bad transport protocol identifier [0x%x]", byte(protocol))
	}
	return name
}

// DesignatorType holds designation descriptor type values from the device
// identification VPD page (0x83).
type DesignatorType byte

const (
	DesignatorVendorSpecific            DesignatorType = 0
	DesignatorT10VendorIdentification   DesignatorType = 1
	DesignatorEui64Based                DesignatorType = 2
	DesignatorNaa                       DesignatorType = 3
	DesignatorRelativeTargetPort        DesignatorType = 4
	DesignatorTargetPortGroup           DesignatorType = 5
	DesignatorLogicalUnitGroup          DesignatorType = 6
	DesignatorMd5LogicalUnitIdentifier  DesignatorType = 7
	DesignatorScsiNameString            DesignatorType = 8
	DesignatorProtocolSpecificPortIdent DesignatorType = 9
	DesignatorUuidIdentifier            DesignatorType = 10
)

func (designatorType DesignatorType) String() string {
	names := map[DesignatorType]string{
		DesignatorVendorSpecific:            "vendor specific [0x0]",
		DesignatorT10VendorIdentification:   "T10 vendor identification",
		DesignatorEui64Based:                "EUI-64 based",
		DesignatorNaa:                       "NAA",
		DesignatorRelativeTargetPort:        "Relative target port",
		DesignatorTargetPortGroup:           "Target port group",
		DesignatorLogicalUnitGroup:          "Logical unit group",
		DesignatorMd5LogicalUnitIdentifier:  "MD5 logical unit identifier",
		DesignatorScsiNameString:            "SCSI name string",
		DesignatorProtocolSpecificPortIdent: "Protocol specific port identifier",
		DesignatorUuidIdentifier:            "UUID identifier",
	}
	name, ok := names[designatorType]
	if !ok {
		return fmt.Sprintf("bad designator type [0x%x]", byte(designatorType))
	}
	return name
}

// DesignatorCodeSet holds designation descriptor code set values.
type DesignatorCodeSet byte

const (
	CodeSetBinary DesignatorCodeSet = 1
	CodeSetAscii  DesignatorCodeSet = 2
	CodeSetUtf8   DesignatorCodeSet = 3
)

func (codeSet DesignatorCodeSet) String() string {
	names := map[DesignatorCodeSet]string{
		CodeSetBinary: "Binary",
		CodeSetAscii:  "ASCII",
		CodeSetUtf8:   "UTF-8",
	}
	name, ok := names[codeSet]
	if !ok {
		return fmt.Sprintf("bad code set [0x%x]", byte(codeSet))
	}
	return name
}

// DesignatorAssociation holds designation descriptor association values.
type DesignatorAssociation byte

const (
	AssociationAddressedLogicalUnit DesignatorAssociation = 0
	AssociationTargetPort           DesignatorAssociation = 1
	AssociationTargetDevice         DesignatorAssociation = 2
)

func (association DesignatorAssociation) String() string {
	names := map[DesignatorAssociation]string{
		AssociationAddressedLogicalUnit: "Addressed logical unit",
		AssociationTargetPort:           "Target port",
		AssociationTargetDevice:         "Target device that contains addressed lu",
	}
	name, ok := names[association]
	if !ok {
		return fmt.Sprintf("bad association [0x%x]", byte(association))
	}
	return name
}
