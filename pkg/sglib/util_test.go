// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import (
	"strings"
	"testing"
)

func TestCommandSizeByGroup(t *testing.T) {
	cases := []struct {
		opcode   byte
		expected int
	}{
		{0x00, 6},  // Test unit ready
		{0x12, 6},  // Inquiry
		{0x28, 10}, // Read (10)
		{0x55, 10}, // Mode select (10)
		{0x88, 16}, // Read (16)
		{0xa8, 12}, // Read (12)
		{0xc0, 10}, // vendor specific
	}
	for _, testCase := range cases {
		if size := CommandSize(testCase.opcode); size != testCase.expected {
			t.Errorf(
				"CommandSize(0x%02x) = %d, expected %d",
				testCase.opcode, size, testCase.expected,
			)
		}
	}
}

func TestOpcodeName(t *testing.T) {
	if name := OpcodeName(0x12, PdtUnknown); name != "Inquiry" {
		t.Errorf("OpcodeName(0x12) = %q", name)
	}
	if name := OpcodeName(0x04, PdtTape); name != "Format medium" {
		t.Errorf("OpcodeName(0x04, tape) = %q", name)
	}
	if name := OpcodeName(0x04, PdtDisk); name != "Format unit" {
		t.Errorf("OpcodeName(0x04, disk) = %q", name)
	}
	if name := OpcodeName(0xef, PdtUnknown); name != "Opcode [0xef]" {
		t.Errorf("unexpected fallback name %q", name)
	}
}

func TestCommandNameServiceAction(t *testing.T) {
	readCapacity16 := []byte{0x9e, 0x10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 32, 0, 0}
	if name := CommandName(readCapacity16, PdtDisk); name != "Read capacity (16)" {
		t.Errorf("CommandName(9e/10) = %q", name)
	}
}

func TestParseLLNum(t *testing.T) {
	cases := []struct {
		text     string
		expected int64
	}{
		{"0", 0},
		{"1234", 1234},
		{"-1", -1},
		{"0x1f", 31},
		{"1fh", 31},
		{"2k", 2048},
		{"2K", 2000},
		{"1m", 1024 * 1024},
		{"3G", 3000000000},
		{"4b", 2048},
		{"8w", 16},
	}
	for _, testCase := range cases {
		value, err := ParseLLNum(testCase.text)
		if err != nil {
			t.Errorf("ParseLLNum(%q) failed: %s", testCase.text, err)
			continue
		}
		if value != testCase.expected {
			t.Errorf(
				"ParseLLNum(%q) = %d, expected %d",
				testCase.text, value, testCase.expected,
			)
		}
	}
	for _, bad := range []string{"", "zz", "0x", "12q3"} {
		if _, err := ParseLLNum(bad); err == nil {
			t.Errorf("ParseLLNum(%q) succeeded, expected error", bad)
		}
	}
}

func TestSafeStrerror(t *testing.T) {
	if SafeStrerror(0) == "" {
		t.Error("SafeStrerror(0) must return a non-empty string")
	}
	if SafeStrerror(-2) != SafeStrerror(2) {
		t.Error("negative error numbers must flip sign")
	}
	if SafeStrerror(123456) == "" {
		t.Error("wild error numbers must still produce a string")
	}
}

func TestHexDumpShape(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	data[4] = 'A'

	dump := HexDump(data, HexWithAscii)
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 20 bytes, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "00000000  ") {
		t.Errorf("first line missing address column: %q", lines[0])
	}
	if !strings.Contains(lines[0], "A") {
		t.Errorf("ASCII column missing printable byte: %q", lines[0])
	}
	if !strings.Contains(lines[0], "....A...") {
		t.Errorf("non printable bytes must render as dots: %q", lines[0])
	}

	bare := HexDump(data[:4], HexOnly)
	if strings.Contains(bare, "00000000") {
		t.Errorf("HexOnly must not contain addresses: %q", bare)
	}
}

func TestATAGetChars(t *testing.T) {
	// "SG" packed big endian inside each word, as IDENTIFY DEVICE does.
	words := []uint16{0x5347, 0x2020, 0x0000}
	text := ATAGetChars(words, false)
	if text != "SG  " {
		t.Errorf("ATAGetChars = %q, expected \"SG  \"", text)
	}
}

func TestVPDDeviceIDDesignators(t *testing.T) {
	naa := []byte{
		0x01, // binary code set
		0x03, // lun association, NAA type
		0x00,
		0x08,
		0x60, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	}
	portName := []byte{
		0x03, // UTF-8 code set
		0x18, // target port association, SCSI name string
		0x00,
		0x04,
		't', 'p', 'g', '1',
	}
	page := append(append([]byte{}, naa...), portName...)

	all, err := VPDDeviceIDDesignators(page, MatchAnyDesignator)
	if err != nil {
		t.Fatalf("iteration failed: %s", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(all))
	}

	naaOnly, err := VPDDeviceIDDesignators(page, DesignatorMatch{
		Association: -1,
		Type:        int(DesignatorNaa),
		CodeSet:     -1,
	})
	if err != nil {
		t.Fatalf("filtered iteration failed: %s", err)
	}
	if len(naaOnly) != 1 || naaOnly[0][1]&0x0f != byte(DesignatorNaa) {
		t.Fatalf("NAA filter returned %d descriptors", len(naaOnly))
	}

	ports, err := VPDDeviceIDDesignators(page, DesignatorMatch{
		Association: int(AssociationTargetPort),
		Type:        -1,
		CodeSet:     -1,
	})
	if err != nil {
		t.Fatalf("association filter failed: %s", err)
	}
	if len(ports) != 1 {
		t.Fatalf("association filter returned %d descriptors", len(ports))
	}

	truncated := page[:len(page)-2]
	if _, err := VPDDeviceIDDesignators(truncated, MatchAnyDesignator); err == nil {
		t.Error("truncated descriptor must yield an error")
	}
}

func TestEnumNames(t *testing.T) {
	if StatusCheckCondition.String() != "Check Condition" {
		t.Errorf("status name: %q", StatusCheckCondition.String())
	}
	if SenseKeyNotReady.String() != "Not Ready" {
		t.Errorf("sense key name: %q", SenseKeyNotReady.String())
	}
	if PdtZbc.Decay() != PdtDisk || PdtAdc.Decay() != PdtTape || PdtMmc.Decay() != PdtMmc {
		t.Error("unexpected peripheral device type decay")
	}
	if ProtocolSas.String() != "Serial Attached SCSI" {
		t.Errorf("transport protocol name: %q", ProtocolSas.String())
	}
	if DesignatorNaa.String() != "NAA" {
		t.Errorf("designator type name: %q", DesignatorNaa.String())
	}
}
