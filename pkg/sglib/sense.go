// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import "encoding/binary"

// Sense data response codes. 0x70/0x71 select the fixed format, 0x72/0x73
// the descriptor format; the odd codes report deferred errors.
const (
	ResponseCodeNone               byte = 0x00
	ResponseCodeFixedCurrent       byte = 0x70
	ResponseCodeFixedDeferred      byte = 0x71
	ResponseCodeDescriptorCurrent  byte = 0x72
	ResponseCodeDescriptorDeferred byte = 0x73
)

// Sense data descriptor types found in descriptor format sense data.
//
// Reference : SPC4r11
// 4.5.2 - Descriptor format sense data
const (
	DescriptorInformation        byte = 0x00
	DescriptorCommandSpecific    byte = 0x01
	DescriptorSenseKeySpecific   byte = 0x02
	DescriptorFieldReplaceable   byte = 0x03
	DescriptorStreamCommands     byte = 0x04
	DescriptorBlockCommands      byte = 0x05
	DescriptorAtaStatusReturn    byte = 0x09
	DescriptorProgressIndication byte = 0x0a
)

// SenseHeader is a slightly stretched descriptor format sense header. The
// salient data of both fixed and descriptor format sense buffers is mapped
// into it so that downstream processing can ignore the original format. The
// original buffer should be kept around for the cases that need more (e.g.
// the LBA of a medium error).
type SenseHeader struct {
	ResponseCode     byte
	SenseKey         SenseKeyCode
	Asc              byte
	Ascq             byte
	Byte4            byte
	Byte5            byte
	Byte6            byte
	AdditionalLength byte
}

// NormalizeSense maps a raw sense buffer in either format into a SenseHeader.
// A zero response code means no valid sense data and yields nil; so does any
// response code outside the two known families. AdditionalLength is always
// zero for the fixed format.
func NormalizeSense(sense []byte) *SenseHeader {
	if len(sense) == 0 {
		return nil
	}
	responseCode := sense[0] & 0x7f
	header := &SenseHeader{ResponseCode: responseCode}
	switch responseCode {
	case ResponseCodeFixedCurrent, ResponseCodeFixedDeferred:
		if len(sense) > 2 {
			header.SenseKey = SenseKeyCode(sense[2] & 0x0f)
		}
		if len(sense) > 13 {
			header.Asc = sense[12]
			header.Ascq = sense[13]
		}
		// First bytes of the information field; the valid bit lives in
		// byte 0 bit 7 and is reported by SenseInfoField.
		if len(sense) > 5 {
			header.Byte4 = sense[3]
			header.Byte5 = sense[4]
			header.Byte6 = sense[5]
		}
	case ResponseCodeDescriptorCurrent, ResponseCodeDescriptorDeferred:
		if len(sense) > 1 {
			header.SenseKey = SenseKeyCode(sense[1] & 0x0f)
		}
		if len(sense) > 2 {
			header.Asc = sense[2]
		}
		if len(sense) > 3 {
			header.Ascq = sense[3]
		}
		if len(sense) > 7 {
			header.AdditionalLength = sense[7]
		}
	default:
		return nil
	}
	return header
}

// FindSenseDescriptor locates the first sense data descriptor with the given
// type tag and returns its byte offset inside the buffer. Fixed format sense
// never carries descriptors, so it always yields false. A descriptor whose
// length field would run past the declared sense length stops the scan.
func FindSenseDescriptor(sense []byte, descriptorType byte) (int, bool) {
	if len(sense) < 8 {
		return 0, false
	}
	if sense[0] < ResponseCodeDescriptorCurrent || sense[0] > ResponseCodeDescriptorDeferred {
		return 0, false
	}
	additionalLength := int(sense[7])
	if additionalLength == 0 {
		return 0, false
	}
	if additionalLength > len(sense)-8 {
		additionalLength = len(sense) - 8
	}
	offset := 8
	for scanned := 0; scanned < additionalLength; {
		hasLength := scanned < additionalLength-1
		if sense[offset] == descriptorType {
			return offset, true
		}
		if !hasLength {
			break
		}
		descriptorLength := int(sense[offset+1]) + 2
		scanned += descriptorLength
		offset += descriptorLength
	}
	return 0, false
}

// SenseInfoField extracts the information field. For the fixed format it is
// the 4 byte field at offset 3 guarded by the valid bit in byte 0; for the
// descriptor format it is the 8 byte value of an information descriptor.
func SenseInfoField(sense []byte) (bool, uint64) {
	if len(sense) == 0 {
		return false, 0
	}
	switch sense[0] & 0x7f {
	case ResponseCodeFixedCurrent, ResponseCodeFixedDeferred:
		if len(sense) < 7 {
			return false, 0
		}
		value := uint64(binary.BigEndian.Uint32(sense[3:7]))
		return sense[0]&0x80 != 0, value
	case ResponseCodeDescriptorCurrent, ResponseCodeDescriptorDeferred:
		offset, found := FindSenseDescriptor(sense, DescriptorInformation)
		if !found || offset+12 > len(sense) || sense[offset+1] != 0x0a {
			return false, 0
		}
		value := binary.BigEndian.Uint64(sense[offset+4 : offset+12])
		return sense[offset+2]&0x80 != 0, value
	}
	return false, 0
}

// SenseFilemarkEomIli extracts the stream command flag bits. The fixed
// format keeps them in byte 2; the descriptor format keeps them in a stream
// commands descriptor. Absence of the descriptor means all false.
func SenseFilemarkEomIli(sense []byte) (anySet, filemark, eom, ili bool) {
	if len(sense) == 0 {
		return false, false, false, false
	}
	switch sense[0] & 0x7f {
	case ResponseCodeFixedCurrent, ResponseCodeFixedDeferred:
		if len(sense) < 3 {
			return false, false, false, false
		}
		filemark = sense[2]&0x80 != 0
		eom = sense[2]&0x40 != 0
		ili = sense[2]&0x20 != 0
	case ResponseCodeDescriptorCurrent, ResponseCodeDescriptorDeferred:
		offset, found := FindSenseDescriptor(sense, DescriptorStreamCommands)
		if !found || offset+4 > len(sense) || sense[offset+1] < 2 {
			return false, false, false, false
		}
		filemark = sense[offset+3]&0x80 != 0
		eom = sense[offset+3]&0x40 != 0
		ili = sense[offset+3]&0x20 != 0
	}
	return filemark || eom || ili, filemark, eom, ili
}

// SenseProgressField extracts the progress indication field. For the fixed
// format this requires a No Sense or Not Ready key and the SKSV bit; the
// descriptor format uses a sense key specific descriptor under the same key
// constraint, or a progress indication descriptor unconditionally. The
// caller multiplies by 100 and divides by 65536 to get percent complete.
func SenseProgressField(sense []byte) (bool, uint16) {
	if len(sense) == 0 {
		return false, 0
	}
	switch sense[0] & 0x7f {
	case ResponseCodeFixedCurrent, ResponseCodeFixedDeferred:
		if len(sense) < 18 {
			return false, 0
		}
		senseKey := SenseKeyCode(sense[2] & 0x0f)
		if senseKey != SenseKeyNoSense && senseKey != SenseKeyNotReady {
			return false, 0
		}
		if sense[15]&0x80 == 0 { // SKSV
			return false, 0
		}
		return true, binary.BigEndian.Uint16(sense[16:18])
	case ResponseCodeDescriptorCurrent, ResponseCodeDescriptorDeferred:
		senseKey := SenseKeyCode(sense[1] & 0x0f)
		keyAllowsProgress := senseKey == SenseKeyNoSense || senseKey == SenseKeyNotReady
		if keyAllowsProgress {
			offset, found := FindSenseDescriptor(sense, DescriptorSenseKeySpecific)
			if found && offset+8 <= len(sense) &&
				sense[offset+1] == 0x06 && sense[offset+4]&0x80 != 0 {
				return true, binary.BigEndian.Uint16(sense[offset+5 : offset+7])
			}
		}
		offset, found := FindSenseDescriptor(sense, DescriptorProgressIndication)
		if found && offset+8 <= len(sense) && sense[offset+1] == 0x06 {
			return true, binary.BigEndian.Uint16(sense[offset+6 : offset+8])
		}
	}
	return false, 0
}

// SenseKey extracts just the sense key, or false if the buffer cannot be
// decoded.
func SenseKey(sense []byte) (SenseKeyCode, bool) {
	header := NormalizeSense(sense)
	if header == nil {
		return 0, false
	}
	return header.SenseKey, true
}
