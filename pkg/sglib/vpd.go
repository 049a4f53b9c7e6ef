// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import "fmt"

// DesignatorMatch filters designation descriptors. A negative field matches
// anything.
type DesignatorMatch struct {
	Association int
	Type        int
	CodeSet     int
}

// MatchAnyDesignator matches every designation descriptor.
var MatchAnyDesignator = DesignatorMatch{Association: -1, Type: -1, CodeSet: -1}

func (match DesignatorMatch) covers(descriptor []byte) bool {
	codeSet := int(descriptor[0] & 0x0f)
	association := int((descriptor[1] >> 4) & 0x3)
	designatorType := int(descriptor[1] & 0x0f)
	if match.CodeSet >= 0 && match.CodeSet != codeSet {
		return false
	}
	if match.Association >= 0 && match.Association != association {
		return false
	}
	if match.Type >= 0 && match.Type != designatorType {
		return false
	}
	return true
}

// VPDDeviceIDDesignators walks the designation descriptors of a device
// identification VPD page body (the bytes following the 4 byte page header)
// and returns the ones the match covers. A descriptor whose length field
// runs past the page is an abnormal termination and yields an error.
//
// Reference : SPC4r11
// 7.8.5 - Device Identification VPD page
func VPDDeviceIDDesignators(page []byte, match DesignatorMatch) ([][]byte, error) {
	descriptors := [][]byte{}
	offset := 0
	for offset+4 <= len(page) {
		length := int(page[offset+3]) + 4
		if offset+length > len(page) {
			return nil, fmt.Errorf(
				"designation descriptor at offset %d declares %d bytes, %d remain",
				offset, length, len(page)-offset,
			)
		}
		descriptor := page[offset : offset+length]
		if match.covers(descriptor) {
			descriptors = append(descriptors, descriptor)
		}
		offset += length
	}
	if offset != len(page) {
		return nil, fmt.Errorf("trailing %d bytes after last designation descriptor", len(page)-offset)
	}
	return descriptors, nil
}
