// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sglib

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"unsafe"
)

// SafeStrerror always returns a valid string, even for wild error numbers.
// A negative errnum has its sign flipped.
func SafeStrerror(errnum int) string {
	if errnum < 0 {
		errnum = -errnum
	}
	if errnum == 0 {
		return "No error"
	}
	return syscall.Errno(errnum).Error()
}

// IsBigEndian reports whether the host stores multi-byte integers big endian
// first. Useful for displaying ATA identify words, which need swapping on a
// big endian machine.
func IsBigEndian() bool {
	value := uint32(1)
	probe := (*[4]byte)(unsafe.Pointer(&value))
	return probe[0] == 0
}

// ATAGetChars extracts the character sequence packed into ATA identify
// words, as in the model string of an IDENTIFY DEVICE response. Extraction
// stops at the first NUL character.
func ATAGetChars(words []uint16, isBigEndian bool) string {
	chars := make([]byte, 0, len(words)*2)
	for _, word := range words {
		var pair [2]byte
		if isBigEndian {
			pair[0] = byte(word)
			pair[1] = byte(word >> 8)
		} else {
			pair[0] = byte(word >> 8)
			pair[1] = byte(word)
		}
		for _, character := range pair {
			if character == 0 {
				return string(chars)
			}
			chars = append(chars, character)
		}
	}
	return string(chars)
}

// HexFormat selects the layout of HexDump output.
type HexFormat int

const (
	// HexWithAscii - hex bytes with an ASCII interpretation to the right.
	HexWithAscii HexFormat = iota
	// HexNoAscii - address then up to 16 hex bytes per line.
	HexNoAscii
	// HexOnly - hex bytes without addresses.
	HexOnly
)

// HexDump formats bytes 16 per line with an extra space between the 8th and
// 9th byte, optionally prefixed with an address column and followed by a
// printable-ASCII column ('.' for non printable characters).
func HexDump(data []byte, format HexFormat) string {
	var builder strings.Builder
	for lineStart := 0; lineStart < len(data); lineStart += 16 {
		lineEnd := lineStart + 16
		if lineEnd > len(data) {
			lineEnd = len(data)
		}
		line := data[lineStart:lineEnd]
		if format != HexOnly {
			fmt.Fprintf(&builder, "%08x  ", lineStart)
		}
		for index := 0; index < 16; index++ {
			if index == 8 {
				builder.WriteByte(' ')
			}
			if index < len(line) {
				fmt.Fprintf(&builder, "%02x ", line[index])
			} else if format == HexWithAscii {
				builder.WriteString("   ")
			}
		}
		if format == HexWithAscii {
			builder.WriteByte(' ')
			for _, value := range line {
				if value >= 0x20 && value < 0x7f {
					builder.WriteByte(value)
				} else {
					builder.WriteByte('.')
				}
			}
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

func parseMultiplier(suffix byte) (int64, bool) {
	switch suffix {
	case 'c', 'C':
		return 1, true
	case 'w', 'W':
		return 2, true
	case 'b', 'B':
		return 512, true
	case 'k':
		return 1024, true
	case 'K':
		return 1000, true
	case 'm':
		return 1024 * 1024, true
	case 'M':
		return 1000 * 1000, true
	case 'g':
		return 1024 * 1024 * 1024, true
	case 'G':
		return 1000 * 1000 * 1000, true
	case 't':
		return 1024 * 1024 * 1024 * 1024, true
	case 'T':
		return 1000 * 1000 * 1000 * 1000, true
	case 'p':
		return 1024 * 1024 * 1024 * 1024 * 1024, true
	case 'P':
		return 1000 * 1000 * 1000 * 1000 * 1000, true
	}
	return 0, false
}

// ParseLLNum parses a 64 bit number the way SCSI utilities write them:
// plain decimal, hex with a 0x prefix or h/H suffix, or decimal with a unit
// multiplier suffix. Lowercase multipliers are powers of two, uppercase are
// powers of ten.
func ParseLLNum(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty numeric argument")
	}
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		value, err := strconv.ParseUint(text[2:], 16, 64)
		return int64(value), err
	}
	if last := text[len(text)-1]; last == 'h' || last == 'H' {
		value, err := strconv.ParseUint(text[:len(text)-1], 16, 64)
		return int64(value), err
	}
	multiplier := int64(1)
	if factor, ok := parseMultiplier(text[len(text)-1]); ok && len(text) > 1 {
		multiplier = factor
		text = text[:len(text)-1]
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, err
	}
	return value * multiplier, nil
}

// ParseNum is ParseLLNum constrained to the int range.
func ParseNum(text string) (int, error) {
	value, err := ParseLLNum(text)
	if err != nil {
		return 0, err
	}
	if value != int64(int(value)) {
		return 0, fmt.Errorf("numeric argument %q out of int range", text)
	}
	return int(value), nil
}
