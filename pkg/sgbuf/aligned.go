// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
// Package sgbuf provides byte buffers for pass-through data transfer.
//
// Some pass-through transports hand buffers directly to the host adapter for
// DMA and require the start address to be aligned to the page size or a
// device sector size. AlignedBuffer over-allocates by the alignment amount
// and exposes a view starting at the first suitably aligned address.
package sgbuf

import (
	"fmt"
	"unsafe"
)

type ErrBadAlignment struct {
	alignment int
}

func (err ErrBadAlignment) Error() string {
	return fmt.Sprintf("alignment %d is not zero or a power of two", err.alignment)
}

// AlignedBuffer is a growable byte buffer whose visible region starts at an
// address that is a multiple of the requested alignment. Alignment zero
// degrades to a plain resizable buffer. Single owner, not safe for
// concurrent mutation.
type AlignedBuffer struct {
	backing   []byte
	offset    int
	length    int
	alignment int
}

func validAlignment(alignment int) bool {
	if alignment < 0 {
		return false
	}
	return alignment&(alignment-1) == 0
}

func alignedOffset(backing []byte, alignment int) int {
	if alignment == 0 || len(backing) == 0 {
		return 0
	}
	base := uintptr(unsafe.Pointer(&backing[0]))
	rem := int(base % uintptr(alignment))
	if rem == 0 {
		return 0
	}
	return alignment - rem
}

// New allocates an aligned buffer of the given logical size.
func New(size int, alignment int) (*AlignedBuffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative buffer size %d", size)
	}
	if !validAlignment(alignment) {
		return nil, &ErrBadAlignment{alignment: alignment}
	}
	buffer := &AlignedBuffer{alignment: alignment}
	buffer.reallocate(size)
	return buffer, nil
}

// NewFrom allocates an aligned buffer holding a copy of content.
func NewFrom(content []byte, alignment int) (*AlignedBuffer, error) {
	buffer, err := New(len(content), alignment)
	if err != nil {
		return nil, err
	}
	copy(buffer.Bytes(), content)
	return buffer, nil
}

func (buffer *AlignedBuffer) reallocate(size int) {
	if size == 0 && buffer.alignment == 0 {
		buffer.backing = nil
		buffer.offset = 0
		buffer.length = 0
		return
	}
	buffer.backing = make([]byte, size+buffer.alignment)
	buffer.offset = alignedOffset(buffer.backing, buffer.alignment)
	buffer.length = size
}

// Bytes returns the aligned view. The slice stays valid until the next
// Resize call.
func (buffer *AlignedBuffer) Bytes() []byte {
	return buffer.backing[buffer.offset : buffer.offset+buffer.length]
}

func (buffer *AlignedBuffer) Len() int {
	return buffer.length
}

func (buffer *AlignedBuffer) Alignment() int {
	return buffer.alignment
}

// Resize grows or shrinks the logical length. The backing allocation is
// replaced and the aligned offset re-derived, because the new allocation's
// base address almost never matches the old one. Bytes that remain within
// the new logical length are copied forward to the new aligned region.
func (buffer *AlignedBuffer) Resize(newSize int) error {
	if newSize < 0 {
		return fmt.Errorf("negative buffer size %d", newSize)
	}
	old := buffer.Bytes()
	buffer.reallocate(newSize)
	copy(buffer.Bytes(), old)
	return nil
}
