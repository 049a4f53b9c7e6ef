// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgbuf

import "sync"

// Scratch buffers start at this size and grow to demand, so that repeated
// small acquisitions never reallocate.
const defaultScratchSize = 4096

// Scratch is one reusable buffer leased from a ScratchPool. Release returns
// it to the pool; the slice from Bytes must not be used afterwards.
type Scratch struct {
	data []byte
	pool *ScratchPool
}

func (scratch *Scratch) Bytes() []byte {
	return scratch.data
}

func (scratch *Scratch) Release() {
	if scratch.pool == nil {
		return
	}
	pool := scratch.pool
	scratch.pool = nil
	pool.inner.Put(scratch)
}

// ScratchPool reuses grow-only buffers across calls, replacing ad hoc
// per-call allocation of transfer and string buffers. Acquire pairs with
// Release, usually via defer.
type ScratchPool struct {
	inner sync.Pool
}

func NewScratchPool() *ScratchPool {
	pool := &ScratchPool{}
	pool.inner.New = func() any {
		return &Scratch{data: make([]byte, defaultScratchSize)}
	}
	return pool
}

// Acquire leases a buffer of exactly size bytes. The contents are zeroed.
func (pool *ScratchPool) Acquire(size int) *Scratch {
	scratch := pool.inner.Get().(*Scratch)
	if cap(scratch.data) < size {
		scratch.data = make([]byte, size)
	} else {
		scratch.data = scratch.data[:size]
		for i := range scratch.data {
			scratch.data[i] = 0
		}
	}
	scratch.pool = pool
	return scratch
}
