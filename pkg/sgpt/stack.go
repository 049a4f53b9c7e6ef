// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

import "sync"

// HandleStack keeps a last-in-first-out stack of device handles so callers
// can establish an ambient device for a scope instead of threading the
// handle through every call. Execute falls back to the top of the package
// default stack when given a nil handle. Explicit passing is still the
// normal way; the stack is a convenience for call trees that all target
// one device.
type HandleStack struct {
	mutex   sync.Mutex
	handles []*DeviceHandle
}

// Enter pushes a handle. Pair with a deferred Exit.
func (stack *HandleStack) Enter(handle *DeviceHandle) {
	stack.mutex.Lock()
	defer stack.mutex.Unlock()
	stack.handles = append(stack.handles, handle)
}

// Exit pops the most recently entered handle. Popping an empty stack does
// nothing.
func (stack *HandleStack) Exit() {
	stack.mutex.Lock()
	defer stack.mutex.Unlock()
	if len(stack.handles) == 0 {
		return
	}
	stack.handles = stack.handles[:len(stack.handles)-1]
}

// Current returns the most recently entered handle, or false when the
// stack is empty.
func (stack *HandleStack) Current() (*DeviceHandle, bool) {
	stack.mutex.Lock()
	defer stack.mutex.Unlock()
	if len(stack.handles) == 0 {
		return nil, false
	}
	return stack.handles[len(stack.handles)-1], true
}

// Depth returns how many handles are on the stack.
func (stack *HandleStack) Depth() int {
	stack.mutex.Lock()
	defer stack.mutex.Unlock()
	return len(stack.handles)
}

var defaultHandleStack = &HandleStack{}

// DefaultHandles returns the package wide ambient handle stack.
func DefaultHandles() *HandleStack {
	return defaultHandleStack
}
