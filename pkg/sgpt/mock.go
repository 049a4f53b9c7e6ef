// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package sgpt

// MockOutcome scripts the result of one submitted command.
type MockOutcome struct {
	// ReturnCode is what Submit returns: SubmitOk, SubmitBadParameters,
	// SubmitTimeout or -errno.
	ReturnCode int
	Status     byte
	Sense      []byte
	DataIn     []byte
	Resid      int
	DurationMs int
}

// GoodOutcome is a command that completes cleanly with GOOD status.
var GoodOutcome = MockOutcome{DurationMs: DurationUnknown}

// MockTransport plays back scripted outcomes instead of reaching a device.
// Each Submit consumes the next outcome; once the script runs out, the
// last outcome repeats. It backs tests and the CLI's mock mode.
type MockTransport struct {
	// FailConstruct makes NewRequest refuse, exercising the
	// resource exhaustion path of NewCommandContext.
	FailConstruct bool

	outcomes []MockOutcome
	next     int

	// SubmittedCdbs records a copy of every CDB that reached Submit.
	SubmittedCdbs [][]byte
}

// NewMockTransport scripts the given outcomes in order. With no outcomes
// every command completes cleanly.
func NewMockTransport(outcomes ...MockOutcome) *MockTransport {
	if len(outcomes) == 0 {
		outcomes = []MockOutcome{GoodOutcome}
	}
	return &MockTransport{outcomes: outcomes}
}

func (transport *MockTransport) NewRequest() (*Request, error) {
	if transport.FailConstruct {
		return nil, ErrResourceExhausted
	}
	return &Request{DurationMs: DurationUnknown}, nil
}

func (transport *MockTransport) Capabilities() Capabilities {
	return CapTransportErr | CapDuration
}

func (transport *MockTransport) Version() string {
	return "mock pass-through"
}

func (transport *MockTransport) Submit(request *Request, fd int, timeoutSecs int, verbose bool) int {
	cdb := make([]byte, len(request.Cdb))
	copy(cdb, request.Cdb)
	transport.SubmittedCdbs = append(transport.SubmittedCdbs, cdb)

	outcome := transport.outcomes[transport.next]
	if transport.next < len(transport.outcomes)-1 {
		transport.next++
	}
	if outcome.ReturnCode != SubmitOk && outcome.ReturnCode != SubmitTimeout {
		return outcome.ReturnCode
	}

	request.Status = outcome.Status
	request.SenseLen = copy(request.Sense, outcome.Sense)
	request.Resid = outcome.Resid
	request.DurationMs = outcome.DurationMs
	if len(outcome.DataIn) > 0 {
		moved := copy(request.DataIn, outcome.DataIn)
		request.Resid = len(request.DataIn) - moved
	}
	return outcome.ReturnCode
}
