// Package eric talks to the ERiC bridge, the external collaborator that
// performs the actual exchange with the tax authority.
package eric

import (
	"context"
	"fmt"
)

// Ticket is the authority's acknowledgement of a received declaration.
type Ticket struct {
	Transferticket string `json:"transferticket"`
}

// TransmissionError carries the opaque code/message pair reported by
// the bridge. It is recorded verbatim on the failed tax request and
// never retried here.
type TransmissionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("transmission failed: code=%s, message=%s", e.Code, e.Message)
}

// Transmitter submits a rendered declaration document. The call may
// block for the duration of the exchange; timeout and retry policy live
// behind this interface.
type Transmitter interface {
	Submit(ctx context.Context, document string, useTestmerker bool) (*Ticket, error)
}
