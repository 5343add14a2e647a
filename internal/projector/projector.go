// Package projector renders a tax request record into the client-facing
// response shape. It is a pure view over the record: no side effects,
// and the sub-phases of a running request are indistinguishable.
package projector

import (
	"encoding/json"
	"fmt"

	"tdp/internal/entity/etrequest"
)

// JobState is the client-visible processing state.
type JobState string

const (
	StateProcessing JobState = "PROCESSING"
	StateSuccess    JobState = "SUCCESS"
	StateFailure    JobState = "FAILURE"
)

// MapStatus collapses the record lifecycle onto the three client states.
func MapStatus(status etrequest.Status) JobState {
	switch status {
	case etrequest.StatusSuccess:
		return StateSuccess
	case etrequest.StatusFailed:
		return StateFailure
	default:
		return StateProcessing
	}
}

// TransferTicketResult is the typed success result.
type TransferTicketResult struct {
	Transferticket string `json:"transferticket"`
}

// Response is the client-facing projection of one tax request.
// Result is *TransferTicketResult on success and the raw stored result
// (json.RawMessage) on failure; failure results skip typed parsing.
type Response struct {
	ProcessStatus JobState    `json:"process_status"`
	Result        interface{} `json:"result,omitempty"`
	ErrorCode     *string     `json:"error_code,omitempty"`
	ErrorMessage  *string     `json:"error_message,omitempty"`
}

// Project maps a record onto the response shape.
func Project(req *etrequest.TaxRequest) (*Response, error) {
	state := MapStatus(req.Status)

	switch state {
	case StateSuccess:
		resp := &Response{ProcessStatus: StateSuccess}
		if len(req.Result) > 0 {
			var result TransferTicketResult
			if err := json.Unmarshal(req.Result, &result); err != nil {
				return nil, fmt.Errorf("parse stored result failed: %w", err)
			}
			resp.Result = &result
		}
		return resp, nil

	case StateFailure:
		resp := &Response{
			ProcessStatus: StateFailure,
			ErrorCode:     req.ErrorCode,
			ErrorMessage:  req.ErrorMessage,
		}
		if len(req.Result) > 0 {
			resp.Result = json.RawMessage(req.Result)
		}
		return resp, nil

	default:
		return &Response{ProcessStatus: StateProcessing}, nil
	}
}
