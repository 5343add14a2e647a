// Package queue defines the standard job envelope exchanged between the
// API server and the worker over lmstfy.
package queue

import (
	"encoding/json"
	"fmt"
)

// Job is the top-level envelope.
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload wraps the data layer.
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData carries routing metadata plus the business payload.
type JobPayloadData struct {
	RequestID  string `json:"request_id"`
	CreatorID  string `json:"creator_id"`
	ActionType string `json:"action_type"`
	ID         string `json:"id"`

	Data json.RawMessage `json:"data"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Meta is the extracted routing metadata.
type Meta struct {
	RequestID  string
	CreatorID  string
	ActionType string
	ID         string
}

// NewEnvelope builds the envelope for one submission job.
func NewEnvelope(requestID, creatorID, actionType string, data json.RawMessage) *Job {
	return &Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  requestID,
				CreatorID:  creatorID,
				ActionType: actionType,
				ID:         requestID,
				Data:       data,
			},
		},
	}
}

// Parse decodes an envelope and extracts its metadata.
func Parse(raw []byte) (*Job, *Meta, json.RawMessage, error) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, nil, nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if job.Payload == nil || job.Payload.Data == nil {
		return nil, nil, nil, fmt.Errorf("invalid job structure: payload.data is nil")
	}

	data := job.Payload.Data
	meta := &Meta{
		RequestID:  data.RequestID,
		CreatorID:  data.CreatorID,
		ActionType: data.ActionType,
		ID:         data.ID,
	}

	return &job, meta, data.Data, nil
}
