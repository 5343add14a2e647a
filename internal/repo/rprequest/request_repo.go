package rprequest

import (
	"context"
	"errors"

	"tdp/internal/entity/etrequest"
)

// ErrRequestNotFound distinguishes "unknown request" from every other
// lookup outcome; API callers map it to 404.
var ErrRequestNotFound = errors.New("tax request not found")

// Repository persists tax requests and their lifecycle transitions.
// Terminal transitions are guarded so they happen exactly once.
type Repository interface {
	Create(ctx context.Context, req *etrequest.TaxRequest) error

	// GetByRequestID returns ErrRequestNotFound when no request of the
	// given type exists under the id.
	GetByRequestID(ctx context.Context, requestID, requestType string) (*etrequest.TaxRequest, error)

	// MarkScheduled moves a new request to scheduled after queueing.
	MarkScheduled(ctx context.Context, requestID string) error

	// MarkProcessing claims the request for a worker. It returns false
	// when the request was already claimed or is terminal, so no two
	// workers process the same record.
	MarkProcessing(ctx context.Context, requestID string) (bool, error)

	// MarkSuccess writes the terminal success state with the stored result.
	MarkSuccess(ctx context.Context, requestID string, result []byte) error

	// MarkFailed writes the terminal failure state with the collaborator's
	// code/message and, when present, its raw result.
	MarkFailed(ctx context.Context, requestID, errorCode, errorMessage string, result []byte) error
}
