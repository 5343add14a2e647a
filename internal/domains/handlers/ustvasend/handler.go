// Package ustvasend handles send_ustva jobs.
package ustvasend

import (
	"context"
	"encoding/json"
	"fmt"

	"tdp/internal/controller"
	"tdp/pkg/errorutil"
)

// Handler runs one UStVA submission job.
type Handler struct {
	requestID string
	payload   json.RawMessage
	ctrl      *controller.UstvaController
}

// NewHandler validates the job shape and creates the handler.
func NewHandler(requestID string, payload json.RawMessage, ctrl *controller.UstvaController) (*Handler, error) {
	if requestID == "" {
		return nil, fmt.Errorf("request_id is required")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	if ctrl == nil {
		return nil, fmt.Errorf("controller is required")
	}

	return &Handler{
		requestID: requestID,
		payload:   payload,
		ctrl:      ctrl,
	}, nil
}

// Process delegates to the controller. The controller records business
// failures itself and only returns errors when the outcome could not be
// persisted, so any error here is worth a redelivery.
func (h *Handler) Process(ctx context.Context) error {
	if err := h.ctrl.Process(ctx, h.requestID, h.payload); err != nil {
		return errorutil.Retriable("infra", err.Error())
	}
	return nil
}
