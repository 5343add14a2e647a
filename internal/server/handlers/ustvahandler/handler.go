// Package ustvahandler exposes the UStVA submission HTTP endpoints.
package ustvahandler

import (
	"time"

	"tdp/internal/services/svsubmission"
)

// UstvaHandler handles the submission routes.
type UstvaHandler struct {
	service *svsubmission.SubmissionService
	maxWait time.Duration
}

// NewUstvaHandler creates the handler. maxWait caps the smart-wait a
// client may request; zero disables waiting entirely.
func NewUstvaHandler(service *svsubmission.SubmissionService, maxWait time.Duration) *UstvaHandler {
	return &UstvaHandler{
		service: service,
		maxWait: maxWait,
	}
}
