// Package svsubmission orchestrates the API-side submission flow:
// record the request, enqueue the job, optionally smart-wait on the
// result, and project records for reads.
package svsubmission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"tdp/internal/entity/etrequest"
	"tdp/internal/modules/mdsubmission"
	"tdp/internal/payload/ustva"
	"tdp/internal/projector"
	"tdp/internal/repo/rprequest"
	"tdp/pkg/logger"
)

// SubmissionService is the API-side entry point for UStVA submissions.
type SubmissionService struct {
	repo   rprequest.Repository
	module *mdsubmission.SubmissionModule
	log    logger.Logger
}

// NewSubmissionService creates the service.
func NewSubmissionService(repo rprequest.Repository, module *mdsubmission.SubmissionModule, log logger.Logger) *SubmissionService {
	return &SubmissionService{
		repo:   repo,
		module: module,
		log:    log,
	}
}

// SendUstva records and enqueues one submission. The payload is parsed
// up front so obviously broken requests fail synchronously instead of
// in the worker. With waitSeconds > 0 the call blocks for the result
// and returns the terminal projection when it arrives in time;
// otherwise the caller gets the PROCESSING projection and polls.
func (s *SubmissionService) SendUstva(ctx context.Context, creatorID string, payload json.RawMessage, waitSeconds int) (string, *projector.Response, error) {
	var p ustva.Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", nil, fmt.Errorf("parse payload failed: %w", err)
	}
	if err := p.Validate(); err != nil {
		return "", nil, err
	}

	req := &etrequest.TaxRequest{
		RequestID: uuid.New().String(),
		Type:      etrequest.TypeSendUstva,
		CreatorID: creatorID,
		Status:    etrequest.StatusNew,
		Payload:   datatypes.JSON(payload),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return "", nil, fmt.Errorf("create tax request failed: %w", err)
	}

	if err := s.module.PublishSubmissionJob(ctx, req); err != nil {
		// The record stays in new; a requeue sweep or a client retry can
		// pick it up later.
		s.log.Errorf(ctx, "[SubmissionService] publish job failed: request_id=%s, error=%v", req.RequestID, err)
		return "", nil, fmt.Errorf("enqueue submission failed: %w", err)
	}

	if err := s.repo.MarkScheduled(ctx, req.RequestID); err != nil {
		// The job is already queued; the worker's claim accepts new as
		// well, so log and move on.
		s.log.Warnf(ctx, "[SubmissionService] mark scheduled failed: request_id=%s, error=%v", req.RequestID, err)
	}

	if waitSeconds > 0 {
		timeout := time.Duration(waitSeconds) * time.Second
		if _, err := s.module.WaitForResult(ctx, req.RequestID, timeout); err != nil {
			s.log.Infof(ctx, "[SubmissionService] wait for result timed out: request_id=%s", req.RequestID)
		}
		// Reload regardless; the record may have turned terminal even if
		// the notification was missed.
		resp, err := s.GetUstva(ctx, req.RequestID)
		if err != nil {
			return "", nil, err
		}
		return req.RequestID, resp, nil
	}

	return req.RequestID, &projector.Response{ProcessStatus: projector.StateProcessing}, nil
}

// GetUstva projects the current state of one submission.
// rprequest.ErrRequestNotFound passes through for the API's 404.
func (s *SubmissionService) GetUstva(ctx context.Context, requestID string) (*projector.Response, error) {
	req, err := s.repo.GetByRequestID(ctx, requestID, etrequest.TypeSendUstva)
	if err != nil {
		return nil, err
	}

	return projector.Project(req)
}
