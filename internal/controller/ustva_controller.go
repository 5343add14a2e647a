// Package controller runs one submission end to end inside a worker:
// claim the request, build the declaration document, hand it to the
// transmission collaborator, and record the terminal outcome.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tdp/internal/elsterxml/ustvaxml"
	"tdp/internal/eric"
	"tdp/internal/payload/ustva"
	"tdp/internal/repo/rprequest"
	redisinfra "tdp/pkg/infra/redis"
	"tdp/pkg/logger"
)

// Error codes written onto failed tax requests for failures raised
// before transmission.
const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeDerivation     = "empfaenger_derivation"
)

// Notifier announces terminal states; the API's smart wait listens.
type Notifier interface {
	PublishSubmissionComplete(ctx context.Context, notification *redisinfra.SubmissionNotification) error
}

// UstvaController orchestrates one UStVA submission.
type UstvaController struct {
	repo        rprequest.Repository
	transmitter eric.Transmitter
	notifier    Notifier
	log         logger.Logger
	testmerker  bool
}

// NewUstvaController wires the controller. testmerker is the default
// submission mode; the payload may override it per request.
func NewUstvaController(
	repo rprequest.Repository,
	transmitter eric.Transmitter,
	notifier Notifier,
	log logger.Logger,
	testmerker bool,
) *UstvaController {
	return &UstvaController{
		repo:        repo,
		transmitter: transmitter,
		notifier:    notifier,
		log:         log,
		testmerker:  testmerker,
	}
}

// Process handles one queued submission. A returned error means the
// outcome could not be recorded and the job should be redelivered;
// business failures are recorded as a failed terminal state and count
// as handled.
func (c *UstvaController) Process(ctx context.Context, requestID string, rawPayload json.RawMessage) error {
	claimed, err := c.repo.MarkProcessing(ctx, requestID)
	if err != nil {
		return fmt.Errorf("claim request failed: %w", err)
	}
	if !claimed {
		// Duplicate delivery or already terminal; nothing to do.
		c.log.Warnf(ctx, "[UstvaController] Request %s already claimed or terminal, skipping", requestID)
		return nil
	}

	var p ustva.Payload
	if err := json.Unmarshal(rawPayload, &p); err != nil {
		return c.fail(ctx, requestID, ErrCodeInvalidPayload, fmt.Sprintf("parse payload failed: %v", err))
	}
	if err := p.Validate(); err != nil {
		return c.fail(ctx, requestID, ErrCodeInvalidPayload, err.Error())
	}

	document, err := ustvaxml.Build(&p)
	if err != nil {
		// A derivation failure must abort before transmission; a
		// malformed document never leaves the worker.
		if errors.Is(err, ustvaxml.ErrNoRecipient) {
			return c.fail(ctx, requestID, ErrCodeDerivation, err.Error())
		}
		return c.fail(ctx, requestID, ErrCodeInvalidPayload, err.Error())
	}

	useTestmerker := c.testmerker
	if p.UseTestmerker != nil {
		useTestmerker = *p.UseTestmerker
	}

	c.log.Infof(ctx, "[UstvaController] Submitting declaration: request_id=%s, testmerker=%t", requestID, useTestmerker)

	ticket, err := c.transmitter.Submit(ctx, document, useTestmerker)
	if err != nil {
		var terr *eric.TransmissionError
		if errors.As(err, &terr) {
			return c.fail(ctx, requestID, terr.Code, terr.Message)
		}
		return c.fail(ctx, requestID, "transmission", err.Error())
	}

	result, err := json.Marshal(ticket)
	if err != nil {
		return c.fail(ctx, requestID, "internal", fmt.Sprintf("marshal result failed: %v", err))
	}

	if err := c.repo.MarkSuccess(ctx, requestID, result); err != nil {
		return fmt.Errorf("record success failed: %w", err)
	}

	c.log.Infof(ctx, "[UstvaController] Submission succeeded: request_id=%s, transferticket=%s",
		requestID, ticket.Transferticket)
	c.notify(ctx, requestID, "success")

	return nil
}

// fail records the failed terminal state. Only a repository error
// propagates; the business failure itself is considered handled.
func (c *UstvaController) fail(ctx context.Context, requestID, code, message string) error {
	c.log.Errorf(ctx, "[UstvaController] Submission failed: request_id=%s, code=%s, message=%s",
		requestID, code, message)

	if err := c.repo.MarkFailed(ctx, requestID, code, message, nil); err != nil {
		return fmt.Errorf("record failure failed: %w", err)
	}

	c.notify(ctx, requestID, "failed")
	return nil
}

// notify is best effort; a missed notification only degrades the smart
// wait into a poll.
func (c *UstvaController) notify(ctx context.Context, requestID, status string) {
	if c.notifier == nil {
		return
	}
	err := c.notifier.PublishSubmissionComplete(ctx, &redisinfra.SubmissionNotification{
		RequestID: requestID,
		Status:    status,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		c.log.Warnf(ctx, "[UstvaController] Publish notification failed: request_id=%s, error=%v", requestID, err)
	}
}
