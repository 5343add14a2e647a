// Package mdsubmission owns the queue and notification plumbing for
// submissions: the job envelope format and the per-request result
// channel convention.
package mdsubmission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tdp/internal/entity/etrequest"
	"tdp/internal/queue"
	redisinfra "tdp/pkg/infra/redis"
	"tdp/pkg/lmstfy"
)

// SubmissionModule publishes submission jobs and waits for their
// terminal-state notifications.
type SubmissionModule struct {
	lmstfyClient *lmstfy.Client
	pubsub       *redisinfra.PubSub
	queueName    string
	jobTTL       time.Duration
}

// NewSubmissionModule creates the module.
func NewSubmissionModule(lmstfyClient *lmstfy.Client, pubsub *redisinfra.PubSub, queueName string, jobTTL time.Duration) *SubmissionModule {
	return &SubmissionModule{
		lmstfyClient: lmstfyClient,
		pubsub:       pubsub,
		queueName:    queueName,
		jobTTL:       jobTTL,
	}
}

// PublishSubmissionJob enqueues one submission job.
func (m *SubmissionModule) PublishSubmissionJob(ctx context.Context, req *etrequest.TaxRequest) error {
	envelope := queue.NewEnvelope(req.RequestID, req.CreatorID, req.Type, json.RawMessage(req.Payload))

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal job envelope failed: %w", err)
	}

	if err := m.lmstfyClient.Publish(m.queueName, data, uint32(m.jobTTL.Seconds()), 0); err != nil {
		return fmt.Errorf("publish submission job failed: %w", err)
	}

	return nil
}

// WaitForResult blocks until the worker announces a terminal state for
// the request or the timeout passes.
func (m *SubmissionModule) WaitForResult(ctx context.Context, requestID string, timeout time.Duration) (*redisinfra.SubmissionNotification, error) {
	return m.pubsub.WaitForSubmissionComplete(ctx, requestID, timeout)
}
