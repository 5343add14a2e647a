// Package domains routes queued jobs to their business handlers.
package domains

import (
	"context"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/uuid"

	"tdp/internal/controller"
	"tdp/internal/queue"
	"tdp/pkg/errorutil"
	"tdp/pkg/lmstfyx"
	"tdp/pkg/logger"
)

// Deps bundles the collaborators handlers need.
type Deps struct {
	UstvaController *controller.UstvaController
}

// GetProcess returns the processing function injected into the worker
// framework: parse the envelope, route by action type, run the handler
// and translate its error into a queue action.
func GetProcess(log logger.Logger, deps *Deps) lmstfyx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		_, meta, bizPayload, err := queue.Parse(lmstfyJob.Data)
		if err != nil {
			// A malformed envelope never becomes valid; dead-letter it.
			log.Errorf(ctx, "[GetProcess] parse job failed: %v", err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}
		if meta.RequestID == "" {
			meta.RequestID = uuid.New().String()
		}

		ctx = context.WithValue(ctx, "request_id", meta.RequestID)
		ctx = context.WithValue(ctx, "action_type", meta.ActionType)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s",
			meta.ActionType, meta.RequestID)

		factory, ok := HandlerMap[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		var resp *lmstfyx.JobResp
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
					resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
				}
			}()

			handler, err := factory(ctx, meta, bizPayload, deps)
			if err != nil {
				log.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
				resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
				return
			}

			resp = report(ctx, handler.Process(ctx), log)
		}()

		log.Infof(ctx, "[GetProcess] Processing complete: action=%d, duration=%v",
			resp.Action, time.Since(startTime))

		return resp
	}
}

// report maps a handler error to the queue action: retryable errors are
// released for redelivery, everything else is buried.
func report(ctx context.Context, err error, log logger.Logger) *lmstfyx.JobResp {
	if err == nil {
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess}
	}

	e := errorutil.Wrap(err)
	if e.Retryable {
		log.Warnf(ctx, "[report] retryable failure, releasing: code=%s, message=%s", e.Code, e.Message)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease}
	}

	log.Errorf(ctx, "[report] permanent failure, burying: code=%s, message=%s", e.Code, e.Message)
	return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
}
