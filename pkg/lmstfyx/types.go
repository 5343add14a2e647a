package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc is the processing function injected into the worker framework.
// It receives the raw lmstfy job and reports what to do with it.
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus is the outcome of processing one queued job.
type JobRespStatus int

const (
	// JobRespStatusSuccess means the job was handled; ACK it.
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease means the job should be retried later.
	JobRespStatusRelease
	// JobRespStatusBury means the job failed permanently; dead-letter it.
	JobRespStatusBury
)

// JobResp wraps the processing action and optional response data.
type JobResp struct {
	Action JobRespStatus
	Data   []byte
}
