package framework

import (
	"context"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"tdp/pkg/lmstfyx"
)

// Processor drains the message channel and runs the injected processing
// function, then settles the message with the queue.
type Processor struct {
	cfg        *ProcessorConfig
	proc       lmstfyx.Proc
	source     MessageSource
	logger     Logger
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewProcessor creates a processor. source is used to settle messages.
func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, logger Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		proc:       proc,
		source:     source,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the processing loops.
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		workerID := i
		p.wg.Add(1)
		go p.loop(ctx, workerID, inputChan)
	}
}

// SignalShutdown switches the loops into drain mode.
func (p *Processor) SignalShutdown() {
	p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
	close(p.shutdownCh)
}

// Wait blocks until all processing loops exited.
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	p.logger.Infof(ctx, "[Processor-%d] Started", workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg, workerID)

		case <-p.shutdownCh:
			// Drain mode: finish what is already buffered, then exit.
			p.logger.Infof(ctx, "[Processor-%d] Entering DRAIN mode", workerID)
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg, workerID)
					count++
				default:
					p.logger.Infof(ctx, "[Processor-%d] Drained %d messages, exiting", workerID, count)
					return
				}
			}
		}
	}
}

func (p *Processor) process(ctx context.Context, msg *Message, workerID int) {
	if msg == nil {
		return
	}

	startTime := time.Now()

	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	procCtx = context.WithValue(procCtx, "worker_id", workerID)
	procCtx = context.WithValue(procCtx, "message_id", msg.ID)

	p.logger.Infof(procCtx, "[Processor-%d] Processing message: %s", workerID, msg.ID)

	job := &client.Job{
		ID:    msg.ID,
		Queue: msg.Queue,
		Data:  msg.Data,
	}

	resp := p.proc(procCtx, job)

	duration := time.Since(startTime)
	p.logger.Infof(procCtx, "[Processor-%d] Message processed: %s, action: %d, duration: %v",
		workerID, msg.ID, resp.Action, duration)

	p.settle(procCtx, msg, resp, workerID)
}

// settle acknowledges handled messages. Released messages are left to
// the queue's TTR for redelivery.
func (p *Processor) settle(ctx context.Context, msg *Message, resp *lmstfyx.JobResp, workerID int) {
	switch resp.Action {
	case lmstfyx.JobRespStatusSuccess, lmstfyx.JobRespStatusBury:
		if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
			p.logger.Errorf(ctx, "[Processor-%d] Ack failed: %s, error: %v", workerID, msg.ID, err)
		}
	case lmstfyx.JobRespStatusRelease:
		p.logger.Warnf(ctx, "[Processor-%d] Message released for retry: %s", workerID, msg.ID)
	}
}
