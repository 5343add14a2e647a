package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"tdp/internal/config"
	"tdp/internal/controller"
	"tdp/internal/domains"
	"tdp/internal/eric"
	"tdp/internal/framework"
	"tdp/internal/repo/rprequest"
	redisinfra "tdp/pkg/infra/redis"
	"tdp/pkg/lmstfy"
	"tdp/pkg/logger"
)

// Manager owns the worker fleet and its shared infrastructure.
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance builds the shared collaborators once and hands them
// to every worker.
type ManagerInstance struct {
	ctx          context.Context
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	pubsub       *redisinfra.PubSub
	deps         *domains.Deps
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance connects the infrastructure and wires the
// submission controller.
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	db, err := rprequest.NewDB(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}
	repo := rprequest.NewRepository(db)

	pubsub, err := redisinfra.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	transmitter := eric.NewClient(cfg.Eric.Endpoint, cfg.Eric.Timeout)

	ctrl := controller.NewUstvaController(repo, transmitter, pubsub, log, cfg.Eric.Testmerker)

	log.Infof(ctx, "[Manager] Initialized: eric_endpoint=%s, testmerker=%t",
		cfg.Eric.Endpoint, cfg.Eric.Testmerker)

	return &ManagerInstance{
		ctx:          ctx,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		pubsub:       pubsub,
		deps:         &domains.Deps{UstvaController: ctrl},
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}, nil
}

// Start loads and runs all workers, then blocks until Shutdown.
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	if err := m.loadWorkers(); err != nil {
		return fmt.Errorf("failed to load workers: %w", err)
	}

	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))

	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	<-m.shutdownCh

	return nil
}

// Shutdown stops all workers exactly once.
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	if m.closing.CAS(false, true) {
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		m.wg.Wait()

		if err := m.pubsub.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] Close redis failed: %v", err)
		}

		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

func (m *ManagerInstance) loadWorkers() error {
	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		getProcess := domains.GetProcess(m.logger, m.deps)

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient,
			getProcess,
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
